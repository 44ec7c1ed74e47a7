package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"sparesmart-backend/internal/model"
)

// fieldKind says how a PATCH value is decoded and checked. Optional kinds
// accept null and clear the column.
type fieldKind int

const (
	kindText fieldKind = iota
	kindRequiredText
	kindCount
	kindOptionalCount
	kindOptionalFloat
	kindRef
	kindDate
	kindMoney
)

type columnRule struct {
	kind   fieldKind
	maxLen int
}

// Columns each entity accepts in a PATCH body.
var (
	linePatchFields = map[string]columnRule{
		"name":        {kindRequiredText, 128},
		"description": {kindText, 1024},
		"location":    {kindText, 256},
		"capacity":    {kind: kindOptionalCount},
		"efficiency":  {kind: kindOptionalFloat},
	}

	machinePatchFields = map[string]columnRule{
		"line_id":     {kind: kindRef},
		"name":        {kindRequiredText, 256},
		"description": {kindText, 1024},
		"status":      {kindRequiredText, 32},
		"location":    {kindText, 256},
	}

	partPatchFields = map[string]columnRule{
		"machine_id":      {kind: kindRef},
		"name":            {kindRequiredText, 256},
		"part_number":     {kindText, 128},
		"description":     {kindText, 1024},
		"stock_quantity":  {kind: kindCount},
		"min_stock_level": {kind: kindCount},
		"location":        {kindText, 256},
		"cost":            {kind: kindMoney},
		"last_checked":    {kind: kindDate},
		"next_due":        {kind: kindDate},
		"notes":           {kindText, 2048},
	}

	checkweigherPatchFields = map[string]columnRule{
		"line_id":         {kind: kindRef},
		"name":            {kindRequiredText, 256},
		"last_calibrated": {kind: kindDate},
		"next_due":        {kind: kindDate},
	}
)

var jsonNull = []byte("null")

// decodePatch turns a JSON object into a map of column to value ready for the
// store. Unknown columns and values of the wrong shape are errors.
func decodePatch(body []byte, rules map[string]columnRule) (map[string]any, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return nil, fmt.Errorf("body must be a JSON object")
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	updates := make(map[string]any, len(raw))
	for _, key := range keys {
		rule, ok := rules[key]
		if !ok {
			return nil, fmt.Errorf("unknown field %q", key)
		}
		value, err := decodeField(raw[key], rule)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		updates[key] = value
	}
	return updates, nil
}

func decodeField(msg json.RawMessage, rule columnRule) (any, error) {
	isNull := bytes.Equal(bytes.TrimSpace(msg), jsonNull)

	switch rule.kind {
	case kindText, kindRequiredText:
		if isNull {
			if rule.kind == kindRequiredText {
				return nil, fmt.Errorf("must not be empty")
			}
			return "", nil
		}
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return nil, fmt.Errorf("must be a string")
		}
		s = strings.TrimSpace(s)
		if rule.kind == kindRequiredText && s == "" {
			return nil, fmt.Errorf("must not be empty")
		}
		if rule.maxLen > 0 && len(s) > rule.maxLen {
			return nil, fmt.Errorf("must be at most %d characters", rule.maxLen)
		}
		return s, nil

	case kindCount, kindOptionalCount:
		if isNull {
			if rule.kind == kindCount {
				return nil, fmt.Errorf("must be a non-negative integer")
			}
			return nil, nil
		}
		var n int
		if err := json.Unmarshal(msg, &n); err != nil || n < 0 {
			return nil, fmt.Errorf("must be a non-negative integer")
		}
		return n, nil

	case kindOptionalFloat:
		if isNull {
			return nil, nil
		}
		var f float64
		if err := json.Unmarshal(msg, &f); err != nil || f < 0 {
			return nil, fmt.Errorf("must be a non-negative number")
		}
		return f, nil

	case kindRef:
		var id int64
		if isNull || json.Unmarshal(msg, &id) != nil || id <= 0 {
			return nil, fmt.Errorf("must be a positive id")
		}
		return id, nil

	case kindDate:
		var d model.Date
		if err := d.UnmarshalJSON(msg); err != nil {
			return nil, err
		}
		return d, nil

	case kindMoney:
		if isNull {
			return decimal.NullDecimal{}, nil
		}
		var d decimal.Decimal
		if err := d.UnmarshalJSON(msg); err != nil {
			return nil, fmt.Errorf("must be a decimal number")
		}
		if d.IsNegative() {
			return nil, fmt.Errorf("must not be negative")
		}
		return decimal.NewNullDecimal(d), nil
	}
	return nil, fmt.Errorf("unsupported field")
}

// bindPatch reads a PATCH body and decodes it against rules. It writes the
// 400 response itself and returns false when the caller must stop.
func bindPatch(c *gin.Context, rules map[string]columnRule) (map[string]any, bool) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
		return nil, false
	}
	updates, err := decodePatch(body, rules)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return updates, true
}
