package api

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"sparesmart-backend/internal/events"
	"sparesmart-backend/internal/mw"
	"sparesmart-backend/internal/store"
)

var validate = validator.New()

func init() {
	// Decimals validate as floats so tags like gte=0 work on them.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		switch v := field.Interface().(type) {
		case decimal.Decimal:
			return v.InexactFloat64()
		case decimal.NullDecimal:
			if v.Valid {
				return v.Decimal.InexactFloat64()
			}
		}
		return nil
	}, decimal.Decimal{}, decimal.NullDecimal{})

	// Report JSON names in validation errors.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// bindAndValidate binds the JSON body and runs the validator tags. It writes
// the error response itself and returns false when the caller must stop.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error()})
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": fields})
		return false
	}
	return true
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return 0, false
	}
	return id, true
}

// optionalIDQuery reads an optional positive integer query parameter.
func optionalIDQuery(c *gin.Context, key string) (int64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
		return 0, false
	}
	return id, true
}

// respondStoreError maps store errors onto status codes.
func respondStoreError(c *gin.Context, err error, entity string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": entity + " not found"})
	case errors.Is(err, store.ErrInvalidReference):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled):
		c.Status(499)
	default:
		_ = c.Error(err)
		log.Error().Err(err).Str("request_id", c.GetString(mw.RequestIDKey)).Str("entity", entity).Msg("store operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// publish sends a change event. Broker failures never fail the request.
func (h *Handler) publish(c *gin.Context, entity, action string, id int64, data any) {
	if err := h.events.Publish(c.Request.Context(), events.NewEvent(entity, action, id, data)); err != nil {
		log.Warn().Err(err).Str("entity", entity).Str("action", action).Int64("id", id).Msg("failed to publish event")
	}
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
