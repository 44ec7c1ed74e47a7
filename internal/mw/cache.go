package mw

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// Headers that belong to a single exchange and are never replayed from cache.
var uncachedHeaders = []string{"Content-Encoding", "Content-Length", "Vary", RequestIDHeader}

type cachedResponse struct {
	status  int
	headers http.Header
	body    []byte
}

type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyCacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Cache serves repeated GET requests from memory. Any successful request
// with another method flushes the whole cache, so reads never outlive a write.
// A GET that overlapped a flush is not cached: it may have read the old rows.
func Cache(store *cache.Cache, duration time.Duration) gin.HandlerFunc {
	var (
		mu         sync.Mutex
		generation uint64
	)
	currentGeneration := func() uint64 {
		mu.Lock()
		defer mu.Unlock()
		return generation
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			if status := c.Writer.Status(); status >= 200 && status < 400 {
				mu.Lock()
				generation++
				store.Flush()
				mu.Unlock()
			}
			return
		}

		key := c.Request.RequestURI
		if resp, found := store.Get(key); found {
			cached := resp.(cachedResponse)
			for k, v := range cached.headers {
				c.Writer.Header()[k] = v
			}
			c.Writer.Header().Set("X-Cache", "HIT")
			c.Writer.WriteHeader(cached.status)
			c.Writer.Write(cached.body)
			c.Abort()
			return
		}

		started := currentGeneration()
		blw := &bodyCacheWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = blw
		c.Writer.Header().Set("X-Cache", "MISS")

		c.Next()

		// Only cache successful responses
		if blw.Status() >= 200 && blw.Status() < 300 {
			headers := blw.Header().Clone()
			for _, h := range uncachedHeaders {
				headers.Del(h)
			}
			mu.Lock()
			if generation == started {
				store.Set(key, cachedResponse{
					status:  blw.Status(),
					headers: headers,
					body:    blw.body.Bytes(),
				}, duration)
			}
			mu.Unlock()
		}
	}
}
