package mw

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

type cacheEntry struct {
	status      int
	contentType string
	body        []byte
}

type captureWriter struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (w captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Cache serves repeated dashboard GETs from an in-memory cache keyed by
// request URI. Only 2xx responses are cached; mutations bypass it entirely.
func Cache(store *cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.RequestURI
		if hit, found := store.Get(key); found {
			entry := hit.(cacheEntry)
			c.Header("Content-Type", entry.contentType)
			c.Header("X-Cache", "HIT")
			c.Writer.WriteHeader(entry.status)
			c.Writer.Write(entry.body)
			c.Abort()
			return
		}

		cw := &captureWriter{buf: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = cw

		c.Next()

		if cw.Status() >= 200 && cw.Status() < 300 {
			store.Set(key, cacheEntry{
				status:      cw.Status(),
				contentType: cw.Header().Get("Content-Type"),
				body:        cw.buf.Bytes(),
			}, ttl)
		}
	}
}
