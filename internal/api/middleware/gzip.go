package middleware

import (
	"io"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
)

// gzipWriter compresses the body; headers pass through untouched
type gzipWriter struct {
	gin.ResponseWriter
	gz    *gzip.Writer
	wrote bool
}

func (w *gzipWriter) Write(b []byte) (int, error) {
	if !w.wrote {
		w.wrote = true
		w.Header().Del("Content-Length")
	}
	return w.gz.Write(b)
}

func (w *gzipWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Gzip compresses responses for clients that accept it. WebSocket upgrades
// and the paths in skip are passed through.
func Gzip(level int, skip ...string) gin.HandlerFunc {
	pool := sync.Pool{
		New: func() any {
			gz, err := gzip.NewWriterLevel(io.Discard, level)
			if err != nil {
				gz = gzip.NewWriter(io.Discard)
			}
			return gz
		},
	}
	skipped := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipped[p] = true
	}

	return func(c *gin.Context) {
		if !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") ||
			strings.EqualFold(c.GetHeader("Upgrade"), "websocket") ||
			skipped[c.Request.URL.Path] {
			c.Next()
			return
		}

		gz := pool.Get().(*gzip.Writer)
		gz.Reset(c.Writer)
		w := &gzipWriter{ResponseWriter: c.Writer, gz: gz}
		c.Header("Content-Encoding", "gzip")
		c.Header("Vary", "Accept-Encoding")
		c.Writer = w

		defer func() {
			if w.wrote {
				_ = gz.Close()
			} else {
				// no body (204, 304, HEAD): nothing to encode
				w.Header().Del("Content-Encoding")
				gz.Reset(io.Discard)
			}
			pool.Put(gz)
		}()

		c.Next()
	}
}
