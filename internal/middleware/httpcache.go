package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Cache-Control directives used by the route table. Export and video
// responses must always reflect the store at request time, so they are
// never cacheable; the info-ish endpoints tolerate a short shared cache.
const (
	CacheNoStore     = "no-store, max-age=0"
	CachePublicShort = "public, max-age=15"
)

// CachePolicy pairs a path pattern with the Cache-Control directive its
// responses should carry. A pattern ending in "*" matches by prefix,
// otherwise it matches the path exactly.
type CachePolicy struct {
	Pattern   string
	Directive string
}

type cacheHeaderWriter struct {
	gin.ResponseWriter
	directive string
	applied   bool
}

func (w *cacheHeaderWriter) WriteHeader(code int) {
	w.apply(code)
	w.ResponseWriter.WriteHeader(code)
}

func (w *cacheHeaderWriter) Write(data []byte) (int, error) {
	w.apply(w.Status())
	return w.ResponseWriter.Write(data)
}

func (w *cacheHeaderWriter) WriteString(s string) (int, error) {
	w.apply(w.Status())
	return w.ResponseWriter.WriteString(s)
}

// apply sets the directive once, just before the response is committed.
// Handlers that set Cache-Control themselves win. Positive directives are
// withheld from error responses; no-store applies regardless of status.
func (w *cacheHeaderWriter) apply(code int) {
	if w.applied {
		return
	}
	w.applied = true
	if w.Header().Get("Cache-Control") != "" {
		return
	}
	if w.directive != CacheNoStore && code >= 400 {
		return
	}
	w.Header().Set("Cache-Control", w.directive)
}

// CacheControl returns a middleware that stamps GET responses with the
// Cache-Control directive of the first matching policy.
func CacheControl(policies ...CachePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != "GET" {
			c.Next()
			return
		}

		directive, ok := matchCachePolicy(c.Request.URL.Path, policies)
		if !ok {
			c.Next()
			return
		}

		c.Writer = &cacheHeaderWriter{
			ResponseWriter: c.Writer,
			directive:      directive,
		}
		c.Next()
	}
}

func matchCachePolicy(path string, policies []CachePolicy) (string, bool) {
	for _, policy := range policies {
		p := strings.TrimSpace(policy.Pattern)
		if p == "" {
			continue
		}
		if strings.HasSuffix(p, "*") {
			if strings.HasPrefix(path, strings.TrimSuffix(p, "*")) {
				return policy.Directive, true
			}
			continue
		}
		if path == p {
			return policy.Directive, true
		}
	}
	return "", false
}
