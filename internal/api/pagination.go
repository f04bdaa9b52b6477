package api

import (
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/types"
)

// Paginator reads ?page and ?limit and builds page bodies.
type Paginator struct {
	DefaultLimit int
	MaxLimit     int
}

type pageRequest struct {
	page   int
	limit  int
	offset int
}

// parse returns false when the page number is unusable.
func (p Paginator) parse(c *gin.Context) (pageRequest, bool) {
	req := pageRequest{page: 1, limit: p.DefaultLimit}
	if req.limit <= 0 {
		req.limit = 6
	}

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return req, false
		}
		req.page = n
	}

	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			req.limit = n
		}
	}
	if p.MaxLimit > 0 && req.limit > p.MaxLimit {
		req.limit = p.MaxLimit
	}

	// offset must not overflow
	if req.page-1 > math.MaxInt32/req.limit {
		return req, false
	}
	req.offset = (req.page - 1) * req.limit
	return req, true
}

func invalidPage(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Invalid page."})
}

// beyond reports a page past the last one. Page 1 is always valid, even when empty.
func (r pageRequest) beyond(total int64) bool {
	return r.page > 1 && int64(r.offset) >= total
}

func newPage[T any](c *gin.Context, req pageRequest, results []T, total int64) types.Page[T] {
	if results == nil {
		results = []T{}
	}
	out := types.Page[T]{Count: total, Results: results}

	if int64(req.offset+len(results)) < total {
		next := pageURL(c, req.page+1)
		out.Next = &next
	}
	if req.page > 1 {
		prev := pageURL(c, req.page-1)
		out.Previous = &prev
	}
	return out
}

// pageURL rebuilds the absolute request URL pointing at page.
func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if fwd := c.GetHeader("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}

	q := c.Request.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: q.Encode(),
	}
	return u.String()
}
