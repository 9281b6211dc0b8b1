package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"Lifeline/pkg/response"
)

// RateLimit builds a per-client-IP limiter from a rate in ulule format,
// e.g. "30-M" for thirty requests a minute. It protects the messaging
// provider from trigger storms; an invalid rate fails construction.
func RateLimit(rate string) (gin.HandlerFunc, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, err
	}
	lim := limiter.New(memory.NewStore(), parsed)

	return func(c *gin.Context) {
		lctx, err := lim.Get(c.Request.Context(), c.ClientIP())
		if err != nil {
			c.Next()
			return
		}
		if lctx.Reached {
			response.Fail(c, http.StatusTooManyRequests, http.StatusTooManyRequests, "too many requests")
			return
		}
		c.Next()
	}, nil
}
