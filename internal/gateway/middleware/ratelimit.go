package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"atelier-crm/internal/logger"
	"atelier-crm/internal/ratelimit"
)

const identityKey = "rate_limit_identity"

// RateLimit throttles a route group under its category's fixed policy.
// The identity is the authenticated username when present, else the
// client IP. Store failures fail open: a missed throttle is acceptable,
// a dropped request is not.
func RateLimit(limiter *ratelimit.Limiter, category ratelimit.Category, log *logger.Logger) gin.HandlerFunc {
	policy := ratelimit.PolicyFor(category)

	return func(c *gin.Context) {
		identity := string(category) + ":" + callerIdentity(c)

		res, err := limiter.Allow(c.Request.Context(), identity, policy)
		if err != nil {
			log.Error("rate limiter unavailable", "category", category, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Header("X-RateLimit-Reset", res.ResetAt.UTC().Format(time.RFC3339))

		if !res.Allowed {
			log.Warn("request throttled",
				"category", category,
				"identity", identity,
				"error", ratelimit.ErrLimitExceeded,
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": ratelimit.ErrLimitExceeded.Error(),
			})
			return
		}

		c.Next()
	}
}

func callerIdentity(c *gin.Context) string {
	if username := c.GetString(identityKey); username != "" {
		return username
	}
	return c.ClientIP()
}
