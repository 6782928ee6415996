package analysis

import (
	"math"
	"strings"

	"encore.dev/beta/errs"
	"encore.dev/middleware"
	"encore.dev/rlog"

	"encore.app/analysis/business/ratelimit"
)

const (
	clientIDHeader     = "X-Client-ID"
	forwardedForHeader = "X-Forwarded-For"
)

// RateLimitRequests denies tagged endpoints once a client exhausts its
// admission window. Denials resolve entirely at the boundary, before any
// cache or queue interaction, and carry a machine-readable retry hint.
//
//encore:middleware target=tag:ratelimited
func (s *Service) RateLimitRequests(req middleware.Request, next middleware.Next) middleware.Response {
	identity := clientIdentity(req)

	decision := s.coordinator.CheckRateLimit(req.Context(), identity)
	if !decision.Allowed {
		retryAfter := int64(math.Ceil(decision.RetryAfter.Seconds()))
		rlog.Info("request denied by rate limiter", "identity", identity, "retry_after_seconds", retryAfter)
		return middleware.Response{
			Err: errs.B().
				Code(errs.ResourceExhausted).
				Msg("rate limit exceeded").
				Meta("retry_after_seconds", retryAfter).
				Err(),
		}
	}

	return next(req)
}

// clientIdentity resolves the rate-limit identity for a request: an explicit
// client ID header first, then the nearest forwarded source address. Requests
// with neither share the global bucket.
func clientIdentity(req middleware.Request) string {
	headers := req.Data().Headers
	if headers == nil {
		return ratelimit.SharedIdentity
	}

	if v := strings.TrimSpace(headers.Get(clientIDHeader)); v != "" {
		return v
	}

	if v := headers.Get(forwardedForHeader); v != "" {
		first, _, _ := strings.Cut(v, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	return ratelimit.SharedIdentity
}
