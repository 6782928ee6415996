package analysis

import (
	"context"
	"math"
)

type RateLimitResponse struct {
	Allowed           bool  `json:"allowed"`
	Limit             int64 `json:"limit"`
	Remaining         int64 `json:"remaining"`
	RetryAfterSeconds int64 `json:"retry_after_seconds,omitempty"`
}

// CheckRateLimit reports whether a request from identity would currently be
// admitted. The check consumes a window slot, same as the middleware path.
//
//encore:api public path=/v1/ratelimit/:identity method=GET
func (s *Service) CheckRateLimit(ctx context.Context, identity string) (*RateLimitResponse, error) {
	decision := s.coordinator.CheckRateLimit(ctx, identity)

	return &RateLimitResponse{
		Allowed:           decision.Allowed,
		Limit:             decision.Limit,
		Remaining:         decision.Remaining,
		RetryAfterSeconds: int64(math.Ceil(decision.RetryAfter.Seconds())),
	}, nil
}
