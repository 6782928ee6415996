package analysis

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"encore.dev"
	"encore.dev/beta/errs"
	"encore.dev/middleware"

	"encore.app/analysis/business/ratelimit"
	"encore.app/analysis/mocks/business/coordinator_mock"
)

// createMiddlewareRequest creates a proper middleware.Request for testing
func createMiddlewareRequest(ctx context.Context, headers http.Header) middleware.Request {
	encoreReq := &encore.Request{
		Path:    "/v1/analyses",
		Headers: headers,
	}
	return middleware.NewRequest(ctx, encoreReq)
}

func TestClientIdentity(t *testing.T) {
	testCases := []struct {
		name     string
		headers  http.Header
		expected string
	}{
		{
			name:     "client_id_header",
			headers:  http.Header{clientIDHeader: []string{"client-42"}},
			expected: "client-42",
		},
		{
			name: "client_id_wins_over_forwarded_for",
			headers: http.Header{
				clientIDHeader:     []string{"client-42"},
				forwardedForHeader: []string{"203.0.113.9"},
			},
			expected: "client-42",
		},
		{
			name:     "forwarded_for_single_address",
			headers:  http.Header{forwardedForHeader: []string{"203.0.113.9"}},
			expected: "203.0.113.9",
		},
		{
			name:     "forwarded_for_takes_first_hop",
			headers:  http.Header{forwardedForHeader: []string{"203.0.113.9, 10.0.0.1, 10.0.0.2"}},
			expected: "203.0.113.9",
		},
		{
			name:     "blank_client_id_falls_through",
			headers:  http.Header{clientIDHeader: []string{"   "}},
			expected: ratelimit.SharedIdentity,
		},
		{
			name:     "no_headers_shares_global_bucket",
			headers:  http.Header{},
			expected: ratelimit.SharedIdentity,
		},
		{
			name:     "nil_headers_shares_global_bucket",
			headers:  nil,
			expected: ratelimit.SharedIdentity,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := createMiddlewareRequest(context.Background(), tc.headers)

			assert.Equal(t, tc.expected, clientIdentity(req))
		})
	}
}

func TestRateLimitRequests(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCoordinator := coordinator_mock.NewMockCoordinator(ctrl)
	service := &Service{
		coordinator: mockCoordinator,
	}

	testCases := []struct {
		name       string
		decision   ratelimit.Decision
		expectNext bool
	}{
		{
			name:       "admitted_request_reaches_handler",
			decision:   ratelimit.Decision{Allowed: true, Limit: 5, Remaining: 4},
			expectNext: true,
		},
		{
			name:       "denied_request_stops_at_boundary",
			decision:   ratelimit.Decision{Allowed: false, Limit: 5, RetryAfter: 30 * time.Second},
			expectNext: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockCoordinator.EXPECT().
				CheckRateLimit(gomock.Any(), "client-1").
				Return(tc.decision).
				Times(1)

			req := createMiddlewareRequest(context.Background(), http.Header{
				clientIDHeader: []string{"client-1"},
			})

			nextCalled := false
			next := func(middleware.Request) middleware.Response {
				nextCalled = true
				return middleware.Response{}
			}

			resp := service.RateLimitRequests(req, next)

			assert.Equal(t, tc.expectNext, nextCalled)
			if tc.expectNext {
				assert.NoError(t, resp.Err)
			} else {
				var e *errs.Error
				assert.ErrorAs(t, resp.Err, &e)
				assert.Equal(t, errs.ResourceExhausted, e.Code)
			}
		})
	}
}
