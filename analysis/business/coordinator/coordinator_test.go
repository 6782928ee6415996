package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"encore.app/analysis/business/ratelimit"
	"encore.app/analysis/business/resultcache"
	"encore.app/analysis/business/tracker"
	"encore.app/analysis/mocks/business/tracker_mock"
	"encore.app/analysis/model"
	"encore.app/analysis/store"
)

// newTestCoordinator wires real components onto one in-memory store, with
// only the work queue mocked out.
func newTestCoordinator(t *testing.T) (Coordinator, tracker.Tracker, *tracker_mock.MockDispatcher) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	s := store.NewMemory()
	cache := resultcache.New(s, time.Hour)
	dispatcher := tracker_mock.NewMockDispatcher(ctrl)
	trk := tracker.New(s, cache, dispatcher, time.Hour)
	limiter := ratelimit.NewLimiter(s, 5, time.Minute)
	return New(limiter, trk), trk, dispatcher
}

func TestRepeatSubmissionServedFromCache(t *testing.T) {
	ctx := context.Background()
	coord, trk, dispatcher := newTestCoordinator(t)

	input := model.InputDescriptor{Data: []byte("image bytes")}

	// Only the first submission may reach the queue.
	dispatcher.EXPECT().
		Dispatch(gomock.Any(), gomock.Any(), input).
		Return(nil).
		Times(1)

	first, err := coord.Submit(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusPending, first.Status)

	// Simulate the worker finishing the first job.
	claimed, _, err := trk.Claim(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, claimed)
	result := model.AnalysisResult{Label: "cat", Confidence: 0.98}
	require.NoError(t, trk.Complete(ctx, first.ID, result))

	second, err := coord.Submit(ctx, input)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, model.JobStatusCompleted, second.Status)
	require.NotNil(t, second.Result)
	assert.Equal(t, result, *second.Result)
}

func TestStatusFollowsSubmittedJob(t *testing.T) {
	ctx := context.Background()
	coord, _, dispatcher := newTestCoordinator(t)
	dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	submitted, err := coord.Submit(ctx, model.InputDescriptor{Data: []byte("image bytes")})
	require.NoError(t, err)

	view, err := coord.Status(ctx, submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, submitted.ID, view.ID)
	assert.Equal(t, model.JobStatusPending, view.Status)
}

func TestCheckRateLimitCountsAgainstWindow(t *testing.T) {
	ctx := context.Background()
	coord, _, _ := newTestCoordinator(t)

	for i := 0; i < 5; i++ {
		decision := coord.CheckRateLimit(ctx, "client-1")
		assert.True(t, decision.Allowed, "request %d should be admitted", i+1)
	}

	decision := coord.CheckRateLimit(ctx, "client-1")
	assert.False(t, decision.Allowed)
	assert.Greater(t, decision.RetryAfter, time.Duration(0))
}
