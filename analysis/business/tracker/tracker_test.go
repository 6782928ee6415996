package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"encore.dev/beta/errs"

	"encore.app/analysis/business/resultcache"
	"encore.app/analysis/mocks/business/tracker_mock"
	"encore.app/analysis/model"
	"encore.app/analysis/store"
)

// newTestTracker wires a tracker onto an in-memory store with a mocked
// dispatcher standing in for the work queue.
func newTestTracker(t *testing.T) (Tracker, *resultcache.Cache, *tracker_mock.MockDispatcher) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	s := store.NewMemory()
	cache := resultcache.New(s, time.Hour)
	dispatcher := tracker_mock.NewMockDispatcher(ctrl)
	return New(s, cache, dispatcher, time.Hour), cache, dispatcher
}

func assertErrCode(t *testing.T, err error, code errs.ErrCode) {
	t.Helper()
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, code, e.Code)
}

func TestStatusUnknownJob(t *testing.T) {
	trk, _, _ := newTestTracker(t)

	view, err := trk.Status(context.Background(), "nonexistent-id")
	assert.Nil(t, view)
	assertErrCode(t, err, errs.NotFound)
}

func TestStatusObservesLifecycle(t *testing.T) {
	ctx := context.Background()
	trk, _, dispatcher := newTestTracker(t)
	dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	job, err := trk.Submit(ctx, model.InputDescriptor{Data: []byte("image bytes")})
	require.NoError(t, err)

	view, err := trk.Status(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusPending, view.Status)
	assert.Nil(t, view.Result)

	claimed, _, err := trk.Claim(ctx, job.ID)
	require.NoError(t, err)
	require.True(t, claimed)

	view, err = trk.Status(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusProcessing, view.Status)

	result := model.AnalysisResult{Label: "cat", Confidence: 0.98}
	require.NoError(t, trk.Complete(ctx, job.ID, result))

	view, err = trk.Status(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, view.Status)
	require.NotNil(t, view.Result)
	assert.Equal(t, result, *view.Result)
	assert.NotNil(t, view.CompletedAt)
}

func TestStatusFailsHardWhenStoreUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := unavailableStore{}
	trk := New(s, resultcache.New(store.NewMemory(), time.Hour), tracker_mock.NewMockDispatcher(ctrl), time.Hour)

	_, err := trk.Status(context.Background(), "some-id")
	assertErrCode(t, err, errs.Unavailable)
}

// unavailableStore simulates an unreachable shared store for the job
// namespace; tracking cannot be degraded safely the way the limiter and the
// cache can.
type unavailableStore struct {
	store.Store
}

func (unavailableStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (unavailableStore) SetNX(context.Context, string, []byte, time.Duration) (bool, error) {
	return false, errors.New("connection refused")
}
