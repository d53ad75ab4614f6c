package requests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/hydrolens/internal/domain/requests"
)

func adminFixture(reqs ...*domain.AnalysisRequest) (*Service, *fakeStore) {
	store := newFakeStore(reqs...)
	return &Service{Requests: store}, store
}

func TestSubmit(t *testing.T) {
	svc, store := adminFixture()

	req, err := svc.Submit(context.Background(), SubmitCommand{
		ModelIDs:  []int64{1, 2},
		StartDate: day("2024-01-01"),
		EndDate:   day("2024-01-31"),
		CreatedBy: "ops",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, req.ID)
	assert.Equal(t, domain.StatusQueued, req.Status)
	assert.Equal(t, "ops", req.CreatedBy)
	assert.Contains(t, store.reqs, req.ID)
}

func TestSubmit_Validation(t *testing.T) {
	svc, _ := adminFixture()

	_, err := svc.Submit(context.Background(), SubmitCommand{
		StartDate: day("2024-01-01"),
		EndDate:   day("2024-01-31"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = svc.Submit(context.Background(), SubmitCommand{
		ModelIDs:  []int64{1},
		StartDate: day("2024-01-31"),
		EndDate:   day("2024-01-01"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestCancel(t *testing.T) {
	for _, status := range []domain.Status{
		domain.StatusQueued, domain.StatusDownloadingImages, domain.StatusProcessingImages,
	} {
		req := queuedRequest(1)
		req.Status = status
		svc, store := adminFixture(req)

		got, err := svc.Cancel(context.Background(), req.ID)
		require.NoError(t, err, "cancel from %s", status)
		assert.Equal(t, domain.StatusCancelled, got.Status)
		assert.Equal(t, domain.StatusCancelled, store.reqs[req.ID].Status)
	}
}

func TestCancel_CompletedRejected(t *testing.T) {
	req := queuedRequest(1)
	req.Status = domain.StatusCompleted
	svc, _ := adminFixture(req)

	_, err := svc.Cancel(context.Background(), req.ID)

	var transition *domain.InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, domain.StatusCompleted, transition.From)
}

func TestRequeue_FromFailed(t *testing.T) {
	req := queuedRequest(1)
	req.Status = domain.StatusFailed
	req.ErrorMessage = "export job exploded"
	req.AnalysisGroupID = 42
	svc, store := adminFixture(req)

	got, err := svc.Requeue(context.Background(), req.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusQueued, got.Status)
	assert.Empty(t, got.ErrorMessage)
	// group tetap terikat supaya re-run melanjutkan group yang sama
	assert.Equal(t, int64(42), got.AnalysisGroupID)
	assert.Equal(t, domain.StatusQueued, store.reqs[req.ID].Status)
}

func TestRequeue_OnlyFromFailed(t *testing.T) {
	for _, status := range []domain.Status{
		domain.StatusQueued, domain.StatusProcessingImages, domain.StatusCompleted, domain.StatusCancelled,
	} {
		req := queuedRequest(1)
		req.Status = status
		svc, _ := adminFixture(req)

		_, err := svc.Requeue(context.Background(), req.ID)
		assert.Error(t, err, "requeue from %s", status)
	}
}
