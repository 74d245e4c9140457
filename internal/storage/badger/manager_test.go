package badger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/conduit/internal/common"
	"github.com/ternarybob/conduit/internal/interfaces"
	"github.com/ternarybob/conduit/internal/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	manager, err := NewManager(arbor.NewLogger(), &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "conduit-test"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })
	return manager
}

func TestProcessedItemStorage_InsertOrFail(t *testing.T) {
	store := newTestManager(t).ProcessedItemStorage()
	ctx := context.Background()

	processed, err := store.IsProcessed(ctx, "fs_1", "rss", "item-1")
	require.NoError(t, err)
	assert.False(t, processed)

	require.NoError(t, store.MarkProcessed(ctx, "fs_1", "rss", "item-1"))

	processed, err = store.IsProcessed(ctx, "fs_1", "rss", "item-1")
	require.NoError(t, err)
	assert.True(t, processed)

	// second claim loses: insert-or-fail, never silent success
	err = store.MarkProcessed(ctx, "fs_1", "rss", "item-1")
	assert.ErrorIs(t, err, interfaces.ErrAlreadyProcessed)
}

func TestProcessedItemStorage_KeysAreScopedPerStepAndSource(t *testing.T) {
	store := newTestManager(t).ProcessedItemStorage()
	ctx := context.Background()

	require.NoError(t, store.MarkProcessed(ctx, "fs_1", "rss", "item-1"))

	// same item id under another flow step or source type is a fresh claim
	require.NoError(t, store.MarkProcessed(ctx, "fs_2", "rss", "item-1"))
	require.NoError(t, store.MarkProcessed(ctx, "fs_1", "github", "item-1"))
}

func TestProcessedItemStorage_DeleteByFlowStep(t *testing.T) {
	store := newTestManager(t).ProcessedItemStorage()
	ctx := context.Background()

	require.NoError(t, store.MarkProcessed(ctx, "fs_1", "rss", "item-1"))
	require.NoError(t, store.MarkProcessed(ctx, "fs_1", "rss", "item-2"))
	require.NoError(t, store.MarkProcessed(ctx, "fs_2", "rss", "item-3"))

	deleted, err := store.DeleteByFlowStep(ctx, "fs_1")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	processed, err := store.IsProcessed(ctx, "fs_1", "rss", "item-1")
	require.NoError(t, err)
	assert.False(t, processed)

	// the other step's history is untouched
	processed, err = store.IsProcessed(ctx, "fs_2", "rss", "item-3")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestCredentialStorage_TokenRoundTrip(t *testing.T) {
	store := newTestManager(t).CredentialStorage()
	ctx := context.Background()

	_, err := store.GetToken(ctx, "threads")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	require.NoError(t, store.SaveToken(ctx, &models.OAuthToken{
		Provider:    "threads",
		AccessToken: "tok",
		ExpiresAt:   time.Now().Add(time.Hour),
	}))

	token, err := store.GetToken(ctx, "threads")
	require.NoError(t, err)
	assert.Equal(t, "tok", token.AccessToken)
	assert.False(t, token.UpdatedAt.IsZero())

	require.NoError(t, store.DeleteToken(ctx, "threads"))
	_, err = store.GetToken(ctx, "threads")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestCredentialStorage_ConsumeStateIsSingleUse(t *testing.T) {
	store := newTestManager(t).CredentialStorage()
	ctx := context.Background()

	require.NoError(t, store.SaveState(ctx, &models.AuthState{
		State:     "nonce-1",
		Provider:  "threads",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Minute),
	}))

	record, err := store.ConsumeState(ctx, "nonce-1")
	require.NoError(t, err)
	assert.Equal(t, "threads", record.Provider)

	_, err = store.ConsumeState(ctx, "nonce-1")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestCredentialStorage_ExpiredStateIsConsumedAndRejected(t *testing.T) {
	store := newTestManager(t).CredentialStorage()
	ctx := context.Background()

	require.NoError(t, store.SaveState(ctx, &models.AuthState{
		State:     "nonce-old",
		Provider:  "threads",
		ExpiresAt: time.Now().Add(-time.Second),
	}))

	_, err := store.ConsumeState(ctx, "nonce-old")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	// the expired record was still deleted
	_, err = store.ConsumeState(ctx, "nonce-old")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestJobStorage_ListFilters(t *testing.T) {
	store := newTestManager(t).JobStorage()
	ctx := context.Background()

	flowA := &models.Flow{ID: "flow_a", PipelineID: "pipe_1"}
	flowB := &models.Flow{ID: "flow_b", PipelineID: "pipe_1"}

	jobs := []*models.Job{
		models.NewJob("job_1", flowA),
		models.NewJob("job_2", flowA),
		models.NewJob("job_3", flowB),
	}
	require.NoError(t, jobs[1].Transition(models.JobStatusProcessing))
	require.NoError(t, jobs[1].Transition(models.JobStatusCompleted))
	for _, job := range jobs {
		require.NoError(t, store.Save(ctx, job))
	}

	byFlow, err := store.List(ctx, &interfaces.JobListOptions{FlowID: "flow_a"})
	require.NoError(t, err)
	assert.Len(t, byFlow, 2)

	byStatus, err := store.List(ctx, &interfaces.JobListOptions{Status: models.JobStatusCompleted})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "job_2", byStatus[0].ID)

	limited, err := store.List(ctx, &interfaces.JobListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestJobStorage_DeleteCompletedBefore(t *testing.T) {
	store := newTestManager(t).JobStorage()
	ctx := context.Background()

	flow := &models.Flow{ID: "flow_a", PipelineID: "pipe_1"}

	old := models.NewJob("job_old", flow)
	require.NoError(t, old.Transition(models.JobStatusProcessing))
	require.NoError(t, old.Transition(models.JobStatusCompleted))
	past := time.Now().Add(-48 * time.Hour)
	old.CompletedAt = &past

	recent := models.NewJob("job_recent", flow)
	require.NoError(t, recent.Transition(models.JobStatusProcessing))
	require.NoError(t, recent.Transition(models.JobStatusCompleted))

	running := models.NewJob("job_running", flow)
	require.NoError(t, running.Transition(models.JobStatusProcessing))

	for _, job := range []*models.Job{old, recent, running} {
		require.NoError(t, store.Save(ctx, job))
	}

	deleted, err := store.DeleteCompletedBefore(ctx, time.Now().Add(-24*time.Hour).Unix())
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = store.Get(ctx, "job_old")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	_, err = store.Get(ctx, "job_recent")
	assert.NoError(t, err)
	_, err = store.Get(ctx, "job_running")
	assert.NoError(t, err)
}
