package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Razaranyi/GreenInvoice/internal/model"
)

func newTestStore(t *testing.T) *AuditStore {
	t.Helper()

	store, err := NewAuditStore(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func submission(client, docID string, marked bool, at time.Time) model.Submission {
	return model.Submission{
		RowIndex:       3,
		ClientName:     client,
		ClientID:       "client-" + client,
		Amount:         300,
		DocumentID:     docID,
		DocumentNumber: "320001",
		MarkedInvoiced: marked,
		CreatedAt:      at,
	}
}

func TestNewAuditStore_EmptyPath(t *testing.T) {
	_, err := NewAuditStore("")
	assert.Error(t, err)
}

func TestNewAuditStore_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "audit.db")

	store, err := NewAuditStore(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Migrate(context.Background()))
}

func TestMigrate_Idempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Migrate(context.Background()))
}

func TestRecordSubmission(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	at := time.Date(2023, 7, 20, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.RecordSubmission(ctx, submission("Alice", "doc-1", true, at)))

	subs, err := store.Submissions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)

	got := subs[0]
	assert.Equal(t, "Alice", got.ClientName)
	assert.Equal(t, "client-Alice", got.ClientID)
	assert.Equal(t, "doc-1", got.DocumentID)
	assert.Equal(t, "320001", got.DocumentNumber)
	assert.Equal(t, 3, got.RowIndex)
	assert.Equal(t, 300.0, got.Amount)
	assert.True(t, got.MarkedInvoiced)
	assert.True(t, got.CreatedAt.Equal(at))
	assert.NotZero(t, got.ID)
}

func TestRecordSubmission_Validation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	at := time.Now()

	err := store.RecordSubmission(ctx, submission("", "doc-1", true, at))
	assert.Error(t, err)

	err = store.RecordSubmission(ctx, submission("Alice", "", true, at))
	assert.Error(t, err)

	subs, err := store.Submissions(ctx)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestRecordSubmission_DefaultsCreatedAt(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordSubmission(ctx, submission("Alice", "doc-1", true, time.Time{})))

	subs, err := store.Submissions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.WithinDuration(t, time.Now(), subs[0].CreatedAt, time.Minute)
}

func TestSubmissions_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2023, 7, 20, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.RecordSubmission(ctx, submission("Alice", "doc-1", true, base)))
	require.NoError(t, store.RecordSubmission(ctx, submission("Bob", "doc-2", true, base.Add(time.Hour))))
	require.NoError(t, store.RecordSubmission(ctx, submission("Carol", "doc-3", true, base.Add(2*time.Hour))))

	subs, err := store.Submissions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 3)

	assert.Equal(t, "Carol", subs[0].ClientName)
	assert.Equal(t, "Bob", subs[1].ClientName)
	assert.Equal(t, "Alice", subs[2].ClientName)
}

func TestUnreconciled(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2023, 7, 20, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.RecordSubmission(ctx, submission("Alice", "doc-1", true, base)))
	require.NoError(t, store.RecordSubmission(ctx, submission("Bob", "doc-2", false, base.Add(time.Hour))))
	require.NoError(t, store.RecordSubmission(ctx, submission("Carol", "doc-3", false, base.Add(2*time.Hour))))

	subs, err := store.Unreconciled(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 2)

	assert.Equal(t, "Carol", subs[0].ClientName)
	assert.Equal(t, "Bob", subs[1].ClientName)
	for _, sub := range subs {
		assert.False(t, sub.MarkedInvoiced)
	}
}
