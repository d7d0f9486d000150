package opqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-console/internal/crud"
	"marketplace-console/internal/forms"
	"marketplace-console/internal/models"
	"marketplace-console/internal/store"
)

type fixture struct {
	ops       *store.Memory[models.PendingOperation]
	inquiries *store.Memory[models.Inquiry]
	queue     *Queue
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ops:       store.NewMemory[models.PendingOperation](models.CollectionPendingOperations),
		inquiries: store.NewMemory[models.Inquiry](models.CollectionInquiries),
		now:       time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	editor := crud.NewEditor[models.Inquiry](f.inquiries, forms.InquiryForm, nil, nil, nil)
	f.queue = New(f.ops, editor)
	f.queue.now = func() time.Time { return f.now }
	return f
}

func inquiry() map[string]string {
	return map[string]string{
		"name":    "Rina",
		"email":   "rina@example.com",
		"message": "Is the villa in Ubud still available?",
	}
}

func TestEnqueue_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.queue.Enqueue(ctx, EnqueueRequest{Collection: "payments", Operation: models.OperationCreate})
	var verr *forms.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "collection", verr.Fields[0].Field)

	_, err = f.queue.Enqueue(ctx, EnqueueRequest{Collection: models.CollectionInquiries, Operation: models.OperationUpdate})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "record_id", verr.Fields[0].Field)

	n, _ := f.ops.Count(ctx, nil)
	assert.Zero(t, n)
}

func TestFlush_AppliesInCreationOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	op, err := f.queue.Enqueue(ctx, EnqueueRequest{Collection: models.CollectionInquiries, Operation: models.OperationCreate, Payload: inquiry()})
	require.NoError(t, err)
	assert.Equal(t, models.QueueStatusPending, op.Status)

	result, err := f.queue.Flush(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Done)

	done, err := f.ops.Get(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QueueStatusDone, done.Status)
	assert.NotEmpty(t, done.ResultID)
	assert.NotNil(t, done.CompletedAt)

	created, err := f.inquiries.Get(ctx, done.ResultID)
	require.NoError(t, err)
	assert.Equal(t, "Rina", created.Name)

	// nothing left to run
	result, err = f.queue.Flush(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, result.Processed)
}

func TestFlush_ValidationFailureIsPermanent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bad := inquiry()
	bad["email"] = "not-an-email"

	op, err := f.queue.Enqueue(ctx, EnqueueRequest{Collection: models.CollectionInquiries, Operation: models.OperationCreate, Payload: bad})
	require.NoError(t, err)

	result, err := f.queue.Flush(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PermanentFail)

	stored, _ := f.ops.Get(ctx, op.ID)
	assert.Equal(t, models.QueueStatusPermanentFail, stored.Status)
	assert.Nil(t, stored.NextRetryAt)
	assert.Equal(t, 1, stored.Attempts)
}

func TestFlush_MissingRecordIsPermanent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.queue.Enqueue(ctx, EnqueueRequest{Collection: models.CollectionInquiries, Operation: models.OperationDelete, RecordID: "gone"})
	require.NoError(t, err)

	result, err := f.queue.Flush(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PermanentFail)
}

func TestFlush_TransientFailureBacksOff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.inquiries.FailOn = func(op string, values map[string]interface{}) error {
		return errors.New("connection reset by peer")
	}

	op, err := f.queue.Enqueue(ctx, EnqueueRequest{Collection: models.CollectionInquiries, Operation: models.OperationCreate, Payload: inquiry()})
	require.NoError(t, err)

	result, err := f.queue.Flush(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Retrying)

	stored, _ := f.ops.Get(ctx, op.ID)
	assert.Equal(t, models.QueueStatusFailed, stored.Status)
	require.NotNil(t, stored.NextRetryAt)
	assert.True(t, stored.NextRetryAt.Equal(f.now.Add(30*time.Second)))

	// not due yet
	result, err = f.queue.Flush(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, result.Processed)

	// store recovers
	f.inquiries.FailOn = nil
	f.now = f.now.Add(time.Minute)
	result, err = f.queue.Flush(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Done)

	stored, _ = f.ops.Get(ctx, op.ID)
	assert.Equal(t, 2, stored.Attempts)
}

func TestFlush_GivesUpAfterMaxAttempts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.inquiries.FailOn = func(op string, values map[string]interface{}) error {
		return errors.New("timeout")
	}

	op, err := f.queue.Enqueue(ctx, EnqueueRequest{Collection: models.CollectionInquiries, Operation: models.OperationCreate, Payload: inquiry()})
	require.NoError(t, err)

	for i := 0; i < models.MaxRetryAttempts; i++ {
		_, err := f.queue.Flush(ctx, 10)
		require.NoError(t, err)
		f.now = f.now.Add(2 * time.Hour)
	}

	stored, _ := f.ops.Get(ctx, op.ID)
	assert.Equal(t, models.QueueStatusFailed, stored.Status)
	assert.Nil(t, stored.NextRetryAt)
	assert.Equal(t, models.MaxRetryAttempts, stored.Attempts)
	assert.Contains(t, stored.LastError, "max retries exceeded")

	stats, err := f.queue.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Zero(t, stats.Pending)
}

func TestPermanent(t *testing.T) {
	assert.True(t, Permanent(store.ErrNotFound))
	assert.True(t, Permanent(&forms.ValidationError{}))
	assert.True(t, Permanent(crud.ErrConfirmationRequired))
	assert.False(t, Permanent(errors.New("i/o timeout")))
}
