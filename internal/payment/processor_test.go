package payment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIdempotencyKey(t *testing.T) {
	bountyID := uuid.New()

	holdKey := IdempotencyKey(bountyID, OpHold)
	releaseKey := IdempotencyKey(bountyID, OpRelease)

	assert.Equal(t, bountyID.String()+":hold", holdKey)
	assert.NotEqual(t, holdKey, releaseKey)
	// Тот же баунти и операция всегда дают тот же ключ.
	assert.Equal(t, holdKey, IdempotencyKey(bountyID, OpHold))
}

func TestInternalProcessor_Idempotent(t *testing.T) {
	p := NewInternalProcessor()
	ctx := context.Background()
	bountyID := uuid.New()
	posterID := uuid.New()
	amount := decimal.NewFromInt(100)

	key := IdempotencyKey(bountyID, OpHold)
	assert.NoError(t, p.Hold(ctx, key, posterID, amount))
	// Повторный вызов с тем же ключом не ошибка.
	assert.NoError(t, p.Hold(ctx, key, posterID, amount))
}

func TestInternalProcessor_AllOps(t *testing.T) {
	p := NewInternalProcessor()
	ctx := context.Background()
	bountyID := uuid.New()
	userID := uuid.New()
	amount := decimal.NewFromInt(50)

	assert.NoError(t, p.Hold(ctx, IdempotencyKey(bountyID, OpHold), userID, amount))
	assert.NoError(t, p.Release(ctx, IdempotencyKey(bountyID, OpRelease), userID, amount))
	assert.NoError(t, p.Refund(ctx, IdempotencyKey(bountyID, OpRefund), userID, amount))
}

func TestInternalProcessor_ContextCancelled(t *testing.T) {
	p := NewInternalProcessor()

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	err := p.Hold(ctx, IdempotencyKey(uuid.New(), OpHold), uuid.New(), decimal.NewFromInt(10))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
