// Package payment изолирует взаимодействие с платёжным кастодианом.
// Внутренний ledger кошельков остаётся источником истины, Processor
// отражает операции на внешнем платёжном контуре.
package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Операции над удержанными средствами.
const (
	OpHold    = "hold"
	OpRelease = "release"
	OpRefund  = "refund"
)

// IdempotencyKey строит ключ идемпотентности операции. Повтор вызова
// с тем же ключом у кастодиана не приводит к повторному движению средств.
func IdempotencyKey(bountyID uuid.UUID, op string) string {
	return fmt.Sprintf("%s:%s", bountyID, op)
}

// Processor — синхронный интерфейс платёжного кастодиана. Все вызовы
// выполняются внутри транзакции БД: ошибка кастодиана откатывает
// транзакцию целиком.
type Processor interface {
	Hold(ctx context.Context, idempotencyKey string, posterID uuid.UUID, amount decimal.Decimal) error
	Release(ctx context.Context, idempotencyKey string, hunterID uuid.UUID, amount decimal.Decimal) error
	Refund(ctx context.Context, idempotencyKey string, posterID uuid.UUID, amount decimal.Decimal) error
}

// InternalProcessor — кастодиан по умолчанию: средства живут только во
// внутреннем ledger, внешних вызовов нет. Ключи идемпотентности всё равно
// учитываются, чтобы поведение совпадало с внешним шлюзом.
type InternalProcessor struct {
	mu        sync.Mutex
	processed map[string]struct{}
}

func NewInternalProcessor() *InternalProcessor {
	return &InternalProcessor{processed: make(map[string]struct{})}
}

func (p *InternalProcessor) Hold(ctx context.Context, key string, posterID uuid.UUID, amount decimal.Decimal) error {
	return p.record(ctx, key, "hold", posterID, amount)
}

func (p *InternalProcessor) Release(ctx context.Context, key string, hunterID uuid.UUID, amount decimal.Decimal) error {
	return p.record(ctx, key, "release", hunterID, amount)
}

func (p *InternalProcessor) Refund(ctx context.Context, key string, posterID uuid.UUID, amount decimal.Decimal) error {
	return p.record(ctx, key, "refund", posterID, amount)
}

func (p *InternalProcessor) record(ctx context.Context, key, op string, userID uuid.UUID, amount decimal.Decimal) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.processed[key]; ok {
		logrus.WithFields(logrus.Fields{"key": key, "op": op}).Debug("payment: повторный вызов, ключ уже обработан")
		return nil
	}
	p.processed[key] = struct{}{}

	logrus.WithFields(logrus.Fields{
		"key":     key,
		"op":      op,
		"user_id": userID,
		"amount":  amount.String(),
	}).Info("payment: операция проведена внутренним кастодианом")
	return nil
}
