package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/bountyhub/bountyhub-backend/internal/models"
	"github.com/bountyhub/bountyhub-backend/internal/pkg/apperror"
	"github.com/bountyhub/bountyhub-backend/internal/repository"
)

// WalletRepositoryInterface описывает хранилище кошельков.
type WalletRepositoryInterface interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (*models.UserBalance, error)
	Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*models.WalletTransaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WalletTransaction, error)
	WithdrawTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount decimal.Decimal) (*models.WalletTransaction, error)
	GetEscrowByBountyID(ctx context.Context, bountyID uuid.UUID) (*models.WalletTransaction, error)
}

// WithdrawalRepositoryInterface описывает хранилище заявок на вывод.
type WithdrawalRepositoryInterface interface {
	CreateTx(ctx context.Context, tx *sqlx.Tx, w *models.Withdrawal) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Withdrawal, error)
}

// PaymentMethodReader — проверка привязанного способа оплаты при выводе.
type PaymentMethodReader interface {
	ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]models.PaymentMethod, error)
}

// WalletService содержит бизнес-логику кошелька: баланс, пополнение,
// история операций и вывод средств.
type WalletService struct {
	runTx       txRunner
	wallet      WalletRepositoryInterface
	withdrawals WithdrawalRepositoryInterface
	methods     PaymentMethodReader
}

func NewWalletService(db *sqlx.DB, wallet WalletRepositoryInterface, withdrawals WithdrawalRepositoryInterface, methods PaymentMethodReader) *WalletService {
	return &WalletService{runTx: dbTxRunner(db), wallet: wallet, withdrawals: withdrawals, methods: methods}
}

// GetBalance возвращает баланс пользователя.
func (s *WalletService) GetBalance(ctx context.Context, userID uuid.UUID) (*models.UserBalance, error) {
	return s.wallet.GetBalance(ctx, userID)
}

// Deposit пополняет баланс.
func (s *WalletService) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*models.WalletTransaction, error) {
	if !amount.IsPositive() {
		return nil, apperror.New(apperror.ErrCodeInvalidAmount, "сумма пополнения должна быть положительной")
	}
	return s.wallet.Deposit(ctx, userID, amount.Round(2), "Пополнение баланса")
}

// ListTransactions возвращает историю транзакций пользователя.
func (s *WalletService) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WalletTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.wallet.ListTransactions(ctx, userID, limit, offset)
}

// GetEscrowByBounty возвращает escrow-запись баунти.
func (s *WalletService) GetEscrowByBounty(ctx context.Context, bountyID uuid.UUID) (*models.WalletTransaction, error) {
	escrow, err := s.wallet.GetEscrowByBountyID(ctx, bountyID)
	if err != nil {
		if errors.Is(err, repository.ErrEscrowNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "по этому баунти нет удержанных средств")
		}
		return nil, err
	}
	return escrow, nil
}

// Withdraw создаёт заявку на вывод средств, списывая сумму с доступного
// баланса в той же транзакции.
func (s *WalletService) Withdraw(ctx context.Context, userID, paymentMethodID uuid.UUID, amount decimal.Decimal) (*models.Withdrawal, error) {
	if !amount.IsPositive() {
		return nil, apperror.New(apperror.ErrCodeInvalidAmount, "сумма вывода должна быть положительной")
	}
	amount = amount.Round(2)

	methods, err := s.methods.ListPaymentMethods(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить способы оплаты")
	}
	found := false
	for _, m := range methods {
		if m.ID == paymentMethodID {
			found = true
			break
		}
	}
	if !found {
		return nil, apperror.New(apperror.ErrCodeNotFound, "способ оплаты не найден")
	}

	withdrawal := &models.Withdrawal{
		ID:              uuid.New(),
		UserID:          userID,
		PaymentMethodID: paymentMethodID,
		Amount:          amount,
		Status:          models.WithdrawalStatusPending,
	}

	err = s.runTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.wallet.WithdrawTx(ctx, tx, userID, amount); err != nil {
			if errors.Is(err, repository.ErrInsufficientFunds) {
				return apperror.ErrInsufficientBalance
			}
			return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось списать средства")
		}
		return s.withdrawals.CreateTx(ctx, tx, withdrawal)
	})
	if err != nil {
		return nil, err
	}

	return withdrawal, nil
}

// ListWithdrawals возвращает заявки пользователя на вывод.
func (s *WalletService) ListWithdrawals(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Withdrawal, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.withdrawals.ListByUser(ctx, userID, limit, offset)
}
