package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftlink/craftlink-backend/internal/domain/entities"
	"github.com/craftlink/craftlink-backend/internal/infrastructure/repositories"
	"github.com/craftlink/craftlink-backend/pkg/logger"
	"github.com/craftlink/craftlink-backend/pkg/metrics"
)

// Service owns the wallet ledger. Every balance change flows through
// ApplyMutation's stored procedure, so a service-level call is one atomic
// ledger entry plus balance update, idempotent on its derived key.
type Service struct {
	walletRepo *repositories.WalletRepository
	logger     *logger.Logger
}

// NewService creates a new wallet service
func NewService(walletRepo *repositories.WalletRepository, logger *logger.Logger) *Service {
	return &Service{
		walletRepo: walletRepo,
		logger:     logger,
	}
}

// GetOrCreateWallet lazily provisions a wallet on first access
func (s *Service) GetOrCreateWallet(ctx context.Context, userID uuid.UUID, currency string) (*entities.Wallet, error) {
	return s.walletRepo.GetOrCreateWallet(ctx, userID, currency)
}

// GetBalances returns a user's wallet for one currency
func (s *Service) GetBalances(ctx context.Context, userID uuid.UUID, currency string) (*entities.Wallet, error) {
	return s.walletRepo.GetWallet(ctx, userID, currency)
}

// GetLedger returns a page of the user's ledger entries, newest first
func (s *Service) GetLedger(ctx context.Context, userID uuid.UUID, currency string, limit, offset int) ([]*entities.WalletLedgerEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.walletRepo.GetLedgerEntries(ctx, userID, currency, limit, offset)
}

// CreditForSource credits settled funds to a recipient's available balance.
// The idempotency key is derived from the source coordinates, so replaying
// the same settlement credits at most once.
func (s *Service) CreditForSource(ctx context.Context, userID uuid.UUID, currency string, amount decimal.Decimal, sourceType entities.LedgerSourceType, sourceID string, metadata map[string]any) (uuid.UUID, error) {
	if _, err := s.walletRepo.GetOrCreateWallet(ctx, userID, currency); err != nil {
		return uuid.Nil, err
	}

	entryID, err := s.walletRepo.ApplyMutation(ctx, &entities.ApplyMutationParams{
		UserID:         userID,
		Currency:       currency,
		AvailableDelta: amount,
		PendingDelta:   decimal.Zero,
		EntryType:      entities.LedgerEntryCredit,
		Amount:         amount,
		SourceType:     sourceType,
		SourceID:       sourceID,
		IdempotencyKey: CreditKey(sourceType, sourceID, userID, currency, amount),
		Metadata:       metadata,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("credit wallet: %w", err)
	}

	metrics.WalletMutations.WithLabelValues(string(entities.LedgerEntryCredit)).Inc()
	s.logger.Info("Wallet credited",
		"user_id", userID,
		"currency", currency,
		"amount", amount.StringFixed(2),
		"source_type", sourceType,
		"source_id", sourceID)

	return entryID, nil
}

// PlaceHold moves funds from available to pending for an in-flight cashout.
// Fails with ErrInsufficientFunds when the available balance cannot cover it.
func (s *Service) PlaceHold(ctx context.Context, userID uuid.UUID, currency string, amount decimal.Decimal, cashoutID uuid.UUID) (uuid.UUID, error) {
	entryID, err := s.walletRepo.ApplyMutation(ctx, &entities.ApplyMutationParams{
		UserID:         userID,
		Currency:       currency,
		AvailableDelta: amount.Neg(),
		PendingDelta:   amount,
		EntryType:      entities.LedgerEntryHold,
		Amount:         amount,
		SourceType:     entities.LedgerSourceCashout,
		SourceID:       cashoutID.String(),
		IdempotencyKey: HoldKey(cashoutID),
	})
	if err != nil {
		return uuid.Nil, err
	}

	metrics.WalletMutations.WithLabelValues(string(entities.LedgerEntryHold)).Inc()
	return entryID, nil
}

// ReleaseHold returns held funds to available after a failed payout
func (s *Service) ReleaseHold(ctx context.Context, userID uuid.UUID, currency string, amount decimal.Decimal, cashoutID uuid.UUID) (uuid.UUID, error) {
	entryID, err := s.walletRepo.ApplyMutation(ctx, &entities.ApplyMutationParams{
		UserID:         userID,
		Currency:       currency,
		AvailableDelta: amount,
		PendingDelta:   amount.Neg(),
		EntryType:      entities.LedgerEntryRelease,
		Amount:         amount,
		SourceType:     entities.LedgerSourceCashout,
		SourceID:       cashoutID.String(),
		IdempotencyKey: ReleaseKey(cashoutID),
	})
	if err != nil {
		return uuid.Nil, err
	}

	metrics.WalletMutations.WithLabelValues(string(entities.LedgerEntryRelease)).Inc()
	return entryID, nil
}

// SettleHold burns the held amount once the gateway confirms the payout
func (s *Service) SettleHold(ctx context.Context, userID uuid.UUID, currency string, amount decimal.Decimal, cashoutID uuid.UUID) (uuid.UUID, error) {
	entryID, err := s.walletRepo.ApplyMutation(ctx, &entities.ApplyMutationParams{
		UserID:         userID,
		Currency:       currency,
		AvailableDelta: decimal.Zero,
		PendingDelta:   amount.Neg(),
		EntryType:      entities.LedgerEntryDebit,
		Amount:         amount,
		SourceType:     entities.LedgerSourceCashout,
		SourceID:       cashoutID.String(),
		IdempotencyKey: SettleHoldKey(cashoutID),
	})
	if err != nil {
		return uuid.Nil, err
	}

	metrics.WalletMutations.WithLabelValues(string(entities.LedgerEntryDebit)).Inc()
	return entryID, nil
}
