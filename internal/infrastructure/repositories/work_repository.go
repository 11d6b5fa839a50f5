package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/craftlink/craftlink-backend/internal/domain/entities"
)

// SubmissionRepository reads the submission rows the settlement core needs
type SubmissionRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *sqlx.DB, logger *zap.Logger) *SubmissionRepository {
	return &SubmissionRepository{db: db, logger: logger}
}

// GetByID retrieves a submission by id
func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Submission, error) {
	query := `
		SELECT id, opportunity_id, creative_id, employer_id, status,
		       revision_count, created_at, updated_at
		FROM submissions
		WHERE id = $1
	`

	submission := &entities.Submission{}
	err := r.db.GetContext(ctx, submission, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrNotFound
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}

	return submission, nil
}

// MarkApproved moves a submission to approved when the escrow settles
func (r *SubmissionRepository) MarkApproved(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE submissions
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, string(entities.SubmissionStatusApproved), time.Now())
	if err != nil {
		return fmt.Errorf("mark submission approved: %w", err)
	}
	return nil
}

// PitchRepository reads and updates the pitch rows the settlement core needs
type PitchRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPitchRepository creates a new pitch repository
func NewPitchRepository(db *sqlx.DB, logger *zap.Logger) *PitchRepository {
	return &PitchRepository{db: db, logger: logger}
}

// GetByID retrieves a pitch by id
func (r *PitchRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Pitch, error) {
	query := `
		SELECT id, creator_id, recipient_id, funded_total, currency, created_at, updated_at
		FROM pitches
		WHERE id = $1
	`

	pitch := &entities.Pitch{}
	err := r.db.GetContext(ctx, pitch, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrNotFound
		}
		return nil, fmt.Errorf("get pitch: %w", err)
	}

	return pitch, nil
}

// IncrementFundedTotal adds a settled investment to the pitch's running total
func (r *PitchRepository) IncrementFundedTotal(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	query := `
		UPDATE pitches
		SET funded_total = funded_total + $2, updated_at = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, amount, time.Now())
	if err != nil {
		return fmt.Errorf("increment funded total: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return entities.ErrNotFound
	}

	return nil
}
