package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubmissionStatus tracks delivered creative work through review
type SubmissionStatus string

const (
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	SubmissionStatusInReview  SubmissionStatus = "in_review"
	SubmissionStatusApproved  SubmissionStatus = "approved"
	SubmissionStatusRejected  SubmissionStatus = "rejected"
)

// Submission is the delivered work an escrow pays for. Only the fields the
// settlement core touches live here; the main application owns the rest.
type Submission struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	OpportunityID uuid.UUID        `json:"opportunity_id" db:"opportunity_id"`
	CreativeID    uuid.UUID        `json:"creative_id" db:"creative_id"`
	EmployerID    uuid.UUID        `json:"employer_id" db:"employer_id"`
	Status        SubmissionStatus `json:"status" db:"status"`
	RevisionCount int              `json:"revision_count" db:"revision_count"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`
}

// Pitch is a fundable pitch. RecipientID designates who receives settled
// investments; it may be a mentor championing a creative rather than the
// pitch creator.
type Pitch struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	CreatorID   uuid.UUID       `json:"creator_id" db:"creator_id"`
	RecipientID uuid.UUID       `json:"recipient_id" db:"recipient_id"`
	FundedTotal decimal.Decimal `json:"funded_total" db:"funded_total"`
	Currency    string          `json:"currency" db:"currency"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Validate validates the pitch
func (p *Pitch) Validate() error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("pitch ID is required")
	}
	if p.RecipientID == uuid.Nil {
		return fmt.Errorf("pitch recipient is required")
	}
	return nil
}
