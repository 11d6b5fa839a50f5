package settlement

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/craftlink/craftlink-backend/internal/domain/entities"
	"github.com/craftlink/craftlink-backend/internal/infrastructure/config"
	"github.com/craftlink/craftlink-backend/pkg/logger"
)

const (
	// sweepMinAge keeps the sweep off intents the webhook is still likely
	// to confirm on its own
	sweepMinAge = 10 * time.Minute
	sweepBatch  = 100
)

// Sweeper periodically polls the gateway for intents that are still awaiting
// confirmation, covering the case where both the webhook and the redirect
// fallback were lost. Confirmed sessions funnel through the same
// ConfirmPayment step as every other trigger.
type Sweeper struct {
	service *Service
	cfg     config.SettlementConfig
	cron    *cron.Cron
	logger  *logger.Logger
}

// NewSweeper creates a new reconciliation sweeper
func NewSweeper(service *Service, cfg config.SettlementConfig, logger *logger.Logger) *Sweeper {
	return &Sweeper{
		service: service,
		cfg:     cfg,
		cron:    cron.New(),
		logger:  logger,
	}
}

// Start schedules the sweep. No-op when sweeping is disabled.
func (s *Sweeper) Start() error {
	if !s.cfg.SweepEnabled {
		s.logger.Info("Settlement sweep disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.SweepSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		s.Run(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Settlement sweep scheduled", "schedule", s.cfg.SweepSchedule)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Run executes one sweep pass
func (s *Sweeper) Run(ctx context.Context) {
	maxAge := time.Duration(s.cfg.SweepMaxAgeHours) * time.Hour

	intents, err := s.service.intents.ListUnconfirmedWithSession(ctx, sweepMinAge, maxAge, sweepBatch)
	if err != nil {
		s.logger.Error("Sweep listing failed", "error", err)
		return
	}
	if len(intents) == 0 {
		return
	}

	s.logger.Info("Sweeping unconfirmed intents", "count", len(intents))

	confirmed := 0
	for _, intent := range intents {
		if ctx.Err() != nil {
			return
		}
		if s.sweepIntent(ctx, intent) {
			confirmed++
		}
	}

	s.logger.Info("Sweep finished", "checked", len(intents), "confirmed", confirmed)
}

func (s *Sweeper) sweepIntent(ctx context.Context, intent *entities.PaymentIntent) bool {
	session, err := s.service.gateway.GetCheckoutSession(ctx, *intent.CheckoutSessionID)
	if err != nil {
		s.logger.Warn("Sweep session poll failed",
			"intent_id", intent.ID,
			"error", err)
		return false
	}

	if !sessionMatchesIntent(session, intent) {
		return false
	}

	_, err = s.service.ConfirmPayment(ctx, intent.ID, &entities.PaymentEvidence{
		Source:    entities.EvidenceSourceFallback,
		SessionID: session.ID,
		Status:    session.Status,
		Amount:    session.Amount,
		Currency:  session.Currency,
		Reference: session.Reference,
	})
	if err != nil {
		s.logger.Error("Sweep confirmation failed",
			"intent_id", intent.ID,
			"error", err)
		return false
	}
	return true
}
