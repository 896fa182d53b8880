package delivery

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"takeaway-backend/models"
)

// Provider turns the store's rules and a request into a Decision. Bad customer
// input is a rejected Decision; the error is kept for internal faults.
type Provider interface {
	Quote(ctx context.Context, cfg *models.StoreConfig, req Request) (Decision, error)
}

type ConfigLoader interface {
	GetStoreConfig(ctx context.Context, id uuid.UUID) (*models.StoreConfig, error)
}

// Quoter picks the provider for the store's active rule type. QuoteDelivery
// never fails: every problem becomes a non-deliverable Decision.
type Quoter struct {
	configs   ConfigLoader
	providers map[models.RuleType]Provider
	logger    *zap.Logger
}

func NewQuoter(configs ConfigLoader, providers map[models.RuleType]Provider, logger *zap.Logger) *Quoter {
	return &Quoter{
		configs:   configs,
		providers: providers,
		logger:    logger,
	}
}

func (q *Quoter) QuoteDelivery(ctx context.Context, req Request) (decision Decision) {
	if req.Mode == models.ModeCollection {
		return Decision{
			IsDeliverable: true,
			Debug:         map[string]any{"engine": string(models.ModeCollection)},
		}
	}

	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("delivery provider panicked", zap.Any("panic", r), zap.Stringer("store_id", req.StoreID))
			decision = rejected(ReasonCalculationFailure, map[string]any{"error": fmt.Sprint(r)})
		}
	}()

	cfg, err := q.configs.GetStoreConfig(ctx, req.StoreID)
	if err != nil || cfg == nil {
		if err != nil {
			q.logger.Warn("store configuration lookup failed", zap.Stringer("store_id", req.StoreID), zap.Error(err))
		}
		return rejected(ReasonStoreNotFound, map[string]any{"store_id": req.StoreID.String()})
	}

	provider, ok := q.providers[cfg.ActiveRuleType]
	if !ok {
		q.logger.Error("store has an unknown delivery rule type",
			zap.Stringer("store_id", cfg.ID),
			zap.String("rule_type", string(cfg.ActiveRuleType)),
		)
		return rejected(ReasonInvalidRuleType, map[string]any{"rule_type": string(cfg.ActiveRuleType)})
	}

	decision, err = provider.Quote(ctx, cfg, req)
	if err != nil {
		q.logger.Error("delivery fee calculation failed",
			zap.Stringer("store_id", cfg.ID),
			zap.String("rule_type", string(cfg.ActiveRuleType)),
			zap.Error(err),
		)
		return rejected(ReasonCalculationFailure, map[string]any{
			"engine": string(cfg.ActiveRuleType),
			"error":  err.Error(),
		})
	}
	return decision
}
