// Package billing lists subscription plans and starts redirect-based
// subscriptions with the payment processor.
package billing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/kiddict-backend/internal/config"
	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

type processor interface {
	Enabled() bool
	CreateSubscription(ctx context.Context, planID string) (*domain.Subscription, error)
}

// Service exposes the configured plans.
type Service struct {
	log   *slog.Logger
	pay   processor
	plans []domain.Plan
}

// NewService creates a billing service from the parsed plan configuration.
func NewService(logger *slog.Logger, pay processor, plans []config.PlanConfig) *Service {
	out := make([]domain.Plan, 0, len(plans))
	for _, p := range plans {
		out = append(out, domain.Plan{
			ID:       p.ID,
			Type:     domain.PlanType(strings.ToUpper(p.Type)),
			Name:     p.Name,
			Price:    p.Price,
			Features: p.Features,
		})
	}
	return &Service{log: logger.With("service", "billing"), pay: pay, plans: out}
}

// Plans returns the plans in configured order.
func (s *Service) Plans() []domain.Plan {
	return append([]domain.Plan(nil), s.plans...)
}

// StartSubscription creates a subscription for planType and returns the
// processor's approval redirect.
func (s *Service) StartSubscription(ctx context.Context, planType domain.PlanType) (*domain.Subscription, error) {
	planType = domain.PlanType(strings.ToUpper(strings.TrimSpace(string(planType))))
	if planType == domain.PlanFree {
		return nil, domain.NewValidationError("plan_type", "the free plan needs no subscription")
	}

	var plan *domain.Plan
	for i := range s.plans {
		if s.plans[i].Type == planType {
			plan = &s.plans[i]
			break
		}
	}
	if plan == nil {
		return nil, domain.NewValidationError("plan_type", "unknown plan")
	}
	if !s.pay.Enabled() {
		return nil, fmt.Errorf("payments not configured: %w", domain.ErrServiceUnavailable)
	}

	sub, err := s.pay.CreateSubscription(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	sub.PlanType = planType

	s.log.InfoContext(ctx, "subscription started",
		slog.String("plan", plan.ID),
		slog.String("subscription_id", sub.ID))
	return sub, nil
}
