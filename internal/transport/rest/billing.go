package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

type billingService interface {
	Plans() []domain.Plan
	StartSubscription(ctx context.Context, planType domain.PlanType) (*domain.Subscription, error)
}

// BillingHandler serves plans and subscription checkout.
type BillingHandler struct {
	billing billingService
	log     *slog.Logger
}

// NewBillingHandler creates a BillingHandler.
func NewBillingHandler(billing billingService, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{billing: billing, log: logger.With("handler", "billing")}
}

// Plans lists the subscription plans.
// GET /api/v1/plans
func (h *BillingHandler) Plans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.billing.Plans())
}

type subscribeRequest struct {
	PlanType domain.PlanType `json:"plan_type"`
}

// Subscribe starts a subscription and returns the approval redirect.
// POST /api/v1/subscriptions
func (h *BillingHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sub, err := h.billing.StartSubscription(r.Context(), req.PlanType)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}
