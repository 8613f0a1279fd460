// Package app aggregates dependencies and constructs the application's
// services.
package app

import (
	"context"
	"log/slog"

	"github.com/wanjalab/pesaflow/pkg/config"
	"github.com/wanjalab/pesaflow/pkg/domain"
	"github.com/wanjalab/pesaflow/pkg/domain/events"
	"github.com/wanjalab/pesaflow/pkg/eventbus"
	"github.com/wanjalab/pesaflow/pkg/provider"
	sessionrepo "github.com/wanjalab/pesaflow/pkg/repository/session"
	txrepo "github.com/wanjalab/pesaflow/pkg/repository/transaction"
	paymentsvc "github.com/wanjalab/pesaflow/pkg/service/payment"
	sessionsvc "github.com/wanjalab/pesaflow/pkg/service/session"
)

// Deps contains the infrastructure dependencies the services are built from.
type Deps struct {
	SessionRepo     sessionrepo.Repository
	TransactionRepo txrepo.Repository
	Processor       provider.Processor
	EventBus        eventbus.Bus
	Logger          *slog.Logger
}

// App holds the constructed services.
type App struct {
	Deps           *Deps
	Config         *config.App
	SessionService *sessionsvc.Service
	PaymentService *paymentsvc.Service
}

// New constructs the services and registers the terminal-state event
// subscribers.
func New(deps *Deps, cfg *config.App) *App {
	a := &App{
		Deps:   deps,
		Config: cfg,
		SessionService: sessionsvc.New(
			deps.SessionRepo,
			cfg.Session.TTL,
			deps.Logger,
		),
		PaymentService: paymentsvc.New(
			deps.TransactionRepo,
			deps.Processor,
			deps.EventBus,
			cfg.Mpesa.HTTPTimeout,
			cfg.Reconcile.PendingTimeout,
			deps.Logger,
		),
	}
	a.registerSubscribers()
	return a
}

// registerSubscribers attaches the audit-logging subscribers for terminal
// payment events. Further consumers (notifications, analytics) register on
// the same bus.
func (a *App) registerSubscribers() {
	logger := a.Deps.Logger
	a.Deps.EventBus.Register(
		events.EventTypePaymentCompleted,
		func(_ context.Context, event domain.Event) error {
			if e, ok := event.(events.PaymentCompleted); ok {
				logger.Info("payment completed",
					"transaction_id", e.TransactionID,
					"receipt", e.ReceiptReference,
					"amount", e.Amount,
				)
			}
			return nil
		},
	)
	a.Deps.EventBus.Register(
		events.EventTypePaymentFailed,
		func(_ context.Context, event domain.Event) error {
			if e, ok := event.(events.PaymentFailed); ok {
				logger.Warn("payment failed",
					"transaction_id", e.TransactionID,
					"result_code", e.ResultCode,
					"reason", e.Reason,
				)
			}
			return nil
		},
	)
}
