package loan

import (
	"context"
	"log/slog"

	"loan-origination/internal/infrastructure/monitoring"

	"github.com/google/uuid"
)

// Notifier delivers push notifications and templated emails. Both are best
// effort: a failure is logged and never undoes a committed transition.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, body string) error
	Email(ctx context.Context, address, template string, params map[string]string) error
}

const (
	TemplateDisbursed          = "loan_disbursed"
	TemplateDisbursementFailed = "loan_disbursement_failed"
)

type dispatcher struct {
	notifier Notifier
	logger   *slog.Logger
}

func (d dispatcher) notify(ctx context.Context, userID uuid.UUID, title, body string) {
	if d.notifier == nil {
		return
	}
	err := d.notifier.Notify(ctx, userID, title, body)
	monitoring.RecordNotification("push", err)
	if err != nil {
		d.logger.WarnContext(ctx, "Push notification failed", slog.String("userID", userID.String()), slog.Any("error", err))
	}
}

func (d dispatcher) email(ctx context.Context, address, template string, params map[string]string) {
	if d.notifier == nil || address == "" {
		return
	}
	err := d.notifier.Email(ctx, address, template, params)
	monitoring.RecordNotification("email", err)
	if err != nil {
		d.logger.WarnContext(ctx, "Email dispatch failed", slog.String("template", template), slog.Any("error", err))
	}
}
