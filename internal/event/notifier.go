package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-origination/internal/config"
	"loan-origination/internal/domain/loan"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
)

const (
	RoutingKeyPush  = "notification.push"
	RoutingKeyEmail = "notification.email"
)

// ErrNotifierUnavailable is returned while the breaker is open.
var ErrNotifierUnavailable = errors.New("notification broker unavailable")

type PushMessage struct {
	UserID    uuid.UUID `json:"userId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

type EmailMessage struct {
	To        string            `json:"to"`
	Template  string            `json:"template"`
	Params    map[string]string `json:"params,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Notifier turns workflow notifications into broker messages.
type Notifier struct {
	publisher Publisher
	breaker   *gobreaker.CircuitBreaker
	timeout   time.Duration
	logger    *slog.Logger
}

var _ loan.Notifier = (*Notifier)(nil)

func NewNotifier(publisher Publisher, cfg config.NotificationConfig, logger *slog.Logger) *Notifier {
	l := logger.With("component", "Notifier")
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	settings := gobreaker.Settings{
		Name:        "notification-broker",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			l.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &Notifier{
		publisher: publisher,
		breaker:   gobreaker.NewCircuitBreaker(settings),
		timeout:   cfg.PublishTimeout,
		logger:    l,
	}
}

func (n *Notifier) Notify(ctx context.Context, userID uuid.UUID, title, body string) error {
	return n.publish(ctx, RoutingKeyPush, PushMessage{
		UserID:    userID,
		Title:     title,
		Body:      body,
		Timestamp: time.Now().UTC(),
	})
}

func (n *Notifier) Email(ctx context.Context, address, template string, params map[string]string) error {
	return n.publish(ctx, RoutingKeyEmail, EmailMessage{
		To:        address,
		Template:  template,
		Params:    params,
		Timestamp: time.Now().UTC(),
	})
}

func (n *Notifier) publish(ctx context.Context, routingKey string, msg any) error {
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	_, err := n.breaker.Execute(func() (interface{}, error) {
		return nil, n.publisher.Publish(ctx, routingKey, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		n.logger.WarnContext(ctx, "Notification dropped, breaker open", "routingKey", routingKey)
		return fmt.Errorf("%w: %w", ErrNotifierUnavailable, err)
	}
	return err
}
