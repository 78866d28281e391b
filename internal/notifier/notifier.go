// Package notifier delivers captured slot values to an external webhook
// trigger service.
//
// Delivery is at most once with no guarantee: a notification is issued in the
// background, its outcome is only logged, and it is never retried.
package notifier

import "context"

//go:generate mockgen -destination=mock/notifier_mock.go -package=mock bitbucket.org/sotavant/caster-skill/internal/notifier Notifier

// Notifier hands two values to the trigger service. Notify must return
// without waiting for the delivery to complete.
type Notifier interface {
	Notify(ctx context.Context, value1, value2 string)
}

// Outcome of a single delivery attempt.
type Outcome string

const (
	OutcomeSent     Outcome = "sent"
	OutcomeRejected Outcome = "rejected"
	OutcomeFailed   Outcome = "failed"
)

// Nop drops every notification. Used when no webhook key is configured.
type Nop struct{}

func (Nop) Notify(context.Context, string, string) {}
