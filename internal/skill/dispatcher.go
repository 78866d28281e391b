// Package skill routes voice platform events to handlers and builds the
// speech responses for the Caster skill.
package skill

import (
	"bitbucket.org/sotavant/caster-skill/internal/logger"
	"bitbucket.org/sotavant/caster-skill/internal/notifier"
	"context"
	"fmt"
	"go.uber.org/zap"
	"sort"
)

// IntentHandler produces exactly one Response for an intent.
type IntentHandler func(ctx context.Context, intent *Intent, session *Session) Response

type Config struct {
	// ApplicationID is checked against every event's session when set.
	ApplicationID string `yaml:"application_id"`
}

// Dispatcher maps events to handlers.
type Dispatcher struct {
	cfg      Config
	notifier notifier.Notifier
	log      *zap.Logger
	metrics  *Metrics
	intents  map[string]IntentHandler
}

type Option func(*Dispatcher)

func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithIntent adds a handler for name or replaces the built-in one.
func WithIntent(name string, h IntentHandler) Option {
	return func(d *Dispatcher) { d.intents[name] = h }
}

func New(cfg Config, n notifier.Notifier, opts ...Option) *Dispatcher {
	if n == nil {
		n = notifier.Nop{}
	}

	d := &Dispatcher{
		cfg:      cfg,
		notifier: n,
		log:      logger.Log,
	}
	d.intents = map[string]IntentHandler{
		IntentOneShot: d.oneShot,
		IntentHelp:    help,
		IntentStop:    goodbye,
		IntentCancel:  goodbye,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Intents returns the names of the mapped intents, sorted.
func (d *Dispatcher) Intents() []string {
	names := make([]string, 0, len(d.intents))
	for name := range d.intents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch produces the Response for e. Errors are returned only for events
// no response can be built for: malformed events and events addressed to
// another application. An unmapped intent is answered with the fallback.
func (d *Dispatcher) Dispatch(ctx context.Context, e Event) (Response, error) {
	if err := e.validate(); err != nil {
		return Response{}, err
	}

	if d.cfg.ApplicationID != "" && e.Session.ApplicationID != d.cfg.ApplicationID {
		return Response{}, fmt.Errorf("%w: %q", ErrInvalidApplication, e.Session.ApplicationID)
	}

	if e.Session.New && e.Type != SessionStartedRequest {
		d.sessionStarted(e)
	}

	switch e.Type {
	case SessionStartedRequest:
		d.metrics.observeRequest(e.Type, "")
		d.sessionStarted(e)
		return silent(false), nil
	case LaunchRequest:
		d.metrics.observeRequest(e.Type, "")
		d.lifecycle("onLaunch", e)
		return welcome(e.Session), nil
	case SessionEndedRequest:
		d.metrics.observeRequest(e.Type, "")
		d.lifecycle("onSessionEnded", e, zap.String("reason", e.Reason))
		return silent(true), nil
	}

	h, err := d.handler(e.Intent.Name)
	if err != nil {
		d.log.Warn("cannot dispatch intent",
			zap.Error(err),
			zap.String("requestId", e.RequestID),
			zap.String("sessionId", e.Session.ID),
		)
		d.metrics.observeRequest(e.Type, unknownIntent)
		d.metrics.observeFallback()
		return fallback(), nil
	}

	d.metrics.observeRequest(e.Type, e.Intent.Name)
	return h(ctx, e.Intent, e.Session), nil
}

func (d *Dispatcher) handler(name string) (IntentHandler, error) {
	h, ok := d.intents[name]
	if !ok {
		return nil, fmt.Errorf("%w for intent %q", ErrNoHandler, name)
	}
	return h, nil
}

func (d *Dispatcher) sessionStarted(e Event) {
	d.lifecycle("onSessionStarted", e)
}

func (d *Dispatcher) lifecycle(name string, e Event, fields ...zap.Field) {
	fields = append([]zap.Field{
		zap.String("requestId", e.RequestID),
		zap.String("sessionId", e.Session.ID),
	}, fields...)
	if !e.Timestamp.IsZero() {
		fields = append(fields, zap.Time("timestamp", e.Timestamp))
	}
	d.log.Info(name, fields...)
}
