package notifier

import (
	"bitbucket.org/sotavant/caster-skill/internal/logger"
	"context"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	DefaultBaseURL = "http://maker.ifttt.com"
	DefaultEvent   = "caster"
	DefaultTimeout = 5 * time.Second

	triggerPath = "/trigger/{event}/with/key/{key}"
	redactedKey = "REDACTED"
)

// TriggerConfig points the notifier at a webhook trigger endpoint.
type TriggerConfig struct {
	BaseURL string        `yaml:"url"`
	Event   string        `yaml:"event"`
	Key     string        `yaml:"key"`
	Timeout time.Duration `yaml:"timeout"`
}

type payload struct {
	Value1 string `json:"value1"`
	Value2 string `json:"value2"`
}

// Trigger posts notifications to a trigger service in the background.
type Trigger struct {
	cfg     TriggerConfig
	client  *resty.Client
	log     *zap.Logger
	onDone  func(Outcome)
	running sync.WaitGroup
}

type TriggerOption func(*Trigger)

func WithLogger(l *zap.Logger) TriggerOption {
	return func(t *Trigger) {
		if l != nil {
			t.log = l
		}
	}
}

// WithOutcomeHook registers f to be called once per finished delivery.
func WithOutcomeHook(f func(Outcome)) TriggerOption {
	return func(t *Trigger) { t.onDone = f }
}

func NewTrigger(cfg TriggerConfig, opts ...TriggerOption) *Trigger {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Event == "" {
		cfg.Event = DefaultEvent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	t := &Trigger{
		cfg:    cfg,
		log:    logger.Log,
		onDone: func(Outcome) {},
	}
	for _, opt := range opts {
		opt(t)
	}

	t.client = resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return t
}

// Notify starts the delivery and returns immediately. The delivery is not
// bound to ctx cancellation: it keeps running after the invocation that
// issued it has returned.
func (t *Trigger) Notify(ctx context.Context, value1, value2 string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.cfg.Timeout)
	id := uuid.NewString()

	t.running.Add(1)
	go func() {
		defer t.running.Done()
		defer cancel()

		t.onDone(t.send(ctx, id, payload{Value1: value1, Value2: value2}))
	}()
}

// Wait blocks until every delivery started so far has finished.
func (t *Trigger) Wait() {
	t.running.Wait()
}

func (t *Trigger) send(ctx context.Context, id string, body payload) Outcome {
	log := t.log.With(zap.String("notification", id), zap.String("event", t.cfg.Event))

	resp, err := t.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"event": t.cfg.Event,
			"key":   t.cfg.Key,
		}).
		SetBody(body).
		Post(triggerPath)
	if err != nil {
		log.Warn("problem with trigger request", zap.String("error", t.redact(err.Error())))
		return OutcomeFailed
	}

	log = log.With(
		zap.Int("status", resp.StatusCode()),
		zap.String("body", resp.String()),
	)
	if !resp.IsSuccess() {
		log.Warn("trigger service rejected notification")
		return OutcomeRejected
	}

	log.Info("trigger notification sent")
	return OutcomeSent
}

// redact hides the key, which is part of the request URL quoted in
// transport errors.
func (t *Trigger) redact(msg string) string {
	if t.cfg.Key == "" {
		return msg
	}
	msg = strings.ReplaceAll(msg, url.PathEscape(t.cfg.Key), redactedKey)
	return strings.ReplaceAll(msg, t.cfg.Key, redactedKey)
}
