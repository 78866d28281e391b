package skill

import (
	"errors"
	"fmt"
	"time"
)

type RequestType string

const (
	LaunchRequest       RequestType = "LaunchRequest"
	IntentRequest       RequestType = "IntentRequest"
	SessionEndedRequest RequestType = "SessionEndedRequest"

	// SessionStartedRequest is never sent by the platform as a request type,
	// it is signalled through Session.New. It can still be dispatched directly.
	SessionStartedRequest RequestType = "SessionStartedRequest"
)

var (
	ErrMalformedEvent     = errors.New("malformed event")
	ErrInvalidApplication = errors.New("invalid application id")
	ErrNoHandler          = errors.New("no matching handler")
)

// Event is a single platform invocation.
type Event struct {
	Type      RequestType
	RequestID string
	Timestamp time.Time
	Session   *Session
	Intent    *Intent
	// Reason is only set on SessionEndedRequest.
	Reason string
}

func (e Event) validate() error {
	if e.Session == nil {
		return fmt.Errorf("%w: request %q has no session", ErrMalformedEvent, e.RequestID)
	}

	switch e.Type {
	case LaunchRequest, SessionEndedRequest, SessionStartedRequest:
		return nil
	case IntentRequest:
		if e.Intent == nil || e.Intent.Name == "" {
			return fmt.Errorf("%w: intent request %q without intent", ErrMalformedEvent, e.RequestID)
		}
		return nil
	default:
		return fmt.Errorf("%w: unsupported request type %q", ErrMalformedEvent, e.Type)
	}
}

// Session is the platform-owned conversation context. The dispatcher only
// reads and writes the attributes it was handed.
type Session struct {
	ID            string
	ApplicationID string
	UserID        string
	New           bool
	Attributes    map[string]any
}

// Intent is a classified user request together with its slots.
type Intent struct {
	Name  string
	Slots map[string]Slot
}

// Slot is a named parameter captured from speech. A slot may be present with
// an empty Value when recognition was ambiguous.
type Slot struct {
	Name  string
	Value string
}

// Slot reports whether the slot was sent at all, regardless of its value.
func (i *Intent) Slot(name string) (Slot, bool) {
	if i == nil {
		return Slot{}, false
	}
	s, ok := i.Slots[name]
	return s, ok
}

// SlotValue returns the slot value if the slot is present and non-empty.
func (i *Intent) SlotValue(name string) (string, bool) {
	s, ok := i.Slot(name)
	if !ok || s.Value == "" {
		return "", false
	}
	return s.Value, true
}
