package skill

import (
	"context"
	"fmt"
	"go.uber.org/zap"
)

const (
	IntentOneShot = "OneShot"
	IntentHelp    = "AMAZON.HelpIntent"
	IntentStop    = "AMAZON.StopIntent"
	IntentCancel  = "AMAZON.CancelIntent"

	SlotService = "Service"
	SlotQuery   = "Query"

	cardTitle  = "Caster"
	welcomeCue = `<audio src="soundbank://soundlibrary/ui/gameshow/amzn_ui_sfx_gameshow_intro_01"/>`

	whatToWatch   = "What would you like to watch?"
	helpText      = "I am currently equipped to stream shows and movies from Netflix, Hulu, and HBO Go. Or you can say exit. " + whatToWatch
	goodbyeText   = "Goodbye"
	fallbackText  = "Sorry, Caster can't help with that. Goodbye"
	whichService  = "Which service would you like to search? You can say Netflix, Hulu, or HBO Go."
	whichShowOn   = "What would you like to watch on %s?"
	nameAShowOn   = "Which show or movie should I find on %s?"
)

// AttrDialogState is the session attribute holding the conversation state.
const AttrDialogState = "dialogState"

// StateAwaitingSlots means the skill has asked for something to watch and
// expects a OneShot turn.
const StateAwaitingSlots = "awaitingSlots"

func welcome(s *Session) Response {
	r := AskSSML("<speak>Welcome to Caster. "+welcomeCue+" "+whatToWatch+"</speak>", whatToWatch)
	r.Attributes = withState(s, StateAwaitingSlots)
	return r
}

func help(_ context.Context, _ *Intent, s *Session) Response {
	r := Ask(helpText, whatToWatch)
	r.Attributes = withState(s, StateAwaitingSlots)
	return r
}

func goodbye(_ context.Context, _ *Intent, s *Session) Response {
	r := Tell(goodbyeText)
	r.Attributes = withState(s, "")
	return r
}

func fallback() Response {
	return Tell(fallbackText)
}

// oneShot searches a service for a show. Both slots must carry a value,
// otherwise nothing is sent and the user is asked for what is missing.
func (d *Dispatcher) oneShot(ctx context.Context, intent *Intent, s *Session) Response {
	service, okService := intent.SlotValue(SlotService)
	query, okQuery := intent.SlotValue(SlotQuery)
	if !okService || !okQuery {
		return clarify(intent, s)
	}

	d.notifier.Notify(ctx, service, query)
	d.log.Debug("one-shot search requested",
		zap.String("service", service),
		zap.String("query", query),
		zap.String("sessionId", s.ID),
	)

	speech := fmt.Sprintf("Searching %s for %s.", service, query)
	r := TellWithCard(speech, cardTitle, speech)
	r.Attributes = withState(s, "")
	return r
}

// clarify asks again for an incomplete OneShot and keeps the session open.
func clarify(intent *Intent, s *Session) Response {
	var speech string

	service, okService := intent.SlotValue(SlotService)
	_, hasQuery := intent.Slot(SlotQuery)
	switch {
	case !okService:
		speech = whichService
	case hasQuery:
		speech = fmt.Sprintf(whichShowOn, service)
	default:
		speech = fmt.Sprintf(nameAShowOn, service)
	}

	r := Ask(speech, speech)
	r.Attributes = withState(s, StateAwaitingSlots)
	return r
}

// withState copies the session attributes and sets the dialog state on the
// copy. An empty state removes it.
func withState(s *Session, state string) map[string]any {
	attrs := make(map[string]any, len(s.Attributes)+1)
	for k, v := range s.Attributes {
		attrs[k] = v
	}

	if state == "" {
		delete(attrs, AttrDialogState)
	} else {
		attrs[AttrDialogState] = state
	}

	return attrs
}
