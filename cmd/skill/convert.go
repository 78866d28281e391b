package main

import (
	"bitbucket.org/sotavant/caster-skill/internal/models"
	"bitbucket.org/sotavant/caster-skill/internal/skill"
	"fmt"
	"time"
)

func supportedType(t string) bool {
	switch t {
	case models.TypeLaunchRequest, models.TypeIntentRequest, models.TypeSessionEndedRequest:
		return true
	}
	return false
}

// toEvent переводит запрос платформы в событие навыка.
func toEvent(req models.Request) (skill.Event, error) {
	e := skill.Event{
		Type:      skill.RequestType(req.Request.Type),
		RequestID: req.Request.RequestID,
		Reason:    req.Request.Reason,
	}

	if req.Request.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, req.Request.Timestamp)
		if err != nil {
			return e, fmt.Errorf("%w: timestamp: %v", skill.ErrMalformedEvent, err)
		}
		e.Timestamp = ts
	}

	if req.Session != nil {
		e.Session = &skill.Session{
			ID:            req.Session.SessionID,
			ApplicationID: req.Session.Application.ApplicationID,
			UserID:        req.Session.User.UserID,
			New:           req.Session.New,
			Attributes:    req.Session.Attributes,
		}
	}

	if in := req.Request.Intent; in != nil {
		e.Intent = &skill.Intent{
			Name:  in.Name,
			Slots: make(map[string]skill.Slot, len(in.Slots)),
		}
		for name, slot := range in.Slots {
			e.Intent.Slots[name] = skill.Slot{Name: slot.Name, Value: slot.Value}
		}
	}

	return e, nil
}

func outputSpeech(speechType skill.SpeechType, speech string) models.OutputSpeech {
	if speechType == skill.SSML {
		return models.OutputSpeech{Type: models.SpeechSSML, SSML: speech}
	}
	return models.OutputSpeech{Type: models.SpeechPlainText, Text: speech}
}

func toResponse(r skill.Response) models.Response {
	resp := models.Response{
		Version:           models.Version,
		SessionAttributes: r.Attributes,
		Response: models.ResponsePayload{
			ShouldEndSession: r.ShouldEndSession,
		},
	}

	if r.Speech != "" {
		speech := outputSpeech(r.SpeechType, r.Speech)
		resp.Response.OutputSpeech = &speech
	}

	if r.Reprompt != "" {
		resp.Response.Reprompt = &models.Reprompt{
			OutputSpeech: outputSpeech(skill.PlainText, r.Reprompt),
		}
	}

	if r.Card != nil {
		resp.Response.Card = &models.Card{
			Type:    models.CardSimple,
			Title:   r.Card.Title,
			Content: r.Card.Content,
		}
	}

	return resp
}
