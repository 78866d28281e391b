package main

import (
	"bitbucket.org/sotavant/caster-skill/internal/logger"
	"bitbucket.org/sotavant/caster-skill/internal/models"
	"bitbucket.org/sotavant/caster-skill/internal/skill"
	"context"
	"encoding/json"
	"errors"
	"go.uber.org/zap"
	"net/http"
)

type dispatcher interface {
	Dispatch(ctx context.Context, e skill.Event) (skill.Response, error)
}

type app struct {
	skill dispatcher
}

func newApp(d dispatcher) *app {
	return &app{skill: d}
}

func (a *app) webhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		logger.Log.Debug("got request with bad method", zap.String("method", r.Method))

		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	logger.Log.Debug("decoding request")
	var req models.Request
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		logger.Log.Debug("cannot decode request JSON body", zap.Error(err))

		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if !supportedType(req.Request.Type) {
		logger.Log.Debug("unsupported request type", zap.String("type", req.Request.Type))
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}

	event, err := toEvent(req)
	if err != nil {
		logger.Log.Debug("cannot convert request", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// навык всегда возвращает ровно один ответ или ошибку
	res, err := a.skill.Dispatch(ctx, event)
	switch {
	case errors.Is(err, skill.ErrInvalidApplication):
		logger.Log.Warn("request for another application", zap.Error(err))
		w.WriteHeader(http.StatusForbidden)
		return
	case errors.Is(err, skill.ErrMalformedEvent):
		logger.Log.Debug("malformed event", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	case err != nil:
		logger.Log.Error("cannot dispatch event", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	// SSML должен уйти как есть, без экранирования угловых скобок
	enc.SetEscapeHTML(false)
	if err := enc.Encode(toResponse(res)); err != nil {
		logger.Log.Debug("error encoding response", zap.Error(err))
		return
	}
	logger.Log.Debug("sending HTTP 200 response")
}
