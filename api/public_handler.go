package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cosminvladulescu/bcon-site/errs"
)

const (
	serviceName    = "B-CON Consulting API"
	serviceVersion = "1.0.0"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type publicHandler struct {
	responder Responder
	logger    zerolog.Logger
	db        pinger
}

func newPublicHandler(db pinger) publicHandler {
	logger := log.With().Str("handlerName", "publicHandler").Logger()

	return publicHandler{
		responder: NewResponder(logger),
		logger:    logger,
		db:        db,
	}
}

// @Summary Service banner
// @Router / [get]
func (h publicHandler) root() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, map[string]string{
			"message": serviceName,
			"version": serviceVersion,
		})
	}
}

// health reports whether the database answers within two seconds.
// @Summary Health check
// @Router /health [get]
func (h publicHandler) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.Ping(ctx); err != nil {
			h.logger.Error().Err(err).Msg("Database ping failed")
			h.responder.WriteError(w, errs.NewDatabaseUnavailableError(err))
			return
		}

		h.responder.WriteJSON(w, map[string]string{"status": "healthy"})
	}
}
