package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cosminvladulescu/bcon-site/database"
)

const testimonialEntity = "testimonial"

type testimonialHandler struct {
	responder       Responder
	logger          zerolog.Logger
	testimonialRepo *database.TestimonialRepo
}

func newTestimonialHandler(testimonialRepo *database.TestimonialRepo) testimonialHandler {
	logger := log.With().Str("handlerName", "testimonialHandler").Logger()

	return testimonialHandler{
		responder:       NewResponder(logger),
		logger:          logger,
		testimonialRepo: testimonialRepo,
	}
}

// @Summary List active testimonials
// @Tags Testimonials
// @Router /testimonials [get]
func (h testimonialHandler) getActiveTestimonials() http.HandlerFunc {
	return h.list(database.TestimonialFilter{ActiveOnly: true})
}

// @Summary List all testimonials
// @Tags Admin
// @Security BearerAuth
// @Router /admin/testimonials [get]
func (h testimonialHandler) getAllTestimonials() http.HandlerFunc {
	return h.list(database.TestimonialFilter{})
}

func (h testimonialHandler) list(filter database.TestimonialFilter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		testimonials, err := h.testimonialRepo.FindAll(r.Context(), filter)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", testimonialEntity, err))
			return
		}

		h.responder.WriteJSON(w, testimonials)
	}
}

func (h testimonialHandler) getTestimonial() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, testimonialEntity)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		testimonial, err := h.testimonialRepo.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", testimonialEntity, err))
			return
		}

		h.responder.WriteJSON(w, testimonial)
	}
}

func (h testimonialHandler) createTestimonial() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req testimonialRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		testimonial := req.toModel()
		if err := h.testimonialRepo.Add(r.Context(), testimonial); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", testimonialEntity, err))
			return
		}

		h.logger.Info().Str("testimonialId", testimonial.ID.String()).Msg("Testimonial created")
		h.responder.WriteCreated(w, testimonial)
	}
}

func (h testimonialHandler) updateTestimonial() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, testimonialEntity)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req testimonialUpdate
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		testimonial, err := h.testimonialRepo.Update(r.Context(), id, req.fields())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", testimonialEntity, err))
			return
		}

		h.responder.WriteJSON(w, testimonial)
	}
}

func (h testimonialHandler) deleteTestimonial() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, testimonialEntity)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.testimonialRepo.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", testimonialEntity, err))
			return
		}

		h.logger.Info().Str("testimonialId", id.String()).Msg("Testimonial deleted")
		h.responder.WriteDeleted(w, "testimonial deleted successfully")
	}
}
