package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cosminvladulescu/bcon-site/database"
	"github.com/cosminvladulescu/bcon-site/models"
)

const (
	contactEntity = "contact message"
	notifyTimeout = 10 * time.Second
)

// contactNotifier is satisfied by services.Notifiers.
type contactNotifier interface {
	Notify(ctx context.Context, msg *models.ContactMessage) error
}

type contactHandler struct {
	responder          Responder
	logger             zerolog.Logger
	contactMessageRepo *database.ContactMessageRepo
	notifier           contactNotifier
}

func newContactHandler(contactMessageRepo *database.ContactMessageRepo, notifier contactNotifier) contactHandler {
	logger := log.With().Str("handlerName", "contactHandler").Logger()

	return contactHandler{
		responder:          NewResponder(logger),
		logger:             logger,
		contactMessageRepo: contactMessageRepo,
		notifier:           notifier,
	}
}

// submitContact stores a message from the public contact form and notifies the
// site owner. A failed notification is logged and does not fail the request.
// @Summary Submit contact form
// @Tags Contact
// @Accept json
// @Produce json
// @Success 201 {object} models.ContactMessage
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 429 {object} map[string]string "Too many requests"
// @Router /contact [post]
func (h contactHandler) submitContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contactRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		msg := req.toModel()
		if err := h.contactMessageRepo.Add(r.Context(), msg); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", contactEntity, err))
			return
		}
		h.logger.Info().Str("contactId", msg.ID.String()).Msg("Contact message received")

		if h.notifier != nil {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), notifyTimeout)
			if err := h.notifier.Notify(ctx, msg); err != nil {
				h.logger.Error().Err(err).Str("contactId", msg.ID.String()).Msg("Contact notification failed")
			}
			cancel()
		}

		h.responder.WriteCreated(w, msg)
	}
}

// @Summary List contact messages
// @Tags Admin
// @Security BearerAuth
// @Router /admin/contacts [get]
func (h contactHandler) getAllContacts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messages, err := h.contactMessageRepo.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", contactEntity, err))
			return
		}

		h.responder.WriteJSON(w, messages)
	}
}

// getUnreadCount feeds the inbox badge of the admin dashboard.
func (h contactHandler) getUnreadCount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		unread, err := h.contactMessageRepo.CountUnread(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("count", contactEntity, err))
			return
		}

		h.responder.WriteJSON(w, map[string]int64{"unread": unread})
	}
}

func (h contactHandler) getContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, contactEntity)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		msg, err := h.contactMessageRepo.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", contactEntity, err))
			return
		}

		h.responder.WriteJSON(w, msg)
	}
}

// markContactRead flags a message as read. Marking an already read message is a no-op.
// @Summary Mark contact message read
// @Tags Admin
// @Security BearerAuth
// @Router /admin/contacts/{id}/read [put]
func (h contactHandler) markContactRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, contactEntity)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		msg, err := h.contactMessageRepo.MarkRead(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("mark read", contactEntity, err))
			return
		}

		h.responder.WriteJSON(w, msg)
	}
}

func (h contactHandler) deleteContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, contactEntity)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.contactMessageRepo.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", contactEntity, err))
			return
		}

		h.responder.WriteDeleted(w, "contact message deleted successfully")
	}
}
