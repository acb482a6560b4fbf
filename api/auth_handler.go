package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cosminvladulescu/bcon-site/auth"
	"github.com/cosminvladulescu/bcon-site/database"
	"github.com/cosminvladulescu/bcon-site/errs"
	"github.com/cosminvladulescu/bcon-site/models"
)

type authHandler struct {
	responder         Responder
	logger            zerolog.Logger
	adminUserRepo     *database.AdminUserRepo
	tokens            *auth.TokenManager
	allowRegistration bool
}

func newAuthHandler(adminUserRepo *database.AdminUserRepo, tokens *auth.TokenManager, allowRegistration bool) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder:         NewResponder(logger),
		logger:            logger,
		adminUserRepo:     adminUserRepo,
		tokens:            tokens,
		allowRegistration: allowRegistration,
	}
}

// login exchanges admin credentials for an access token
// @Summary Admin login
// @Accept json
// @Produce json
// @Success 200 {object} tokenResponse
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /admin/login [post]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		admin, err := h.adminUserRepo.FindByEmail(r.Context(), req.Email)
		if err != nil {
			if errs.IsNotFound(err) {
				h.logger.Warn().Str("email", req.Email).Msg("Login for unknown admin")
				h.responder.WriteError(w, errs.NewInvalidCredentialsError())
				return
			}
			h.responder.WriteError(w, wrapDatabaseError("find", "admin", err))
			return
		}

		if !auth.CheckPassword(admin.PasswordHash, req.Password) {
			h.logger.Warn().Str("adminId", admin.ID.String()).Msg("Login with wrong password")
			h.responder.WriteError(w, errs.NewInvalidCredentialsError())
			return
		}

		h.writeToken(w, admin, http.StatusOK)
	}
}

// register creates an admin account. It is open while no admin exists, and
// afterwards only when registration is explicitly allowed.
// @Summary Admin registration
// @Accept json
// @Produce json
// @Success 201 {object} tokenResponse
// @Failure 403 {object} map[string]string "Registration closed"
// @Failure 409 {object} map[string]string "Email already registered"
// @Router /admin/register [post]
func (h authHandler) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		// checked again by AddFirst; this only skips hashing for a closed registration
		if !h.allowRegistration {
			count, err := h.adminUserRepo.Count(r.Context())
			if err != nil {
				h.responder.WriteError(w, wrapDatabaseError("count", "admin", err))
				return
			}
			if count > 0 {
				h.responder.WriteError(w, errs.NewRegistrationClosedError())
				return
			}
		}

		if _, err := h.adminUserRepo.FindByEmail(r.Context(), req.Email); err == nil {
			h.responder.WriteError(w, errs.NewFieldConflict("admin", "email"))
			return
		} else if !errs.IsNotFound(err) {
			h.responder.WriteError(w, wrapDatabaseError("find", "admin", err))
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("hash password", err))
			return
		}

		admin := &models.AdminUser{
			Email:        req.Email,
			PasswordHash: hash,
			Name:         req.Name,
		}
		add := h.adminUserRepo.Add
		if !h.allowRegistration {
			add = h.adminUserRepo.AddFirst
		}
		if err := add(r.Context(), admin); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "admin", err))
			return
		}

		h.logger.Info().Str("adminId", admin.ID.String()).Msg("Admin registered")
		h.writeToken(w, admin, http.StatusCreated)
	}
}

// me returns the profile of the authenticated admin
// @Summary Current admin
// @Security BearerAuth
// @Router /admin/me [get]
func (h authHandler) me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admin, ok := AdminFromContext(r.Context())
		if !ok {
			h.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}

		h.responder.WriteJSON(w, profileResponse{
			ID:    admin.ID.String(),
			Email: admin.Email,
			Name:  admin.Name,
		})
	}
}

func (h authHandler) writeToken(w http.ResponseWriter, admin *models.AdminUser, status int) {
	token, expiresAt, err := h.tokens.Issue(admin)
	if err != nil {
		h.responder.WriteError(w, errs.NewInternalErrorWithCause("issue token", err))
		return
	}

	h.responder.writeJSON(w, status, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt.Unix(),
	})
}
