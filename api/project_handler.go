package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cosminvladulescu/bcon-site/database"
)

const projectEntity = "project"

type projectHandler struct {
	responder   Responder
	logger      zerolog.Logger
	projectRepo *database.ProjectRepo
}

func newProjectHandler(projectRepo *database.ProjectRepo) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		projectRepo: projectRepo,
	}
}

// getAllProjects lists every project, newest first. Public and admin share it.
// @Summary List projects
// @Tags Projects
// @Produce json
// @Success 200 {array} models.Project
// @Router /projects [get]
func (h projectHandler) getAllProjects() http.HandlerFunc {
	return h.list(database.ProjectFilter{})
}

// @Summary List featured projects
// @Tags Projects
// @Router /projects/featured [get]
func (h projectHandler) getFeaturedProjects() http.HandlerFunc {
	return h.list(database.ProjectFilter{FeaturedOnly: true})
}

func (h projectHandler) list(filter database.ProjectFilter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.projectRepo.FindAll(r.Context(), filter)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", projectEntity, err))
			return
		}

		h.responder.WriteJSON(w, projects)
	}
}

func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, projectEntity)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectRepo.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", projectEntity, err))
			return
		}

		h.responder.WriteJSON(w, project)
	}
}

// @Summary Create project
// @Tags Admin
// @Security BearerAuth
// @Success 201 {object} models.Project
// @Router /admin/projects [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req projectRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project := req.toModel()
		if err := h.projectRepo.Add(r.Context(), project); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", projectEntity, err))
			return
		}

		h.logger.Info().Str("projectId", project.ID.String()).Msg("Project created")
		h.responder.WriteCreated(w, project)
	}
}

func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, projectEntity)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req projectUpdate
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectRepo.Update(r.Context(), id, req.fields())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", projectEntity, err))
			return
		}

		h.responder.WriteJSON(w, project)
	}
}

func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, projectEntity)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.projectRepo.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", projectEntity, err))
			return
		}

		h.logger.Info().Str("projectId", id.String()).Msg("Project deleted")
		h.responder.WriteDeleted(w, "project deleted successfully")
	}
}
