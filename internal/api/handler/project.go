package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/cronhook/internal/api/request"
	"github.com/edvin/cronhook/internal/api/response"
	"github.com/edvin/cronhook/internal/core"
	"github.com/edvin/cronhook/internal/model"
	"github.com/edvin/cronhook/internal/platform"
)

type Project struct {
	svc *core.ProjectService
}

func NewProject(svc *core.ProjectService) *Project {
	return &Project{svc: svc}
}

// List godoc
//
//	@Summary	List projects
//	@Tags		Projects
//	@Param		limit query int false "Page size" default(50)
//	@Param		cursor query string false "Pagination cursor"
//	@Success	200 {object} response.PaginatedResponse{items=[]model.Project}
//	@Failure	500 {object} response.ErrorResponse
//	@Router		/projects [get]
func (h *Project) List(w http.ResponseWriter, r *http.Request) {
	pg := request.ParsePagination(r)

	projects, hasMore, err := h.svc.List(r.Context(), pg.Limit, pg.Cursor)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var nextCursor string
	if hasMore && len(projects) > 0 {
		nextCursor = projects[len(projects)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, projects, nextCursor, hasMore)
}

// Create godoc
//
//	@Summary	Create a project
//	@Tags		Projects
//	@Param		body body request.CreateProject true "Project details"
//	@Success	201 {object} model.Project
//	@Failure	400 {object} response.ErrorResponse
//	@Failure	500 {object} response.ErrorResponse
//	@Router		/projects [post]
func (h *Project) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateProject
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now()
	project := &model.Project{
		ID:         platform.NewID(),
		Title:      req.Title,
		Auth:       req.Auth.Model(),
		TemplateID: req.TemplateID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.svc.Create(r.Context(), project); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusCreated, project)
}

// Get godoc
//
//	@Summary	Get a project
//	@Tags		Projects
//	@Param		id path string true "Project ID"
//	@Success	200 {object} model.Project
//	@Failure	404 {object} response.ErrorResponse
//	@Router		/projects/{id} [get]
func (h *Project) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	project, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, project)
}

// Update godoc
//
//	@Summary	Update a project
//	@Tags		Projects
//	@Param		id path string true "Project ID"
//	@Param		body body request.UpdateProject true "Fields to update"
//	@Success	200 {object} model.Project
//	@Failure	400 {object} response.ErrorResponse
//	@Failure	404 {object} response.ErrorResponse
//	@Router		/projects/{id} [put]
func (h *Project) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateProject
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	project, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.Auth != nil {
		project.Auth = req.Auth.Model()
	}
	if req.TemplateID != nil {
		project.TemplateID = req.TemplateID
	}

	if err := h.svc.Update(r.Context(), project); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, project)
}

// Delete godoc
//
//	@Summary	Delete a project and all its cronjobs
//	@Tags		Projects
//	@Param		id path string true "Project ID"
//	@Success	204
//	@Failure	400 {object} response.ErrorResponse
//	@Failure	500 {object} response.ErrorResponse
//	@Router		/projects/{id} [delete]
func (h *Project) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
