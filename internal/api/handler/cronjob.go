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

type Cronjob struct {
	svc      *core.CronjobService
	projects *core.ProjectService
}

func NewCronjob(services *core.Services) *Cronjob {
	return &Cronjob{svc: services.Cronjob, projects: services.Project}
}

// ListByProject godoc
//
//	@Summary	List cronjobs for a project
//	@Tags		Cronjobs
//	@Param		projectID path string true "Project ID"
//	@Param		limit query int false "Page size" default(50)
//	@Param		cursor query string false "Pagination cursor"
//	@Success	200 {object} response.PaginatedResponse{items=[]model.Cronjob}
//	@Failure	404 {object} response.ErrorResponse
//	@Router		/projects/{projectID}/cronjobs [get]
func (h *Cronjob) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := request.RequireID(chi.URLParam(r, "projectID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.projects.GetByID(r.Context(), projectID); err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	pg := request.ParsePagination(r)

	cronjobs, hasMore, err := h.svc.ListByProject(r.Context(), projectID, pg.Limit, pg.Cursor)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var nextCursor string
	if hasMore && len(cronjobs) > 0 {
		nextCursor = cronjobs[len(cronjobs)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, cronjobs, nextCursor, hasMore)
}

// Create godoc
//
//	@Summary	Create a cronjob
//	@Description	Creates a cronjob in a project. Enabled cronjobs are registered with the scheduler immediately.
//	@Tags		Cronjobs
//	@Param		projectID path string true "Project ID"
//	@Param		body body request.CreateCronjob true "Cronjob details"
//	@Success	201 {object} model.Cronjob
//	@Failure	400 {object} response.ErrorResponse
//	@Failure	404 {object} response.ErrorResponse
//	@Router		/projects/{projectID}/cronjobs [post]
func (h *Cronjob) Create(w http.ResponseWriter, r *http.Request) {
	projectID, err := request.RequireID(chi.URLParam(r, "projectID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.CreateCronjob
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.projects.GetByID(r.Context(), projectID); err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	now := time.Now()
	cronjob := &model.Cronjob{
		ID:         platform.NewID(),
		ProjectID:  projectID,
		Title:      req.Title,
		Schedule:   model.CronExpression(req.Schedule),
		URL:        req.URL,
		Method:     method,
		Enabled:    enabled,
		Auth:       req.Auth.Model(),
		TemplateID: req.TemplateID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.svc.Create(r.Context(), cronjob); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusCreated, cronjob)
}

// Get godoc
//
//	@Summary	Get a cronjob
//	@Tags		Cronjobs
//	@Param		id path string true "Cronjob ID"
//	@Success	200 {object} model.Cronjob
//	@Failure	404 {object} response.ErrorResponse
//	@Router		/cronjobs/{id} [get]
func (h *Cronjob) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	cronjob, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, cronjob)
}

// Update godoc
//
//	@Summary	Update a cronjob
//	@Description	Updates cronjob fields. Schedule changes replace the scheduler registration; flipping enabled adds or removes it.
//	@Tags		Cronjobs
//	@Param		id path string true "Cronjob ID"
//	@Param		body body request.UpdateCronjob true "Fields to update"
//	@Success	200 {object} model.Cronjob
//	@Failure	400 {object} response.ErrorResponse
//	@Failure	404 {object} response.ErrorResponse
//	@Router		/cronjobs/{id} [put]
func (h *Cronjob) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateCronjob
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	cronjob, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	if req.Title != nil {
		cronjob.Title = *req.Title
	}
	if req.Schedule != nil {
		cronjob.Schedule = model.CronExpression(*req.Schedule)
	}
	if req.URL != nil {
		cronjob.URL = *req.URL
	}
	if req.Method != nil {
		cronjob.Method = *req.Method
	}
	if req.Enabled != nil {
		cronjob.Enabled = *req.Enabled
	}
	if req.Auth != nil {
		cronjob.Auth = req.Auth.Model()
	}
	if req.TemplateID != nil {
		cronjob.TemplateID = req.TemplateID
	}

	if err := h.svc.Update(r.Context(), cronjob); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, cronjob)
}

// Delete godoc
//
//	@Summary	Delete a cronjob and its execution history
//	@Tags		Cronjobs
//	@Param		id path string true "Cronjob ID"
//	@Success	204
//	@Failure	400 {object} response.ErrorResponse
//	@Failure	500 {object} response.ErrorResponse
//	@Router		/cronjobs/{id} [delete]
func (h *Cronjob) Delete(w http.ResponseWriter, r *http.Request) {
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

// Enable godoc
//
//	@Summary	Enable a cronjob
//	@Tags		Cronjobs
//	@Param		id path string true "Cronjob ID"
//	@Success	200 {object} model.Cronjob
//	@Failure	404 {object} response.ErrorResponse
//	@Router		/cronjobs/{id}/enable [post]
func (h *Cronjob) Enable(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, true)
}

// Disable godoc
//
//	@Summary	Disable a cronjob
//	@Description	Removes the scheduler registration. The cronjob and its history stay; manual triggers still work.
//	@Tags		Cronjobs
//	@Param		id path string true "Cronjob ID"
//	@Success	200 {object} model.Cronjob
//	@Failure	404 {object} response.ErrorResponse
//	@Router		/cronjobs/{id}/disable [post]
func (h *Cronjob) Disable(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, false)
}

func (h *Cronjob) setEnabled(w http.ResponseWriter, r *http.Request, enabled bool) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.svc.GetByID(r.Context(), id); err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	cronjob, err := h.svc.SetEnabled(r.Context(), id, enabled)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, cronjob)
}

// Trigger godoc
//
//	@Summary	Trigger a cronjob now
//	@Description	Fires the cronjob once, outside its schedule. Returns the execution ID immediately; the trigger runs asynchronously.
//	@Tags		Cronjobs
//	@Param		id path string true "Cronjob ID"
//	@Success	202 {object} handler.TriggerResponse
//	@Failure	404 {object} response.ErrorResponse
//	@Router		/cronjobs/{id}/trigger [post]
func (h *Cronjob) Trigger(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.svc.GetByID(r.Context(), id); err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	executionID, err := h.svc.Trigger(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusAccepted, TriggerResponse{ExecutionID: executionID})
}

// TriggerResponse is returned by a manual trigger.
type TriggerResponse struct {
	ExecutionID string `json:"execution_id"`
}
