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

type ConfigTemplate struct {
	svc *core.ConfigTemplateService
}

func NewConfigTemplate(svc *core.ConfigTemplateService) *ConfigTemplate {
	return &ConfigTemplate{svc: svc}
}

// List godoc
//
//	@Summary	List config templates
//	@Tags		Config Templates
//	@Param		limit query int false "Page size" default(50)
//	@Param		cursor query string false "Pagination cursor"
//	@Success	200 {object} response.PaginatedResponse{items=[]model.ConfigTemplate}
//	@Failure	500 {object} response.ErrorResponse
//	@Router		/config-templates [get]
func (h *ConfigTemplate) List(w http.ResponseWriter, r *http.Request) {
	pg := request.ParsePagination(r)

	templates, hasMore, err := h.svc.List(r.Context(), pg.Limit, pg.Cursor)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var nextCursor string
	if hasMore && len(templates) > 0 {
		nextCursor = templates[len(templates)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, templates, nextCursor, hasMore)
}

// Create godoc
//
//	@Summary	Create a config template
//	@Tags		Config Templates
//	@Param		body body request.CreateConfigTemplate true "Template details"
//	@Success	201 {object} model.ConfigTemplate
//	@Failure	400 {object} response.ErrorResponse
//	@Failure	500 {object} response.ErrorResponse
//	@Router		/config-templates [post]
func (h *ConfigTemplate) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateConfigTemplate
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now()
	tmpl := &model.ConfigTemplate{
		ID:        platform.NewID(),
		Key:       req.Key,
		Auth:      req.Auth.Model(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.svc.Create(r.Context(), tmpl); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusCreated, tmpl)
}

// Get godoc
//
//	@Summary	Get a config template
//	@Tags		Config Templates
//	@Param		id path string true "Template ID"
//	@Success	200 {object} model.ConfigTemplate
//	@Failure	404 {object} response.ErrorResponse
//	@Router		/config-templates/{id} [get]
func (h *ConfigTemplate) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tmpl, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, tmpl)
}

// Update godoc
//
//	@Summary	Update a config template
//	@Tags		Config Templates
//	@Param		id path string true "Template ID"
//	@Param		body body request.UpdateConfigTemplate true "Fields to update"
//	@Success	200 {object} model.ConfigTemplate
//	@Failure	400 {object} response.ErrorResponse
//	@Failure	404 {object} response.ErrorResponse
//	@Router		/config-templates/{id} [put]
func (h *ConfigTemplate) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateConfigTemplate
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tmpl, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	if req.Key != nil {
		tmpl.Key = *req.Key
	}
	if req.Auth != nil {
		tmpl.Auth = req.Auth.Model()
	}

	if err := h.svc.Update(r.Context(), tmpl); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, tmpl)
}

// Delete godoc
//
//	@Summary	Delete a config template
//	@Tags		Config Templates
//	@Param		id path string true "Template ID"
//	@Success	204
//	@Failure	400 {object} response.ErrorResponse
//	@Failure	500 {object} response.ErrorResponse
//	@Router		/config-templates/{id} [delete]
func (h *ConfigTemplate) Delete(w http.ResponseWriter, r *http.Request) {
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
