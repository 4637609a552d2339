package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/cronhook/internal/api/request"
	"github.com/edvin/cronhook/internal/api/response"
	"github.com/edvin/cronhook/internal/core"
	"github.com/edvin/cronhook/internal/model"
)

type Execution struct {
	svc      *core.ExecutionService
	cronjobs *core.CronjobService
}

func NewExecution(services *core.Services) *Execution {
	return &Execution{svc: services.Execution, cronjobs: services.Cronjob}
}

// ListByCronjob godoc
//
//	@Summary	List executions of a cronjob
//	@Description	Returns executions newest first with their denormalized current state.
//	@Tags		Executions
//	@Param		cronjobID path string true "Cronjob ID"
//	@Param		limit query int false "Page size" default(50)
//	@Param		cursor query string false "Pagination cursor"
//	@Success	200 {object} response.PaginatedResponse{items=[]model.Execution}
//	@Failure	404 {object} response.ErrorResponse
//	@Router		/cronjobs/{cronjobID}/executions [get]
func (h *Execution) ListByCronjob(w http.ResponseWriter, r *http.Request) {
	cronjobID, err := request.RequireID(chi.URLParam(r, "cronjobID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.cronjobs.GetByID(r.Context(), cronjobID); err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	pg := request.ParsePagination(r)

	executions, hasMore, err := h.svc.ListByCronjob(r.Context(), cronjobID, pg.Limit, pg.Cursor)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var nextCursor string
	if hasMore && len(executions) > 0 {
		nextCursor = executions[len(executions)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, executions, nextCursor, hasMore)
}

// Get godoc
//
//	@Summary	Get an execution with its full status history
//	@Tags		Executions
//	@Param		id path string true "Execution ID"
//	@Success	200 {object} model.Execution
//	@Failure	404 {object} response.ErrorResponse
//	@Router		/executions/{id} [get]
func (h *Execution) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	execution, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, execution)
}

// AppendStatus godoc
//
//	@Summary	Report an execution status
//	@Description	Status callback for triggered targets. Appends started/finished/failed entries to the execution history; reports may arrive out of order.
//	@Tags		Executions
//	@Param		id path string true "Execution ID"
//	@Param		body body request.AppendExecutionStatus true "Status report"
//	@Success	201 {object} model.ExecutionStatus
//	@Failure	400 {object} response.ErrorResponse
//	@Failure	404 {object} response.ErrorResponse
//	@Router		/executions/{id}/statuses [post]
func (h *Execution) AppendStatus(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.AppendExecutionStatus
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.svc.GetByID(r.Context(), id); err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	status, err := h.svc.AppendStatus(r.Context(), id, model.ExecutionState(req.State), req.Details)
	if err != nil {
		if !model.ValidExecutionState(model.ExecutionState(req.State)) {
			response.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusCreated, status)
}
