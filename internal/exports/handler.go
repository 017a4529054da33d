package exports

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/geepos/geepos/internal/platform/httpx"
	"github.com/geepos/geepos/internal/shared"
)

// Handler exposes export endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers export routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Post("/{id}/approve", h.approve)
	r.Post("/{id}/cancel", h.cancel)
	r.Delete("/{id}", h.remove)
}

type createRequest struct {
	ExportDate string      `json:"export_date"`
	Items      []LineInput `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "items with product, quantity, zone and reason are required")
		return
	}
	user := shared.UserFromContext(r.Context())
	if user == nil {
		httpx.Fail(w, http.StatusUnauthorized, "login required")
		return
	}
	input := CreateInput{EmpID: user.EmpID, Lines: req.Items}
	if req.ExportDate != "" {
		date, err := time.Parse("2006-01-02", req.ExportDate)
		if err != nil {
			httpx.Fail(w, http.StatusBadRequest, "export_date must be YYYY-MM-DD")
			return
		}
		input.ExportDate = date
	}

	result, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if result.Queued {
		// The request is parked, not stored; 202 tells the client it will
		// appear once the reconciler replays it.
		httpx.OKStatus(w, http.StatusAccepted, "exports", result)
		return
	}
	httpx.OK(w, "exports", result)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list exports", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to load exports")
		return
	}
	httpx.OK(w, "exports", items)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.exportID(w, r)
	if !ok {
		return
	}
	exp, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, "exports", exp)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	id, ok := h.exportID(w, r)
	if !ok {
		return
	}
	user := shared.UserFromContext(r.Context())
	if user == nil {
		httpx.Fail(w, http.StatusUnauthorized, "login required")
		return
	}
	exp, err := h.service.Approve(r.Context(), id, user.EmpID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, "exports", exp)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.exportID(w, r)
	if !ok {
		return
	}
	user := shared.UserFromContext(r.Context())
	if user == nil {
		httpx.Fail(w, http.StatusUnauthorized, "login required")
		return
	}
	exp, err := h.service.Cancel(r.Context(), id, user.EmpID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, "exports", exp)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.exportID(w, r)
	if !ok {
		return
	}
	user := shared.UserFromContext(r.Context())
	if user == nil {
		httpx.Fail(w, http.StatusUnauthorized, "login required")
		return
	}
	if err := h.service.Delete(r.Context(), id, user.EmpID); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OKFields(w, httpx.Envelope{"message": "export deleted"})
}

func (h *Handler) exportID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid export id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Fail(w, http.StatusNotFound, "not found")
	case errors.Is(err, ErrValidation):
		httpx.Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidState):
		httpx.Fail(w, http.StatusConflict, "export is not pending approval")
	case errors.Is(err, ErrInsufficientStock):
		httpx.Fail(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("exports handler", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "internal error")
	}
}
