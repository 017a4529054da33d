package imports

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/geepos/geepos/internal/orders"
	"github.com/geepos/geepos/internal/platform/httpx"
	"github.com/geepos/geepos/internal/shared"
)

// Handler exposes import endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers import routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.importOrder)
	r.Get("/{id}", h.show)
}

type importRequest struct {
	OrderID int64 `json:"order_id"`
	Items   []struct {
		ProID     int64   `json:"proid"`
		CostPrice float64 `json:"cost_price"`
	} `json:"items"`
}

func (h *Handler) importOrder(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user := shared.UserFromContext(r.Context())
	if user == nil {
		httpx.Fail(w, http.StatusUnauthorized, "login required")
		return
	}
	input := ImportInput{OrderID: req.OrderID, EmpID: user.EmpID, CostPrices: map[int64]float64{}}
	for _, item := range req.Items {
		input.CostPrices[item.ProID] = item.CostPrice
	}

	result, err := h.service.ImportOrder(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, "imports", result)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list imports", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to load imports")
		return
	}
	httpx.OK(w, "imports", items)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid import id")
		return
	}
	imp, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, "imports", imp)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, orders.ErrNotFound):
		httpx.Fail(w, http.StatusNotFound, "not found")
	case errors.Is(err, ErrValidation):
		httpx.Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrOrderImported):
		httpx.Fail(w, http.StatusConflict, "order has already been imported")
	case errors.Is(err, ErrNoLines):
		httpx.Fail(w, http.StatusBadRequest, "order has no lines to import")
	default:
		h.logger.Error("imports handler", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "internal error")
	}
}
