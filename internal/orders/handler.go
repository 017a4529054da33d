package orders

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

// Handler exposes purchase-order endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Delete("/{id}", h.remove)
}

type createRequest struct {
	SupID     int64  `json:"sup_id" validate:"required,gt=0"`
	OrderDate string `json:"order_date"`
	Note      string `json:"note"`
	Items     []struct {
		ProID int64 `json:"proid" validate:"required,gt=0"`
		Qty   int64 `json:"qty" validate:"required,gt=0"`
	} `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "supplier and items with product and quantity are required")
		return
	}
	user := shared.UserFromContext(r.Context())
	if user == nil {
		httpx.Fail(w, http.StatusUnauthorized, "login required")
		return
	}
	input := CreateInput{SupID: req.SupID, EmpID: user.EmpID, Note: req.Note}
	if req.OrderDate != "" {
		date, err := time.Parse("2006-01-02", req.OrderDate)
		if err != nil {
			httpx.Fail(w, http.StatusBadRequest, "invalid order_date, expected YYYY-MM-DD")
			return
		}
		input.OrderDate = date
	}
	for _, item := range req.Items {
		input.Lines = append(input.Lines, LineInput{ProID: item.ProID, Qty: item.Qty})
	}

	order, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, "orders", order)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	pendingOnly := r.URL.Query().Get("pending") == "true"
	items, err := h.service.List(r.Context(), pendingOnly)
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to load orders")
		return
	}
	httpx.OK(w, "orders", items)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid order id")
		return
	}
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, "orders", order)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid order id")
		return
	}
	user := shared.UserFromContext(r.Context())
	var actorID int64
	if user != nil {
		actorID = user.EmpID
	}
	if err := h.service.Delete(r.Context(), id, actorID); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OKFields(w, httpx.Envelope{})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Fail(w, http.StatusNotFound, "order not found")
	case errors.Is(err, ErrValidation):
		httpx.Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrAlreadyImported):
		httpx.Fail(w, http.StatusConflict, "order has already been imported")
	default:
		h.logger.Error("orders handler", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "internal error")
	}
}
