package adaptor

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/dto/request"
	"seat-reservation/internal/dto/response"
	"seat-reservation/internal/usecase"
	"seat-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

type ReservationHandler struct {
	reservations  usecase.ReservationService
	notifications usecase.NotificationService
	log           *zap.Logger
}

func NewReservationHandler(reservations usecase.ReservationService, notifications usecase.NotificationService, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{
		reservations:  reservations,
		notifications: notifications,
		log:           log.With(zap.String("handler", "reservation")),
	}
}

// CreateReservation handles POST /api/reservations (protected)
func (h *ReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateReservationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	guests := make([]entity.Guest, len(req.Guests))
	for i, g := range req.Guests {
		guests[i] = entity.Guest{SeatID: g.Seat, Name: g.Name}
	}

	order, err := h.reservations.Reserve(r.Context(), usecase.ReserveInput{
		Identity:       identity,
		ContactEmail:   req.Email,
		SeatIDs:        req.SeatIDs,
		Guests:         guests,
		AffiliationTag: req.Affiliation,
	})
	if err != nil {
		h.handleServiceError(w, err, "create reservation")
		return
	}

	emailSent := h.notifications.Send(r.Context(), order)

	utils.ResponseCreated(w, "Seats reserved", response.ReservationResponse{
		OrderID:   order.OrderID,
		Seats:     order.Seats,
		EmailSent: emailSent,
	})
}

// GetOrder handles GET /api/orders/{order_id} (public, rate limited)
func (h *ReservationHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")

	order, err := h.reservations.Lookup(r.Context(), orderID)
	if err != nil {
		h.handleServiceError(w, err, "get order")
		return
	}

	utils.ResponseSuccess(w, "success", response.OrderToResponse(order))
}

// ResendReceipt handles POST /api/orders/{order_id}/resend (protected)
func (h *ReservationHandler) ResendReceipt(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")

	sent, err := h.notifications.Resend(r.Context(), orderID)
	if err != nil {
		h.handleServiceError(w, err, "resend receipt")
		return
	}

	utils.ResponseSuccess(w, "success", response.ResendResponse{OrderID: orderID, EmailSent: sent})
}

// handleServiceError maps the domain error taxonomy onto HTTP responses
func (h *ReservationHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	var (
		validationErr  *usecase.ValidationError
		quotaErr       *usecase.QuotaExceededError
		unavailableErr *usecase.SeatsUnavailableError
	)

	switch {
	case errors.As(err, &validationErr):
		h.log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, "Validation failed", validationErr.Fields)

	case errors.As(err, &quotaErr):
		h.log.Warn(operation+" failed - quota exceeded", zap.Error(err))
		utils.ResponseConflict(w, quotaMessage(quotaErr), response.QuotaExceededDetail{
			Already: quotaErr.Already,
			Max:     quotaErr.Max,
		})

	case errors.As(err, &unavailableErr):
		h.log.Warn(operation+" failed - seats unavailable", zap.Error(err))
		utils.ResponseConflict(w, "Seats unavailable", response.SeatsUnavailableDetail{SeatIDs: unavailableErr.SeatIDs})

	case errors.Is(err, usecase.ErrOrderNotFound):
		utils.ResponseNotFound(w, "Order not found")

	case errors.Is(err, usecase.ErrInvalidRequest):
		utils.ResponseBadRequest(w, err.Error(), nil)

	default:
		h.log.Error(operation+" failed", zap.Error(err))
		utils.ResponseInternalError(w, "Something went wrong, please try again")
	}
}

func quotaMessage(err *usecase.QuotaExceededError) string {
	return fmt.Sprintf("Seat limit exceeded. You already reserved %d seat(s). Max total is %d.", err.Already, err.Max)
}
