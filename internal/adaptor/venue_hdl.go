package adaptor

import (
	"net/http"

	"seat-reservation/internal/dto/response"
	"seat-reservation/internal/usecase"
	"seat-reservation/pkg/utils"

	"go.uber.org/zap"
)

type VenueHandler struct {
	service usecase.VenueService
	log     *zap.Logger
}

func NewVenueHandler(service usecase.VenueService, log *zap.Logger) *VenueHandler {
	return &VenueHandler{
		service: service,
		log:     log.With(zap.String("handler", "venue")),
	}
}

// ListSeats handles GET /api/seats (public)
func (h *VenueHandler) ListSeats(w http.ResponseWriter, r *http.Request) {
	seats, err := h.service.ListSeats(r.Context())
	if err != nil {
		h.log.Error("list seats failed", zap.Error(err))
		utils.ResponseInternalError(w, "Something went wrong, please try again")
		return
	}

	utils.ResponseSuccess(w, "success", response.SeatsToResponse(seats))
}
