package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tur-booking/internal/booking"
	"tur-booking/internal/logger"
	"tur-booking/internal/models"
	"tur-booking/internal/utils"
)

type Handler struct {
	BookingService *booking.BookingService
	Logger         *logger.Logger
}

// CreateBooking handles POST /bookings. Capacity rejections come back as
// 400 with the remaining seat count in the message.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	created, err := h.BookingService.CreateBooking(r.Context(), req)
	if err != nil {
		h.writeError(w, err, "Could not create booking")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Booking created successfully", created))
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookingId")

	b, err := h.BookingService.GetBooking(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "Could not retrieve booking")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Booking retrieved successfully", b))
}

func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	tourID := r.URL.Query().Get("tur_id")

	bookings, err := h.BookingService.ListBookings(r.Context(), tourID)
	if err != nil {
		h.writeError(w, err, "Could not retrieve bookings")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Bookings retrieved successfully", bookings))
}

// DeleteBooking handles DELETE /bookings/{id}: the booking is archived to
// the history ledger, not merely removed.
func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookingId")

	record, err := h.BookingService.ArchiveBooking(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "Could not delete booking")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Booking deleted successfully", record))
}

func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	tourID := r.URL.Query().Get("tur_id")

	records, err := h.BookingService.ListHistory(r.Context(), tourID)
	if err != nil {
		h.writeError(w, err, "Could not retrieve booking history")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Booking history retrieved successfully", records))
}

func (h *Handler) GetHistoryRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "historyId")

	record, err := h.BookingService.GetHistoryRecord(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "Could not retrieve history record")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("History record retrieved successfully", record))
}

// writeError maps the booking error taxonomy onto HTTP status codes:
// client-caused failures are 4xx, storage failures 500.
func (h *Handler) writeError(w http.ResponseWriter, err error, message string) {
	switch {
	case booking.IsCapacityExceeded(err) != nil:
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse(message, err.Error()))
	case errors.Is(err, booking.ErrInvalidRequest):
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse(message, err.Error()))
	case errors.Is(err, booking.ErrTourNotFound),
		errors.Is(err, booking.ErrBookingNotFound),
		errors.Is(err, booking.ErrHistoryNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse(message, err.Error()))
	default:
		if h.Logger != nil {
			h.Logger.Error("API", err.Error())
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse(message, booking.ErrStorage.Error()))
	}
}
