package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tur-booking/internal/logger"
	"tur-booking/internal/models"
	"tur-booking/internal/tour"
	"tur-booking/internal/utils"
)

type Handler struct {
	TourService *tour.TourService
	Logger      *logger.Logger
}

func (h *Handler) ListTours(w http.ResponseWriter, r *http.Request) {
	tours, err := h.TourService.ListTours(r.Context())
	if err != nil {
		h.writeError(w, err, "Could not retrieve tours")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Tours retrieved successfully", tours))
}

func (h *Handler) GetTour(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tourId")

	t, err := h.TourService.GetTour(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "Could not retrieve tour")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Tour retrieved successfully", t))
}

func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tourId")

	availability, err := h.TourService.GetAvailability(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "Could not compute availability")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Availability computed successfully", availability))
}

func (h *Handler) CreateTour(w http.ResponseWriter, r *http.Request) {
	var req models.TourRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	created, err := h.TourService.CreateTour(r.Context(), req)
	if err != nil {
		h.writeError(w, err, "Could not create tour")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Tour created successfully", created))
}

func (h *Handler) UpdateTour(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tourId")

	var req models.TourRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	updated, err := h.TourService.UpdateTour(r.Context(), id, req)
	if err != nil {
		h.writeError(w, err, "Could not update tour")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Tour updated successfully", updated))
}

func (h *Handler) DeleteTour(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tourId")

	if err := h.TourService.DeleteTour(r.Context(), id); err != nil {
		h.writeError(w, err, "Could not delete tour")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Tour deleted successfully", nil))
}

func (h *Handler) writeError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, tour.ErrInvalidTour):
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse(message, err.Error()))
	case errors.Is(err, tour.ErrNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse(message, err.Error()))
	default:
		if h.Logger != nil {
			h.Logger.Error("API", err.Error())
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse(message, "internal server error"))
	}
}
