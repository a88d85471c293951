package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gobarber/booking-api/internal/booking"
)

func listAppointmentsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		page := 1
		if raw := r.URL.Query().Get("page"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "page must be a positive number")
				return
			}
			page = n
		}

		items, err := svc.ListAppointments(r.Context(), userID, page)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		writeJSON(w, http.StatusOK, toListedResponse(items))
	}
}

func createAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Validation fails")
			return
		}
		if req.ProviderID == nil || req.Data == nil {
			writeError(w, http.StatusBadRequest, "Validation fails")
			return
		}

		appt, err := svc.CreateAppointment(r.Context(), userID, *req.ProviderID, *req.Data)
		if err != nil {
			handleCreateError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func cancelAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "id must be a number")
			return
		}

		appt, err := svc.CancelAppointment(r.Context(), userID, id)
		if err != nil {
			handleCancelError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func handleCreateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrOnlyProviders):
		writeError(w, http.StatusUnauthorized, "You can only create appointments with providers")
	case errors.Is(err, booking.ErrPastDate):
		writeError(w, http.StatusBadRequest, "Past dates are not permitted")
	case errors.Is(err, booking.ErrDateNotAvailable):
		writeError(w, http.StatusConflict, "Appointment date is not available")
	case errors.Is(err, booking.ErrSlotBeingBooked):
		writeError(w, http.StatusConflict, "This date is being booked, please retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func handleCancelError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "Appointment not found")
	case errors.Is(err, booking.ErrNotOwner):
		writeError(w, http.StatusUnauthorized, "You don't have permission to cancel this appointment")
	case errors.Is(err, booking.ErrCancelTooLate):
		writeError(w, http.StatusUnauthorized, "You can only cancel appointments 2 hours in advance")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
