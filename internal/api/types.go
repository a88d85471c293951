package api

import (
	"time"

	"github.com/gobarber/booking-api/internal/booking"
)

type CreateAppointmentRequest struct {
	ProviderID *int64     `json:"provider_id"`
	Data       *time.Time `json:"data"`
}

type AppointmentResponse struct {
	ID         int64      `json:"id"`
	Data       time.Time  `json:"data"`
	UserID     int64      `json:"user_id"`
	ProviderID int64      `json:"provider_id"`
	CanceledAt *time.Time `json:"canceled_at"`
}

type AvatarResponse struct {
	ID   int64  `json:"id"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

type ProviderResponse struct {
	ID     int64           `json:"id"`
	Name   string          `json:"name"`
	Avatar *AvatarResponse `json:"avatar"`
}

type ListedAppointmentResponse struct {
	ID       int64            `json:"id"`
	Data     time.Time        `json:"data"`
	Provider ProviderResponse `json:"provider"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func toAppointmentResponse(a *booking.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:         a.ID,
		Data:       a.Date,
		UserID:     a.UserID,
		ProviderID: a.ProviderID,
		CanceledAt: a.CanceledAt,
	}
}

func toListedResponse(items []booking.ListedAppointment) []ListedAppointmentResponse {
	out := make([]ListedAppointmentResponse, 0, len(items))
	for _, item := range items {
		entry := ListedAppointmentResponse{
			ID:   item.ID,
			Data: item.Date,
			Provider: ProviderResponse{
				ID:   item.Provider.ID,
				Name: item.Provider.Name,
			},
		}
		if item.Provider.Avatar != nil {
			entry.Provider.Avatar = &AvatarResponse{
				ID:   item.Provider.Avatar.ID,
				Path: item.Provider.Avatar.Path,
				URL:  item.Provider.Avatar.URL,
			}
		}
		out = append(out, entry)
	}
	return out
}
