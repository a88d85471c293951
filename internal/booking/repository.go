package booking

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrProviderNotFound    = errors.New("provider not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetProviderByID returns the user only when its provider flag is set.
	GetProviderByID(ctx context.Context, id int64) (*User, error)

	// For the availability fast path
	HourTaken(ctx context.Context, providerID int64, hourStart time.Time) (bool, error)

	// CreateAppointment inserts a new active appointment. It returns
	// ErrDateNotAvailable when the provider already has an active
	// appointment in the same hour.
	CreateAppointment(ctx context.Context, userID, providerID int64, date time.Time) (*Appointment, error)

	GetAppointmentDetail(ctx context.Context, id int64) (*AppointmentDetail, error)

	// CancelAppointment marks the appointment canceled at the given time.
	CancelAppointment(ctx context.Context, id int64, canceledAt time.Time) (*Appointment, error)

	// Listing
	ListActiveByUser(ctx context.Context, userID int64, limit, offset int) ([]ListedAppointment, error)
}
