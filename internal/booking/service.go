package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gobarber/booking-api/internal/config"
	redisclient "github.com/gobarber/booking-api/internal/redis"
)

var (
	ErrOnlyProviders    = errors.New("you can only create appointments with providers")
	ErrPastDate         = errors.New("past dates are not permitted")
	ErrDateNotAvailable = errors.New("appointment date is not available")
	ErrSlotBeingBooked  = errors.New("slot is currently being booked, please retry")
	ErrNotOwner         = errors.New("you don't have permission to cancel this appointment")
	ErrCancelTooLate    = errors.New("appointments can only be canceled 2 hours in advance")
)

// Notifier appends a notification document addressed to a user.
type Notifier interface {
	Notify(ctx context.Context, userID int64, content string) error
}

// Mail is a templated message for a Mailer to deliver.
type Mail struct {
	To       string
	Subject  string
	Template string
	Context  map[string]string
}

type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

type Service struct {
	repo     Repository
	locker   redisclient.Locker
	notifier Notifier
	mailer   Mailer
	cfg      config.Config
	now      func() time.Time
}

func NewService(repo Repository, locker redisclient.Locker, notifier Notifier, mailer Mailer, cfg config.Config) *Service {
	return &Service{
		repo:     repo,
		locker:   locker,
		notifier: notifier,
		mailer:   mailer,
		cfg:      cfg,
		now:      time.Now,
	}
}

// ListAppointments returns one page of the user's active appointments,
// ordered by date ascending. Pages are 1-indexed; a page past the end is an
// empty result, not an error.
func (s *Service) ListAppointments(ctx context.Context, userID int64, page int) ([]ListedAppointment, error) {
	if page < 1 {
		page = 1
	}

	limit := s.cfg.PageSize
	offset := (page - 1) * limit

	appointments, err := s.repo.ListActiveByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appointments, nil
}

// CreateAppointment books an hour with a provider for the requesting user.
// The provider/hour lock keeps concurrent requests from racing the
// availability check; the partial unique index on active appointments is the
// hard guarantee either way, so CreateAppointment can still return
// ErrDateNotAvailable from the insert itself.
func (s *Service) CreateAppointment(ctx context.Context, userID, providerID int64, date time.Time) (*Appointment, error) {
	if _, err := s.repo.GetProviderByID(ctx, providerID); err != nil {
		if errors.Is(err, ErrProviderNotFound) {
			return nil, ErrOnlyProviders
		}
		return nil, fmt.Errorf("load provider: %w", err)
	}

	hourStart := StartOfHour(date)

	if hourStart.Before(s.now()) {
		return nil, ErrPastDate
	}

	var created *Appointment

	err := s.locker.WithBookingLock(ctx, providerID, hourStart, func(lockCtx context.Context) error {
		taken, err := s.repo.HourTaken(lockCtx, providerID, hourStart)
		if err != nil {
			return fmt.Errorf("check availability: %w", err)
		}
		if taken {
			return ErrDateNotAvailable
		}

		// The stored date keeps the requested instant, not the hour bucket.
		appt, err := s.repo.CreateAppointment(lockCtx, userID, providerID, date)
		if err != nil {
			return err
		}

		created = appt
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		if errors.Is(err, ErrDateNotAvailable) {
			return nil, ErrDateNotAvailable
		}
		return nil, err
	}

	s.notifyProvider(ctx, created, hourStart)

	return created, nil
}

// notifyProvider tells the provider about a new booking. Best effort: the
// appointment is already persisted, so a notification failure is logged
// rather than turned into a request error.
func (s *Service) notifyProvider(ctx context.Context, appt *Appointment, hourStart time.Time) {
	user, err := s.repo.GetUserByID(ctx, appt.UserID)
	if err != nil {
		log.Printf("load user %d for notification: %v", appt.UserID, err)
		return
	}

	content := fmt.Sprintf("Novo Agendamento de %s para o %s", user.Name, FormatPtBR(hourStart))

	if err := s.notifier.Notify(ctx, appt.ProviderID, content); err != nil {
		log.Printf("notify provider %d for appointment %d: %v", appt.ProviderID, appt.ID, err)
	}
}

// CancelAppointment marks the appointment canceled and mails the provider.
// Only the original requester may cancel, and only while more than the
// configured window remains before the scheduled time.
func (s *Service) CancelAppointment(ctx context.Context, userID, appointmentID int64) (*Appointment, error) {
	detail, err := s.repo.GetAppointmentDetail(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if detail.UserID != userID {
		return nil, ErrNotOwner
	}

	// More than CancelWindow must remain before the scheduled time.
	if !detail.Date.Add(-s.cfg.CancelWindow).After(s.now()) {
		return nil, ErrCancelTooLate
	}

	updated, err := s.repo.CancelAppointment(ctx, appointmentID, s.now())
	if err != nil {
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}

	m := Mail{
		To:       fmt.Sprintf("%s <%s>", detail.Provider.Name, detail.Provider.Email),
		Subject:  "Agendamento cancelado",
		Template: "cancellation",
		Context: map[string]string{
			"provider": detail.Provider.Name,
			"user":     detail.User.Name,
			"date":     FormatPtBR(detail.Date),
		},
	}
	if err := s.mailer.Send(ctx, m); err != nil {
		log.Printf("send cancellation mail for appointment %d: %v", updated.ID, err)
	}

	return updated, nil
}
