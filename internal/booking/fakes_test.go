package booking

import (
	"context"
	"sort"
	"time"
)

// In-memory test doubles for the repository, locker, notifier and mailer.

type fakeRepo struct {
	users        map[int64]*User
	appointments map[int64]*Appointment
	nextID       int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:        make(map[int64]*User),
		appointments: make(map[int64]*Appointment),
		nextID:       1,
	}
}

func (r *fakeRepo) addUser(id int64, name, email string, provider bool) {
	r.users[id] = &User{ID: id, Name: name, Email: email, Provider: provider}
}

func (r *fakeRepo) GetUserByID(_ context.Context, id int64) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (r *fakeRepo) GetProviderByID(_ context.Context, id int64) (*User, error) {
	u, ok := r.users[id]
	if !ok || !u.Provider {
		return nil, ErrProviderNotFound
	}
	return u, nil
}

func (r *fakeRepo) HourTaken(_ context.Context, providerID int64, hourStart time.Time) (bool, error) {
	for _, a := range r.appointments {
		if a.ProviderID == providerID && a.CanceledAt == nil && StartOfHour(a.Date).Equal(hourStart) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) CreateAppointment(ctx context.Context, userID, providerID int64, date time.Time) (*Appointment, error) {
	// Same constraint the partial unique index enforces.
	taken, _ := r.HourTaken(ctx, providerID, StartOfHour(date))
	if taken {
		return nil, ErrDateNotAvailable
	}

	a := &Appointment{
		ID:         r.nextID,
		Date:       date,
		UserID:     userID,
		ProviderID: providerID,
	}
	r.nextID++
	r.appointments[a.ID] = a
	return a, nil
}

func (r *fakeRepo) GetAppointmentDetail(_ context.Context, id int64) (*AppointmentDetail, error) {
	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}

	d := &AppointmentDetail{Appointment: *a}
	if p, ok := r.users[a.ProviderID]; ok {
		d.Provider = *p
	}
	if u, ok := r.users[a.UserID]; ok {
		d.User = *u
	}
	return d, nil
}

func (r *fakeRepo) CancelAppointment(_ context.Context, id int64, canceledAt time.Time) (*Appointment, error) {
	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	a.CanceledAt = &canceledAt
	return a, nil
}

func (r *fakeRepo) ListActiveByUser(_ context.Context, userID int64, limit, offset int) ([]ListedAppointment, error) {
	var active []*Appointment
	for _, a := range r.appointments {
		if a.UserID == userID && a.CanceledAt == nil {
			active = append(active, a)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Date.Before(active[j].Date) })

	var out []ListedAppointment
	for i := offset; i < len(active) && len(out) < limit; i++ {
		a := active[i]
		item := ListedAppointment{ID: a.ID, Date: a.Date}
		if p, ok := r.users[a.ProviderID]; ok {
			item.Provider = *p
		}
		out = append(out, item)
	}
	return out, nil
}

type passthroughLocker struct{}

func (passthroughLocker) WithBookingLock(ctx context.Context, _ int64, _ time.Time, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingNotifier struct {
	notifications []struct {
		UserID  int64
		Content string
	}
	err error
}

func (n *recordingNotifier) Notify(_ context.Context, userID int64, content string) error {
	if n.err != nil {
		return n.err
	}
	n.notifications = append(n.notifications, struct {
		UserID  int64
		Content string
	}{userID, content})
	return nil
}

type recordingMailer struct {
	sent []Mail
}

func (m *recordingMailer) Send(_ context.Context, mail Mail) error {
	m.sent = append(m.sent, mail)
	return nil
}
