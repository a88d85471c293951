package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobarber/booking-api/internal/api"
	"github.com/gobarber/booking-api/internal/auth"
	"github.com/gobarber/booking-api/internal/booking"
	"github.com/gobarber/booking-api/internal/config"
)

const testSecret = "test-secret"

// ----- test doubles -----

type fakeRepo struct {
	users        map[int64]*booking.User
	appointments map[int64]*booking.Appointment
	nextID       int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:        make(map[int64]*booking.User),
		appointments: make(map[int64]*booking.Appointment),
		nextID:       1,
	}
}

func (r *fakeRepo) addUser(id int64, name, email string, provider bool) {
	r.users[id] = &booking.User{ID: id, Name: name, Email: email, Provider: provider}
}

func (r *fakeRepo) addAppointment(userID, providerID int64, date time.Time) *booking.Appointment {
	a := &booking.Appointment{
		ID:         r.nextID,
		Date:       date,
		UserID:     userID,
		ProviderID: providerID,
	}
	r.nextID++
	r.appointments[a.ID] = a
	return a
}

func (r *fakeRepo) GetUserByID(_ context.Context, id int64) (*booking.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, booking.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeRepo) GetProviderByID(_ context.Context, id int64) (*booking.User, error) {
	u, ok := r.users[id]
	if !ok || !u.Provider {
		return nil, booking.ErrProviderNotFound
	}
	return u, nil
}

func (r *fakeRepo) HourTaken(_ context.Context, providerID int64, hourStart time.Time) (bool, error) {
	for _, a := range r.appointments {
		if a.ProviderID == providerID && a.CanceledAt == nil && booking.StartOfHour(a.Date).Equal(hourStart) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) CreateAppointment(_ context.Context, userID, providerID int64, date time.Time) (*booking.Appointment, error) {
	return r.addAppointment(userID, providerID, date), nil
}

func (r *fakeRepo) GetAppointmentDetail(_ context.Context, id int64) (*booking.AppointmentDetail, error) {
	a, ok := r.appointments[id]
	if !ok {
		return nil, booking.ErrAppointmentNotFound
	}
	d := &booking.AppointmentDetail{Appointment: *a}
	if p, ok := r.users[a.ProviderID]; ok {
		d.Provider = *p
	}
	if u, ok := r.users[a.UserID]; ok {
		d.User = *u
	}
	return d, nil
}

func (r *fakeRepo) CancelAppointment(_ context.Context, id int64, canceledAt time.Time) (*booking.Appointment, error) {
	a, ok := r.appointments[id]
	if !ok {
		return nil, booking.ErrAppointmentNotFound
	}
	a.CanceledAt = &canceledAt
	return a, nil
}

func (r *fakeRepo) ListActiveByUser(_ context.Context, userID int64, limit, offset int) ([]booking.ListedAppointment, error) {
	var active []*booking.Appointment
	for _, a := range r.appointments {
		if a.UserID == userID && a.CanceledAt == nil {
			active = append(active, a)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Date.Before(active[j].Date) })

	var out []booking.ListedAppointment
	for i := offset; i < len(active) && len(out) < limit; i++ {
		a := active[i]
		item := booking.ListedAppointment{ID: a.ID, Date: a.Date}
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
	count int
}

func (n *recordingNotifier) Notify(context.Context, int64, string) error {
	n.count++
	return nil
}

type recordingMailer struct {
	sent []booking.Mail
}

func (m *recordingMailer) Send(_ context.Context, mail booking.Mail) error {
	m.sent = append(m.sent, mail)
	return nil
}

// ----- harness -----

type harness struct {
	repo     *fakeRepo
	notifier *recordingNotifier
	mailer   *recordingMailer
	router   http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	repo := newFakeRepo()
	repo.addUser(7, "Cecilia Barber", "cecilia@gobarber.com.br", true)
	repo.addUser(42, "Jo Customer", "jo@example.com", false)
	repo.addUser(43, "Sam Customer", "sam@example.com", false)

	notifier := &recordingNotifier{}
	mailer := &recordingMailer{}

	cfg := config.Config{
		PageSize:     20,
		CancelWindow: 2 * time.Hour,
	}

	svc := booking.NewService(repo, passthroughLocker{}, notifier, mailer, cfg)

	router := api.NewRouter(api.RouterConfig{
		Service:   svc,
		JWTSecret: testSecret,
		Env:       "test",
		Version:   "test",
	})

	return &harness{repo: repo, notifier: notifier, mailer: mailer, router: router}
}

func (h *harness) do(t *testing.T, method, target string, body any, userID int64) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	if userID != 0 {
		token, err := auth.MakeToken(userID, testSecret, time.Minute)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

// ----- auth -----

func TestAuthRequired(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		method string
		target string
	}{
		{"GET", "/appointments"},
		{"POST", "/appointments"},
		{"DELETE", "/appointments/1"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := h.do(t, tt.method, tt.target, nil, 0)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthRejectsBadToken(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest("GET", "/appointments", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ----- create -----

func TestCreateAppointmentHandler(t *testing.T) {
	future := time.Date(2030, time.January, 1, 10, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		h := newHarness(t)

		rec := h.do(t, "POST", "/appointments", map[string]any{
			"provider_id": 7,
			"data":        future.Format(time.RFC3339),
		}, 42)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			ID         int64      `json:"id"`
			Data       time.Time  `json:"data"`
			UserID     int64      `json:"user_id"`
			ProviderID int64      `json:"provider_id"`
			CanceledAt *time.Time `json:"canceled_at"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(42), resp.UserID)
		assert.Equal(t, int64(7), resp.ProviderID)
		assert.True(t, resp.Data.Equal(future))
		assert.Nil(t, resp.CanceledAt)

		assert.Equal(t, 1, h.notifier.count)
	})

	t.Run("missing fields", func(t *testing.T) {
		h := newHarness(t)

		for _, body := range []map[string]any{
			{},
			{"provider_id": 7},
			{"data": future.Format(time.RFC3339)},
		} {
			rec := h.do(t, "POST", "/appointments", body, 42)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Validation fails", errorMessage(t, rec))
		}
		assert.Empty(t, h.repo.appointments)
	})

	t.Run("mistyped date", func(t *testing.T) {
		h := newHarness(t)

		rec := h.do(t, "POST", "/appointments", map[string]any{
			"provider_id": 7,
			"data":        "tomorrow at noon",
		}, 42)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Validation fails", errorMessage(t, rec))
	})

	t.Run("not a provider", func(t *testing.T) {
		h := newHarness(t)

		rec := h.do(t, "POST", "/appointments", map[string]any{
			"provider_id": 43,
			"data":        future.Format(time.RFC3339),
		}, 42)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "You can only create appointments with providers", errorMessage(t, rec))
		assert.Equal(t, 0, h.notifier.count)
	})

	t.Run("past date", func(t *testing.T) {
		h := newHarness(t)

		rec := h.do(t, "POST", "/appointments", map[string]any{
			"provider_id": 7,
			"data":        "2020-01-01T10:00:00Z",
		}, 42)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Past dates are not permitted", errorMessage(t, rec))
	})

	t.Run("hour taken", func(t *testing.T) {
		h := newHarness(t)
		h.repo.addAppointment(43, 7, future)

		rec := h.do(t, "POST", "/appointments", map[string]any{
			"provider_id": 7,
			"data":        future.Add(30 * time.Minute).Format(time.RFC3339),
		}, 42)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "Appointment date is not available", errorMessage(t, rec))
	})
}

// ----- cancel -----

func TestCancelAppointmentHandler(t *testing.T) {
	farOut := time.Now().Add(72 * time.Hour)

	t.Run("success", func(t *testing.T) {
		h := newHarness(t)
		appt := h.repo.addAppointment(42, 7, farOut)

		rec := h.do(t, "DELETE", fmt.Sprintf("/appointments/%d", appt.ID), nil, 42)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			CanceledAt *time.Time `json:"canceled_at"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotNil(t, resp.CanceledAt)

		require.Len(t, h.mailer.sent, 1)
		assert.Equal(t, "Cecilia Barber <cecilia@gobarber.com.br>", h.mailer.sent[0].To)
	})

	t.Run("not the owner", func(t *testing.T) {
		h := newHarness(t)
		appt := h.repo.addAppointment(42, 7, farOut)

		rec := h.do(t, "DELETE", fmt.Sprintf("/appointments/%d", appt.ID), nil, 43)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, h.repo.appointments[appt.ID].CanceledAt)
		assert.Empty(t, h.mailer.sent)
	})

	t.Run("inside the window", func(t *testing.T) {
		h := newHarness(t)
		appt := h.repo.addAppointment(42, 7, time.Now().Add(time.Hour))

		rec := h.do(t, "DELETE", fmt.Sprintf("/appointments/%d", appt.ID), nil, 42)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "You can only cancel appointments 2 hours in advance", errorMessage(t, rec))
		assert.Empty(t, h.mailer.sent)
	})

	t.Run("unknown id", func(t *testing.T) {
		h := newHarness(t)

		rec := h.do(t, "DELETE", "/appointments/999", nil, 42)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Appointment not found", errorMessage(t, rec))
	})

	t.Run("non numeric id", func(t *testing.T) {
		h := newHarness(t)

		rec := h.do(t, "DELETE", "/appointments/abc", nil, 42)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

// ----- list -----

func TestListAppointmentsHandler(t *testing.T) {
	base := time.Date(2030, time.April, 1, 9, 0, 0, 0, time.UTC)

	t.Run("returns the caller's active appointments ascending", func(t *testing.T) {
		h := newHarness(t)
		h.repo.addAppointment(42, 7, base.Add(2*time.Hour))
		h.repo.addAppointment(42, 7, base)
		canceled := h.repo.addAppointment(42, 7, base.Add(time.Hour))
		now := time.Now()
		canceled.CanceledAt = &now
		h.repo.addAppointment(43, 7, base) // someone else's

		rec := h.do(t, "GET", "/appointments", nil, 42)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp []struct {
			ID       int64     `json:"id"`
			Data     time.Time `json:"data"`
			Provider struct {
				ID     int64  `json:"id"`
				Name   string `json:"name"`
				Avatar *struct {
					ID   int64  `json:"id"`
					Path string `json:"path"`
					URL  string `json:"url"`
				} `json:"avatar"`
			} `json:"provider"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 2)
		assert.True(t, resp[0].Data.Before(resp[1].Data))
		assert.Equal(t, "Cecilia Barber", resp[0].Provider.Name)
	})

	t.Run("empty page is an empty array", func(t *testing.T) {
		h := newHarness(t)

		rec := h.do(t, "GET", "/appointments?page=4", nil, 42)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("bad page value", func(t *testing.T) {
		h := newHarness(t)

		rec := h.do(t, "GET", "/appointments?page=zero", nil, 42)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
