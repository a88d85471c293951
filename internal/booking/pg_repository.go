package booking

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanUser(row pgx.Row, notFound error) (*User, error) {
	var u User

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Provider,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}
		return nil, err
	}

	return &u, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var canceledAt *time.Time

	err := row.Scan(
		&a.ID,
		&a.Date,
		&a.UserID,
		&a.ProviderID,
		&canceledAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.CanceledAt = canceledAt
	return &a, nil
}

// Interface methods

func (r *PgRepository) GetUserByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, provider, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row, ErrUserNotFound)
}

func (r *PgRepository) GetProviderByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, provider, created_at, updated_at
		FROM users
		WHERE id = $1 AND provider = true
	`, id)
	return scanUser(row, ErrProviderNotFound)
}

func (r *PgRepository) HourTaken(ctx context.Context, providerID int64, hourStart time.Time) (bool, error) {
	// Range form of the hour bucket, so the predicate agrees with the
	// partial unique index no matter what the session timezone is.
	var taken bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM appointments
			WHERE provider_id = $1
			  AND canceled_at IS NULL
			  AND data >= $2
			  AND data < $2 + interval '1 hour'
		)
	`, providerID, hourStart).Scan(&taken)
	return taken, err
}

func (r *PgRepository) CreateAppointment(ctx context.Context, userID, providerID int64, date time.Time) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (data, user_id, provider_id, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		RETURNING id, data, user_id, provider_id, canceled_at, created_at, updated_at
	`, date, userID, providerID)

	appt, err := scanAppointment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDateNotAvailable
		}
		return nil, err
	}

	return appt, nil
}

func (r *PgRepository) GetAppointmentDetail(ctx context.Context, id int64) (*AppointmentDetail, error) {
	var d AppointmentDetail
	var canceledAt *time.Time

	err := r.pool.QueryRow(ctx, `
		SELECT a.id, a.data, a.user_id, a.provider_id, a.canceled_at, a.created_at, a.updated_at,
		       p.id, p.name, p.email,
		       u.id, u.name, u.email
		FROM appointments a
		JOIN users p ON p.id = a.provider_id
		JOIN users u ON u.id = a.user_id
		WHERE a.id = $1
	`, id).Scan(
		&d.ID, &d.Date, &d.UserID, &d.ProviderID, &canceledAt, &d.CreatedAt, &d.UpdatedAt,
		&d.Provider.ID, &d.Provider.Name, &d.Provider.Email,
		&d.User.ID, &d.User.Name, &d.User.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	d.CanceledAt = canceledAt
	d.Provider.Provider = true
	return &d, nil
}

func (r *PgRepository) CancelAppointment(ctx context.Context, id int64, canceledAt time.Time) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET canceled_at = $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, data, user_id, provider_id, canceled_at, created_at, updated_at
	`, id, canceledAt)

	return scanAppointment(row)
}

func (r *PgRepository) ListActiveByUser(ctx context.Context, userID int64, limit, offset int) ([]ListedAppointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.data,
		       p.id, p.name,
		       f.id, f.path, f.url
		FROM appointments a
		JOIN users p ON p.id = a.provider_id
		LEFT JOIN files f ON f.id = p.avatar_id
		WHERE a.user_id = $1
		  AND a.canceled_at IS NULL
		ORDER BY a.data
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ListedAppointment
	for rows.Next() {
		var item ListedAppointment
		var avatarID *int64
		var avatarPath, avatarURL *string

		err := rows.Scan(
			&item.ID,
			&item.Date,
			&item.Provider.ID,
			&item.Provider.Name,
			&avatarID,
			&avatarPath,
			&avatarURL,
		)
		if err != nil {
			return nil, err
		}

		item.Provider.Provider = true
		if avatarID != nil {
			item.Provider.Avatar = &File{
				ID:   *avatarID,
				Path: *avatarPath,
				URL:  *avatarURL,
			}
		}

		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
