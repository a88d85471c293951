package booking

import "time"

type File struct {
	ID        int64
	Path      string
	URL       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type User struct {
	ID        int64
	Name      string
	Email     string
	Provider  bool
	Avatar    *File
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Appointment struct {
	ID         int64
	Date       time.Time
	UserID     int64
	ProviderID int64
	CanceledAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ListedAppointment is the listing projection: the appointment id and date
// plus the provider it was booked with, avatar included.
type ListedAppointment struct {
	ID       int64
	Date     time.Time
	Provider User
}

// AppointmentDetail carries the appointment together with the provider and
// requester rows the cancellation path needs for its email.
type AppointmentDetail struct {
	Appointment
	Provider User
	User     User
}
