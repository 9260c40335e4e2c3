package booking

import "context"

// SearchParams filters appointment listings. Empty fields match everything;
// Name matches as a case-insensitive substring.
type SearchParams struct {
	Doctor string
	Date   string
	Status Status
	Mobile string
	Name   string
}

// AppointmentRepository is the storage contract for the appointment book.
// Implementations exist for Postgres and for the flat spreadsheet file.
type AppointmentRepository interface {
	Insert(ctx context.Context, rec *AppointmentRecord) error
	Update(ctx context.Context, rec *AppointmentRecord) error
	// Delete removes the row for good, bypassing the status lifecycle.
	Delete(ctx context.Context, id int) error
	GetByID(ctx context.Context, id int) (*AppointmentRecord, error)
	// ListAll returns the whole table. Rule checks and id assignment scan
	// every row, which is fine at clinic scale.
	ListAll(ctx context.Context) ([]*AppointmentRecord, error)
	Search(ctx context.Context, params SearchParams, limit, offset int) ([]*AppointmentRecord, int, error)
}

// BookLocker is implemented by backends that can hold an exclusive lock on
// the whole book for the rest of the current transaction. It keeps two
// servers on the same database from handing out the same appointment id.
type BookLocker interface {
	LockBook(ctx context.Context) error
}
