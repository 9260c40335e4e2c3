package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinicdesk/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type apptRepoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns the Postgres-backed appointment repository.
func NewRepoPG(pool *pgxpool.Pool) AppointmentRepository { return &apptRepoPG{pool: pool} }

func (r *apptRepoPG) conn(ctx context.Context) queryable {
	if tx := db.ConnFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// bookLockKey is the advisory lock id for the appointment book.
const bookLockKey = 82_4701

// LockBook takes a transaction-scoped advisory lock covering the whole
// appointment book. Only meaningful inside a transaction; Postgres releases
// the lock at commit or rollback.
func (r *apptRepoPG) LockBook(ctx context.Context) error {
	_, err := r.conn(ctx).Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, bookLockKey)
	return err
}

// textArray keeps empty file lists encodable. A nil []string goes over the
// wire as SQL NULL and the array columns are NOT NULL.
func textArray(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

const apptCols = `id, patient_id, name, age, gender, height, weight, mobile,
	appointment_date, appointment_time, doctor, notes, status, booked_on,
	report_files, prescription_files, follow_up_date, diagnosis`

func scanAppt(row pgx.Row) (*AppointmentRecord, error) {
	var a AppointmentRecord
	err := row.Scan(&a.ID, &a.PatientID, &a.Name, &a.Age, &a.Gender, &a.Height,
		&a.Weight, &a.Mobile, &a.Date, &a.Time, &a.Doctor, &a.Notes, &a.Status,
		&a.BookedOn, &a.ReportFiles, &a.PrescriptionFiles, &a.FollowUpDate, &a.Diagnosis)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *apptRepoPG) Insert(ctx context.Context, rec *AppointmentRecord) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointments (id, patient_id, name, age, gender, height, weight,
			mobile, appointment_date, appointment_time, doctor, notes, status,
			booked_on, report_files, prescription_files, follow_up_date, diagnosis)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		rec.ID, rec.PatientID, rec.Name, rec.Age, rec.Gender, rec.Height, rec.Weight,
		rec.Mobile, rec.Date, rec.Time, rec.Doctor, rec.Notes, rec.Status,
		rec.BookedOn, textArray(rec.ReportFiles), textArray(rec.PrescriptionFiles),
		rec.FollowUpDate, rec.Diagnosis)
	return err
}

func (r *apptRepoPG) Update(ctx context.Context, rec *AppointmentRecord) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET patient_id=$2, name=$3, age=$4, gender=$5, height=$6,
			weight=$7, mobile=$8, appointment_date=$9, appointment_time=$10, doctor=$11,
			notes=$12, status=$13, report_files=$14, prescription_files=$15,
			follow_up_date=$16, diagnosis=$17
		WHERE id = $1`,
		rec.ID, rec.PatientID, rec.Name, rec.Age, rec.Gender, rec.Height, rec.Weight,
		rec.Mobile, rec.Date, rec.Time, rec.Doctor, rec.Notes, rec.Status,
		textArray(rec.ReportFiles), textArray(rec.PrescriptionFiles),
		rec.FollowUpDate, rec.Diagnosis)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *apptRepoPG) Delete(ctx context.Context, id int) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *apptRepoPG) GetByID(ctx context.Context, id int) (*AppointmentRecord, error) {
	return scanAppt(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointments WHERE id = $1`, id))
}

func (r *apptRepoPG) ListAll(ctx context.Context) ([]*AppointmentRecord, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+apptCols+` FROM appointments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppts(rows)
}

func collectAppts(rows pgx.Rows) ([]*AppointmentRecord, error) {
	var out []*AppointmentRecord
	for rows.Next() {
		a, err := scanAppt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *apptRepoPG) Search(ctx context.Context, params SearchParams, limit, offset int) ([]*AppointmentRecord, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	n := 0

	add := func(clause string, val interface{}) {
		n++
		where = append(where, fmt.Sprintf(clause, n))
		args = append(args, val)
	}

	if params.Doctor != "" {
		add("doctor = $%d", params.Doctor)
	}
	if params.Date != "" {
		add("appointment_date = $%d", params.Date)
	}
	if params.Status != "" {
		add("status = $%d", params.Status)
	}
	if params.Mobile != "" {
		// Match on the bare subscriber number so a search with or without
		// the country prefix finds the same records.
		add("right(replace(replace(mobile, ' ', ''), '-', ''), 10) = $%d",
			rightDigits(NormalizeMobile(params.Mobile), 10))
	}
	if params.Name != "" {
		add("name ILIKE $%d", "%"+params.Name+"%")
	}

	cond := strings.Join(where, " AND ")

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT count(*) FROM appointments WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE %s ORDER BY appointment_date, appointment_time`,
		apptCols, cond)
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, n+1, n+2)
		args = append(args, limit, offset)
	}

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := collectAppts(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
