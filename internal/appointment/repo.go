package appointment

import (
	"context"
	"fmt"

	"github.com/caminemosjuntos/counseling/internal/telemetry/tracing"
	"github.com/caminemosjuntos/counseling/pkg"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var _ appointmentRepo = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) SlotTaken(ctx context.Context, date, hour string) (bool, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "appointmentRepo.SlotTaken")
	span.SetAttributes(attribute.String("date", date), attribute.String("hour", hour))
	defer span.End()

	var taken bool
	if err := r.db.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM appointment WHERE date = $1 AND hour = $2);`,
		date, hour,
	).Scan(&taken); err != nil {
		return false, fmt.Errorf("check slot %s %s: %w", date, hour, err)
	}

	return taken, nil
}

// AddAppointment stores the booking; a concurrent booking of the same slot fails with ErrSlotTaken
func (r *Repo) AddAppointment(ctx context.Context, a *Appointment) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "appointmentRepo.AddAppointment")
	span.SetAttributes(attribute.String("date", a.Date), attribute.String("hour", a.Hour))
	defer func() { tracing.EndSpan(span, err) }()

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO appointment (date, hour, name, email, phone) VALUES ($1, $2, $3, $4, $5) RETURNING id;`,
		a.Date, a.Hour, a.Name, a.Email, a.Phone,
	).Scan(&a.ID)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("insert appointment: %w", err)
	}

	return nil
}

// All returns every appointment, latest date first
func (r *Repo) All(ctx context.Context) ([]*Appointment, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "appointmentRepo.All")
	defer span.End()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, date, hour, name, email, phone FROM appointment ORDER BY date DESC, hour DESC;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	defer rows.Close()

	var appointments []*Appointment
	for rows.Next() {
		a := &Appointment{}
		if err := rows.Scan(&a.ID, &a.Date, &a.Hour, &a.Name, &a.Email, &a.Phone); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appointments = append(appointments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointments: %w", err)
	}

	return appointments, nil
}

func (r *Repo) DeleteAppointment(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "appointmentRepo.DeleteAppointment")
	span.SetAttributes(attribute.Int("id", id))
	defer func() { tracing.EndSpan(span, err) }()

	tag, err := r.db.Exec(ctx, `DELETE FROM appointment WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete appointment %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}

	log.Tracef("appointment %d deleted", id)
	return nil
}
