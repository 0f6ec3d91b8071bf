package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/caminemosjuntos/counseling/internal/auth"
	"github.com/caminemosjuntos/counseling/internal/telemetry/tracing"
	"github.com/caminemosjuntos/counseling/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var _ userRepo = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) AddUser(ctx context.Context, u *User) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "userRepo.AddUser")
	defer func() { tracing.EndSpan(span, err) }()

	u.Email = pkg.NormalizeEmail(u.Email)
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO users (email, password_hash, name) VALUES ($1, $2, $3) RETURNING id, created_at;`,
		u.Email, u.PasswordHash, u.Name,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (r *Repo) UserByEmail(ctx context.Context, email string) (*User, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "userRepo.UserByEmail")
	defer span.End()

	return r.scanUser(r.db.QueryRow(
		ctx,
		`SELECT id, email, password_hash, name, created_at FROM users WHERE email = $1;`,
		pkg.NormalizeEmail(email),
	))
}

func (r *Repo) UserByID(ctx context.Context, id int) (*User, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "userRepo.UserByID")
	span.SetAttributes(attribute.Int("id", id))
	defer span.End()

	return r.scanUser(r.db.QueryRow(
		ctx,
		`SELECT id, email, password_hash, name, created_at FROM users WHERE id = $1;`,
		id,
	))
}

func (r *Repo) scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// IdentityByID loads the user behind a login session
func (r *Repo) IdentityByID(ctx context.Context, id int) (*auth.Identity, error) {
	u, err := r.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &auth.Identity{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}, nil
}
