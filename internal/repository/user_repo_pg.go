package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository is the passenger identity collaborator: orders always
// bind to the profile it resolves.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type PGUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

func (r *PGUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, username, role, real_name, id_card_no, phone, email, created_at FROM users WHERE id=$1`, id)
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.Role, &u.Profile.RealName, &u.Profile.IDCardNo, &u.Profile.Phone, &u.Profile.Email, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &u, nil
}

var _ UserRepository = (*PGUserRepository)(nil)
