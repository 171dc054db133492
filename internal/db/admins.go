package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bdsumon4u/KroyJogot24/internal/models"
)

type AdminStore struct {
	pool *pgxpool.Pool
}

func NewAdminStore(pool *pgxpool.Pool) *AdminStore {
	return &AdminStore{pool: pool}
}

func (s *AdminStore) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	q := querierFrom(ctx, s.pool)
	err := q.QueryRow(ctx,
		`SELECT id, name, email, password_hash, role_id FROM admins WHERE email = $1`,
		email,
	).Scan(&admin.ID, &admin.Name, &admin.Email, &admin.PasswordHash, &admin.RoleID)
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (s *AdminStore) GetByID(ctx context.Context, adminID int64) (*models.Admin, error) {
	var admin models.Admin
	q := querierFrom(ctx, s.pool)
	err := q.QueryRow(ctx,
		`SELECT id, name, email, password_hash, role_id FROM admins WHERE id = $1`,
		adminID,
	).Scan(&admin.ID, &admin.Name, &admin.Email, &admin.PasswordHash, &admin.RoleID)
	if err != nil {
		return nil, err
	}
	return &admin, nil
}
