package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinicore/prescriptions-api/internal/domain/model"
)

type UserRepo interface {
	// GetByEmail loads a user with the doctor/patient profile preloaded.
	GetByEmail(ctx context.Context, email string) (model.User, error)

	// GetByID loads a user with the doctor/patient profile preloaded.
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)

	// List returns users filtered by role (empty role means all),
	// newest first.
	List(ctx context.Context, role model.Role, page, limit int) ([]model.User, int64, error)

	Create(ctx context.Context, u model.User) (uuid.UUID, error)
}
