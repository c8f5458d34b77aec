package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinicore/prescriptions-api/internal/domain/model"
)

// DoctorListing is a doctor joined with the user it belongs to,
// shaped for the directory endpoints.
type DoctorListing struct {
	ID        uuid.UUID `json:"id"`
	Specialty string    `json:"specialty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
}

type PatientListing struct {
	ID        uuid.UUID `json:"id"`
	BirthDate string    `json:"birthDate"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
}

type DoctorRepo interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (model.Doctor, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.Doctor, error)
	List(ctx context.Context, search, specialty string, page, limit int) ([]DoctorListing, int64, error)
	Count(ctx context.Context) (int64, error)
}

type PatientRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (model.Patient, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (model.Patient, error)
	List(ctx context.Context, search string, page, limit int) ([]PatientListing, int64, error)
	Count(ctx context.Context) (int64, error)
}
