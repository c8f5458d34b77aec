package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/prescriptions-api/internal/domain/model"
)

// PrescriptionFilter narrows a listing. Nil/zero fields are ignored.
type PrescriptionFilter struct {
	AuthorID  *uuid.UUID
	PatientID *uuid.UUID
	Status    model.PrescriptionStatus
	From      *time.Time
	To        *time.Time
	Page      int
	Limit     int
	OrderDesc bool
}

// DateRange bounds the metric aggregations. Nil ends are open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

type StatusCount struct {
	Status model.PrescriptionStatus
	Count  int64
}

type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type AuthorCount struct {
	AuthorID uuid.UUID
	Count    int64
}

type PrescriptionRepo interface {
	// Create persists the prescription together with its items.
	Create(ctx context.Context, p model.Prescription) (model.Prescription, error)

	// GetByID loads the prescription with items and both profiles.
	GetByID(ctx context.Context, id uuid.UUID) (model.Prescription, error)

	List(ctx context.Context, f PrescriptionFilter) ([]model.Prescription, int64, error)

	// MarkConsumed flips pending to consumed at the given instant.
	// It reports ErrNotFound when the row is missing and
	// ErrForbidden when the row is no longer pending, so the
	// transition stays race-free under concurrent consumers.
	MarkConsumed(ctx context.Context, id uuid.UUID, at time.Time) error

	Count(ctx context.Context, r DateRange) (int64, error)
	CountByStatus(ctx context.Context, r DateRange) ([]StatusCount, error)
	CountByDay(ctx context.Context, r DateRange) ([]DayCount, error)
	TopAuthors(ctx context.Context, r DateRange, limit int) ([]AuthorCount, error)
}
