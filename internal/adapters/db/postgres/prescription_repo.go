package postgres

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinicore/prescriptions-api/internal/domain/errors"
	"github.com/clinicore/prescriptions-api/internal/domain/model"
	"github.com/clinicore/prescriptions-api/internal/domain/repo"
)

type PrescriptionRepo struct {
	db *gorm.DB
}

func NewPrescriptionRepo(db *gorm.DB) *PrescriptionRepo {
	return &PrescriptionRepo{db: db}
}

func (r *PrescriptionRepo) Create(ctx context.Context, p model.Prescription) (model.Prescription, error) {
	// items ride along in one insert through the association
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Prescription{}, errors.WrapInternal(err, "Create")
	}
	return r.GetByID(ctx, p.ID)
}

func (r *PrescriptionRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Prescription, error) {
	var p model.Prescription
	res := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Author").
		Preload("Patient").
		Where("id = ?", id).
		First(&p)
	if stderrors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Prescription{}, errors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Prescription{}, errors.WrapInternal(err, "GetByID")
	}
	return p, nil
}

func (r *PrescriptionRepo) List(ctx context.Context, f repo.PrescriptionFilter) ([]model.Prescription, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Prescription{})
	if f.AuthorID != nil {
		q = q.Where("author_id = ?", *f.AuthorID)
	}
	if f.PatientID != nil {
		q = q.Where("patient_id = ?", *f.PatientID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.WrapInternal(err, "List")
	}

	order := "created_at asc"
	if f.OrderDesc {
		order = "created_at desc"
	}
	var out []model.Prescription
	err := q.Preload("Items").
		Preload("Author").
		Preload("Patient").
		Order(order).
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, errors.WrapInternal(err, "List")
	}
	return out, total, nil
}

func (r *PrescriptionRepo) MarkConsumed(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.Prescription{}).
		Where("id = ? AND status = ?", id, model.StatusPending).
		Updates(map[string]interface{}{
			"status":      model.StatusConsumed,
			"consumed_at": at,
		})
	if err := res.Error; err != nil {
		return errors.WrapInternal(err, "MarkConsumed")
	}
	if res.RowsAffected == 0 {
		// either the row is gone or someone else consumed it first
		var n int64
		if err := r.db.WithContext(ctx).Model(&model.Prescription{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return errors.WrapInternal(err, "MarkConsumed")
		}
		if n == 0 {
			return errors.ErrNotFound
		}
		return errors.NewForbidden("already consumed")
	}
	return nil
}

func (r *PrescriptionRepo) Count(ctx context.Context, dr repo.DateRange) (int64, error) {
	var n int64
	if err := r.ranged(ctx, dr).Count(&n).Error; err != nil {
		return 0, errors.WrapInternal(err, "Count")
	}
	return n, nil
}

func (r *PrescriptionRepo) CountByStatus(ctx context.Context, dr repo.DateRange) ([]repo.StatusCount, error) {
	var out []repo.StatusCount
	err := r.ranged(ctx, dr).
		Select("status, count(*) as count").
		Group("status").
		Scan(&out).Error
	if err != nil {
		return nil, errors.WrapInternal(err, "CountByStatus")
	}
	return out, nil
}

func (r *PrescriptionRepo) CountByDay(ctx context.Context, dr repo.DateRange) ([]repo.DayCount, error) {
	var out []repo.DayCount
	err := r.ranged(ctx, dr).
		Select("to_char(created_at, 'YYYY-MM-DD') as date, count(*) as count").
		Group("date").
		Order("date asc").
		Scan(&out).Error
	if err != nil {
		return nil, errors.WrapInternal(err, "CountByDay")
	}
	return out, nil
}

func (r *PrescriptionRepo) TopAuthors(ctx context.Context, dr repo.DateRange, limit int) ([]repo.AuthorCount, error) {
	var out []repo.AuthorCount
	err := r.ranged(ctx, dr).
		Select("author_id, count(*) as count").
		Group("author_id").
		Order("count desc").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, errors.WrapInternal(err, "TopAuthors")
	}
	return out, nil
}

func (r *PrescriptionRepo) ranged(ctx context.Context, dr repo.DateRange) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Prescription{})
	if dr.From != nil {
		q = q.Where("created_at >= ?", *dr.From)
	}
	if dr.To != nil {
		q = q.Where("created_at <= ?", *dr.To)
	}
	return q
}
