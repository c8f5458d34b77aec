package postgres

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinicore/prescriptions-api/internal/domain/errors"
	"github.com/clinicore/prescriptions-api/internal/domain/model"
	"github.com/clinicore/prescriptions-api/internal/domain/repo"
)

type DoctorRepo struct {
	db *gorm.DB
}

func NewDoctorRepo(db *gorm.DB) *DoctorRepo {
	return &DoctorRepo{db: db}
}

func (r *DoctorRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (model.Doctor, error) {
	var d model.Doctor
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&d)
	if stderrors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Doctor{}, errors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Doctor{}, errors.WrapInternal(err, "GetByUserID")
	}
	return d, nil
}

func (r *DoctorRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Doctor, error) {
	var d model.Doctor
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&d)
	if stderrors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Doctor{}, errors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Doctor{}, errors.WrapInternal(err, "GetByID")
	}
	return d, nil
}

func (r *DoctorRepo) List(ctx context.Context, search, specialty string, page, limit int) ([]repo.DoctorListing, int64, error) {
	q := r.db.WithContext(ctx).
		Table("doctors").
		Joins("JOIN users ON users.id = doctors.user_id")
	if search != "" {
		q = q.Where("users.name ILIKE ? OR users.email ILIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if specialty != "" {
		q = q.Where("doctors.specialty ILIKE ?", "%"+specialty+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.WrapInternal(err, "List")
	}

	var out []repo.DoctorListing
	err := q.Select("doctors.id, doctors.specialty, users.name, users.email").
		Order("users.name asc").
		Offset((page - 1) * limit).
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, 0, errors.WrapInternal(err, "List")
	}
	return out, total, nil
}

func (r *DoctorRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Doctor{}).Count(&n).Error; err != nil {
		return 0, errors.WrapInternal(err, "Count")
	}
	return n, nil
}

type PatientRepo struct {
	db *gorm.DB
}

func NewPatientRepo(db *gorm.DB) *PatientRepo {
	return &PatientRepo{db: db}
}

func (r *PatientRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Patient, error) {
	var p model.Patient
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&p)
	if stderrors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Patient{}, errors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Patient{}, errors.WrapInternal(err, "GetByID")
	}
	return p, nil
}

func (r *PatientRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (model.Patient, error) {
	var p model.Patient
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p)
	if stderrors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Patient{}, errors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Patient{}, errors.WrapInternal(err, "GetByUserID")
	}
	return p, nil
}

func (r *PatientRepo) List(ctx context.Context, search string, page, limit int) ([]repo.PatientListing, int64, error) {
	q := r.db.WithContext(ctx).
		Table("patients").
		Joins("JOIN users ON users.id = patients.user_id")
	if search != "" {
		q = q.Where("users.name ILIKE ? OR users.email ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.WrapInternal(err, "List")
	}

	var out []repo.PatientListing
	err := q.Select("patients.id, to_char(patients.birth_date, 'YYYY-MM-DD') as birth_date, users.name, users.email").
		Order("users.name asc").
		Offset((page - 1) * limit).
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, 0, errors.WrapInternal(err, "List")
	}
	return out, total, nil
}

func (r *PatientRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Patient{}).Count(&n).Error; err != nil {
		return 0, errors.WrapInternal(err, "Count")
	}
	return n, nil
}
