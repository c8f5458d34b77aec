package postgres

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"gorm.io/gorm"

	"github.com/clinicore/prescriptions-api/internal/domain/errors"
	"github.com/clinicore/prescriptions-api/internal/domain/model"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	res := r.db.WithContext(ctx).
		Preload("Doctor").
		Preload("Patient").
		Where("email = ?", email).
		First(&u)
	if stderrors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, errors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, errors.WrapInternal(err, "GetByEmail")
	}
	return u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	var u model.User
	res := r.db.WithContext(ctx).
		Preload("Doctor").
		Preload("Patient").
		Where("id = ?", id).
		First(&u)
	if stderrors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.User{}, errors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.User{}, errors.WrapInternal(err, "GetByID")
	}
	return u, nil
}

func (r *UserRepo) List(ctx context.Context, role model.Role, page, limit int) ([]model.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.User{})
	if role != "" {
		q = q.Where("role = ?", role)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.WrapInternal(err, "List")
	}

	var users []model.User
	err := q.Preload("Doctor").
		Preload("Patient").
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, errors.WrapInternal(err, "List")
	}
	return users, total, nil
}

func (r *UserRepo) Create(ctx context.Context, u model.User) (uuid.UUID, error) {
	res := r.db.WithContext(ctx).Create(&u)
	if err := res.Error; err != nil {
		var pgErr *pgconn.PgError
		if stderrors.As(err, &pgErr) && pgErr.Code == "23505" {
			return uuid.Nil, errors.ErrAlreadyExists
		}
		return uuid.Nil, errors.WrapInternal(err, "Create")
	}
	return u.ID, nil
}
