// Package directory lists doctors and patients for the roles allowed
// to browse them.
package directory

import (
	"context"

	"github.com/clinicore/prescriptions-api/internal/domain/errors"
	"github.com/clinicore/prescriptions-api/internal/domain/model"
	"github.com/clinicore/prescriptions-api/internal/domain/repo"
	"github.com/clinicore/prescriptions-api/internal/transport/http/dto"
)

type Service interface {
	ListDoctors(ctx context.Context, q dto.ListDoctorsQuery) ([]repo.DoctorListing, model.PageMeta, error)
	ListPatients(ctx context.Context, q dto.ListPatientsQuery) ([]repo.PatientListing, model.PageMeta, error)
}

type directoryService struct {
	doctors  repo.DoctorRepo
	patients repo.PatientRepo
}

func New(doctors repo.DoctorRepo, patients repo.PatientRepo) Service {
	return &directoryService{doctors: doctors, patients: patients}
}

func (s *directoryService) ListDoctors(ctx context.Context, q dto.ListDoctorsQuery) ([]repo.DoctorListing, model.PageMeta, error) {
	page, limit := normPage(q.Page), normLimit(q.Limit)
	items, total, err := s.doctors.List(ctx, q.Search, q.Specialty, page, limit)
	if err != nil {
		return nil, model.PageMeta{}, errors.WrapInternal(err, "ListDoctors")
	}
	return items, model.NewPageMeta(total, page, limit), nil
}

func (s *directoryService) ListPatients(ctx context.Context, q dto.ListPatientsQuery) ([]repo.PatientListing, model.PageMeta, error) {
	page, limit := normPage(q.Page), normLimit(q.Limit)
	items, total, err := s.patients.List(ctx, q.Search, page, limit)
	if err != nil {
		return nil, model.PageMeta{}, errors.WrapInternal(err, "ListPatients")
	}
	return items, model.NewPageMeta(total, page, limit), nil
}

func normPage(p int) int {
	if p < 1 {
		return 1
	}
	return p
}

func normLimit(l int) int {
	if l < 1 {
		return 10
	}
	if l > 100 {
		return 100
	}
	return l
}
