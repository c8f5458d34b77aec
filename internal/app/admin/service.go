// Package admin serves the administrative views: the user directory
// and the aggregate prescription metrics.
package admin

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/prescriptions-api/internal/domain/errors"
	"github.com/clinicore/prescriptions-api/internal/domain/model"
	"github.com/clinicore/prescriptions-api/internal/domain/repo"
	"github.com/clinicore/prescriptions-api/internal/transport/http/dto"
)

type Totals struct {
	Doctors       int64 `json:"doctors"`
	Patients      int64 `json:"patients"`
	Prescriptions int64 `json:"prescriptions"`
}

type StatusBreakdown struct {
	Pending  int64 `json:"pending"`
	Consumed int64 `json:"consumed"`
}

type TopDoctor struct {
	DoctorID   uuid.UUID `json:"doctorId"`
	DoctorName string    `json:"doctorName"`
	Specialty  string    `json:"specialty"`
	Count      int64     `json:"count"`
}

type Metrics struct {
	Totals     Totals          `json:"totals"`
	ByStatus   StatusBreakdown `json:"byStatus"`
	ByDay      []repo.DayCount `json:"byDay"`
	TopDoctors []TopDoctor     `json:"topDoctors"`
}

type Service interface {
	ListUsers(ctx context.Context, q dto.ListUsersQuery) ([]model.User, model.PageMeta, error)
	Metrics(ctx context.Context, q dto.MetricsQuery) (Metrics, error)
}

type adminService struct {
	users         repo.UserRepo
	doctors       repo.DoctorRepo
	patients      repo.PatientRepo
	prescriptions repo.PrescriptionRepo
}

func New(users repo.UserRepo, doctors repo.DoctorRepo, patients repo.PatientRepo, prescriptions repo.PrescriptionRepo) Service {
	return &adminService{users: users, doctors: doctors, patients: patients, prescriptions: prescriptions}
}

func (s *adminService) ListUsers(ctx context.Context, q dto.ListUsersQuery) ([]model.User, model.PageMeta, error) {
	role := model.Role(q.Role)
	switch role {
	case "", model.RoleAdmin, model.RoleDoctor, model.RolePatient:
	default:
		return nil, model.PageMeta{}, errors.NewInvalidArgument("role must be admin, doctor or patient")
	}

	page, limit := normPage(q.Page), normLimit(q.Limit)
	users, total, err := s.users.List(ctx, role, page, limit)
	if err != nil {
		return nil, model.PageMeta{}, errors.WrapInternal(err, "ListUsers")
	}
	return users, model.NewPageMeta(total, page, limit), nil
}

func (s *adminService) Metrics(ctx context.Context, q dto.MetricsQuery) (Metrics, error) {
	r, err := parseRange(q.From, q.To)
	if err != nil {
		return Metrics{}, err
	}

	var m Metrics

	if m.Totals.Doctors, err = s.doctors.Count(ctx); err != nil {
		return Metrics{}, errors.WrapInternal(err, "Metrics")
	}
	if m.Totals.Patients, err = s.patients.Count(ctx); err != nil {
		return Metrics{}, errors.WrapInternal(err, "Metrics")
	}
	if m.Totals.Prescriptions, err = s.prescriptions.Count(ctx, r); err != nil {
		return Metrics{}, errors.WrapInternal(err, "Metrics")
	}

	byStatus, err := s.prescriptions.CountByStatus(ctx, r)
	if err != nil {
		return Metrics{}, errors.WrapInternal(err, "Metrics")
	}
	for _, sc := range byStatus {
		switch sc.Status {
		case model.StatusPending:
			m.ByStatus.Pending = sc.Count
		case model.StatusConsumed:
			m.ByStatus.Consumed = sc.Count
		}
	}

	if m.ByDay, err = s.prescriptions.CountByDay(ctx, r); err != nil {
		return Metrics{}, errors.WrapInternal(err, "Metrics")
	}
	if m.ByDay == nil {
		m.ByDay = []repo.DayCount{}
	}

	top, err := s.prescriptions.TopAuthors(ctx, r, 10)
	if err != nil {
		return Metrics{}, errors.WrapInternal(err, "Metrics")
	}
	m.TopDoctors = make([]TopDoctor, 0, len(top))
	for _, ac := range top {
		td := TopDoctor{DoctorID: ac.AuthorID, DoctorName: "unknown", Specialty: "unspecified", Count: ac.Count}
		if doc, err := s.doctors.GetByID(ctx, ac.AuthorID); err == nil {
			td.Specialty = doc.Specialty
			if u, err := s.users.GetByID(ctx, doc.UserID); err == nil {
				td.DoctorName = u.Name
			}
		}
		m.TopDoctors = append(m.TopDoctors, td)
	}

	return m, nil
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

func parseRange(from, to string) (repo.DateRange, error) {
	parse := func(s string) (*time.Time, error) {
		if s == "" {
			return nil, nil
		}
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return &t, nil
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, errors.NewInvalidArgument("dates must be YYYY-MM-DD or RFC3339")
		}
		return &t, nil
	}

	var r repo.DateRange
	var err error
	if r.From, err = parse(from); err != nil {
		return repo.DateRange{}, err
	}
	if r.To, err = parse(to); err != nil {
		return repo.DateRange{}, err
	}
	return r, nil
}
