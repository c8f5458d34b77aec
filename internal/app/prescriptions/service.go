// Package prescriptions holds the prescription lifecycle: doctors
// issue, patients consume. Ownership checks run here, after the role
// gate at the transport edge has already passed.
package prescriptions

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/clinicore/prescriptions-api/internal/domain/errors"
	"github.com/clinicore/prescriptions-api/internal/domain/model"
	"github.com/clinicore/prescriptions-api/internal/domain/repo"
	"github.com/clinicore/prescriptions-api/internal/transport/http/dto"
)

type Service interface {
	Create(ctx context.Context, actor model.AuthUser, in dto.CreatePrescriptionDTO) (model.Prescription, error)
	List(ctx context.Context, actor model.AuthUser, q dto.ListPrescriptionsQuery) ([]model.Prescription, model.PageMeta, error)
	GetByID(ctx context.Context, actor model.AuthUser, id uuid.UUID) (model.Prescription, error)
	ListMine(ctx context.Context, actor model.AuthUser, page, limit int) ([]model.Prescription, model.PageMeta, error)
	Consume(ctx context.Context, actor model.AuthUser, id uuid.UUID) (model.Prescription, error)
}

type prescriptionService struct {
	prescriptions repo.PrescriptionRepo
	patients      repo.PatientRepo
	v             *validator.Validate
}

func New(prescriptions repo.PrescriptionRepo, patients repo.PatientRepo, v *validator.Validate) Service {
	return &prescriptionService{prescriptions: prescriptions, patients: patients, v: v}
}

func (s *prescriptionService) Create(ctx context.Context, actor model.AuthUser, in dto.CreatePrescriptionDTO) (model.Prescription, error) {
	if err := s.v.Struct(in); err != nil {
		return model.Prescription{}, errors.NewInvalidArgument(err.Error())
	}
	if actor.Doctor == nil {
		return model.Prescription{}, errors.NewForbidden("only doctors can create prescriptions")
	}

	patientID, err := uuid.Parse(in.PatientID)
	if err != nil {
		return model.Prescription{}, errors.NewNotFound("patient not found")
	}
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		if errors.IsNotFound(err) {
			return model.Prescription{}, errors.NewNotFound("patient not found")
		}
		return model.Prescription{}, errors.WrapInternal(err, "Create")
	}

	p := model.Prescription{
		ID:        uuid.New(),
		Code:      newCode(),
		Status:    model.StatusPending,
		Notes:     in.Notes,
		AuthorID:  actor.Doctor.ID,
		PatientID: patientID,
	}
	for _, it := range in.Items {
		p.Items = append(p.Items, model.PrescriptionItem{
			ID:             uuid.New(),
			PrescriptionID: p.ID,
			Name:           it.Name,
			Dosage:         it.Dosage,
			Quantity:       it.Quantity,
			Instructions:   it.Instructions,
		})
	}

	created, err := s.prescriptions.Create(ctx, p)
	if err != nil {
		return model.Prescription{}, errors.WrapInternal(err, "Create")
	}
	return created, nil
}

func (s *prescriptionService) List(ctx context.Context, actor model.AuthUser, q dto.ListPrescriptionsQuery) ([]model.Prescription, model.PageMeta, error) {
	if actor.Doctor == nil {
		return nil, model.PageMeta{}, errors.NewForbidden("only doctors can list prescriptions")
	}

	f := repo.PrescriptionFilter{
		Page:      normPage(q.Page),
		Limit:     normLimit(q.Limit),
		OrderDesc: q.Order != "asc",
	}
	if q.Mine {
		f.AuthorID = &actor.Doctor.ID
	}
	if q.Status != "" {
		st := model.PrescriptionStatus(q.Status)
		if st != model.StatusPending && st != model.StatusConsumed {
			return nil, model.PageMeta{}, errors.NewInvalidArgument("status must be pending or consumed")
		}
		f.Status = st
	}
	var err error
	if f.From, f.To, err = parseRange(q.From, q.To); err != nil {
		return nil, model.PageMeta{}, err
	}

	items, total, err := s.prescriptions.List(ctx, f)
	if err != nil {
		return nil, model.PageMeta{}, errors.WrapInternal(err, "List")
	}
	return items, model.NewPageMeta(total, f.Page, f.Limit), nil
}

func (s *prescriptionService) GetByID(ctx context.Context, actor model.AuthUser, id uuid.UUID) (model.Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return model.Prescription{}, errors.NewNotFound("prescription not found")
		}
		return model.Prescription{}, errors.WrapInternal(err, "GetByID")
	}

	// a patient only sees their own prescriptions; doctors and
	// admins see any. The mismatch answers 403, not 404.
	if actor.Role == model.RolePatient {
		if actor.Patient == nil || p.PatientID != actor.Patient.ID {
			return model.Prescription{}, errors.NewForbidden("not your resource")
		}
	}
	return p, nil
}

func (s *prescriptionService) ListMine(ctx context.Context, actor model.AuthUser, page, limit int) ([]model.Prescription, model.PageMeta, error) {
	if actor.Patient == nil {
		return nil, model.PageMeta{}, errors.NewForbidden("only patients can list their prescriptions")
	}

	f := repo.PrescriptionFilter{
		PatientID: &actor.Patient.ID,
		Page:      normPage(page),
		Limit:     normLimit(limit),
		OrderDesc: true,
	}
	items, total, err := s.prescriptions.List(ctx, f)
	if err != nil {
		return nil, model.PageMeta{}, errors.WrapInternal(err, "ListMine")
	}
	return items, model.NewPageMeta(total, f.Page, f.Limit), nil
}

func (s *prescriptionService) Consume(ctx context.Context, actor model.AuthUser, id uuid.UUID) (model.Prescription, error) {
	if actor.Patient == nil {
		return model.Prescription{}, errors.NewForbidden("only patients can consume prescriptions")
	}

	p, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return model.Prescription{}, errors.NewNotFound("prescription not found")
		}
		return model.Prescription{}, errors.WrapInternal(err, "Consume")
	}

	if p.PatientID != actor.Patient.ID {
		return model.Prescription{}, errors.NewForbidden("not your resource")
	}
	if p.Status != model.StatusPending {
		return model.Prescription{}, errors.NewForbidden("already consumed")
	}

	// the conditional update is the real guard; two concurrent
	// consumers race here and exactly one wins
	if err := s.prescriptions.MarkConsumed(ctx, id, time.Now()); err != nil {
		if errors.IsForbidden(err) || errors.IsNotFound(err) {
			return model.Prescription{}, errors.NewForbidden("already consumed")
		}
		return model.Prescription{}, errors.WrapInternal(err, "Consume")
	}

	consumed, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		return model.Prescription{}, errors.WrapInternal(err, "Consume")
	}
	return consumed, nil
}

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// newCode builds the human-facing prescription code, RX- plus ten
// characters.
func newCode() string {
	b := make([]byte, 10)
	if _, err := rand.Read(b); err != nil {
		// documented to never fail on supported platforms
		panic(err)
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return "RX-" + string(b)
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

func parseRange(from, to string) (*time.Time, *time.Time, error) {
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

	f, err := parse(from)
	if err != nil {
		return nil, nil, err
	}
	t, err := parse(to)
	if err != nil {
		return nil, nil, err
	}
	return f, t, nil
}
