package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicore/prescriptions-api/internal/app/admin"
	"github.com/clinicore/prescriptions-api/internal/app/auth/jwt"
	"github.com/clinicore/prescriptions-api/internal/app/auth/revocation"
	authsvc "github.com/clinicore/prescriptions-api/internal/app/auth/service"
	"github.com/clinicore/prescriptions-api/internal/app/directory"
	"github.com/clinicore/prescriptions-api/internal/app/prescriptions"
	"github.com/clinicore/prescriptions-api/internal/domain/errors"
	"github.com/clinicore/prescriptions-api/internal/domain/model"
	"github.com/clinicore/prescriptions-api/internal/domain/repo"
	httpapi "github.com/clinicore/prescriptions-api/internal/transport/http"
)

/* ─────────────────────────────── stubs ─────────────────────────────── */

type userStore struct{ users map[uuid.UUID]model.User }

func (s *userStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, errors.ErrNotFound
}

func (s *userStore) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, errors.ErrNotFound
	}
	return u, nil
}

func (s *userStore) List(_ context.Context, role model.Role, _, _ int) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range s.users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	return out, int64(len(out)), nil
}

func (s *userStore) Create(_ context.Context, u model.User) (uuid.UUID, error) {
	s.users[u.ID] = u
	return u.ID, nil
}

type doctorStore struct{ doctors map[uuid.UUID]model.Doctor }

func (s *doctorStore) GetByUserID(_ context.Context, userID uuid.UUID) (model.Doctor, error) {
	for _, d := range s.doctors {
		if d.UserID == userID {
			return d, nil
		}
	}
	return model.Doctor{}, errors.ErrNotFound
}

func (s *doctorStore) GetByID(_ context.Context, id uuid.UUID) (model.Doctor, error) {
	d, ok := s.doctors[id]
	if !ok {
		return model.Doctor{}, errors.ErrNotFound
	}
	return d, nil
}

func (s *doctorStore) List(_ context.Context, _, _ string, _, _ int) ([]repo.DoctorListing, int64, error) {
	var out []repo.DoctorListing
	for _, d := range s.doctors {
		out = append(out, repo.DoctorListing{ID: d.ID, Specialty: d.Specialty})
	}
	return out, int64(len(out)), nil
}

func (s *doctorStore) Count(_ context.Context) (int64, error) {
	return int64(len(s.doctors)), nil
}

type patientStore struct{ patients map[uuid.UUID]model.Patient }

func (s *patientStore) GetByID(_ context.Context, id uuid.UUID) (model.Patient, error) {
	p, ok := s.patients[id]
	if !ok {
		return model.Patient{}, errors.ErrNotFound
	}
	return p, nil
}

func (s *patientStore) GetByUserID(_ context.Context, userID uuid.UUID) (model.Patient, error) {
	for _, p := range s.patients {
		if p.UserID == userID {
			return p, nil
		}
	}
	return model.Patient{}, errors.ErrNotFound
}

func (s *patientStore) List(_ context.Context, _ string, _, _ int) ([]repo.PatientListing, int64, error) {
	var out []repo.PatientListing
	for _, p := range s.patients {
		out = append(out, repo.PatientListing{ID: p.ID})
	}
	return out, int64(len(out)), nil
}

func (s *patientStore) Count(_ context.Context) (int64, error) {
	return int64(len(s.patients)), nil
}

type prescriptionStore struct{ rows map[uuid.UUID]model.Prescription }

func (s *prescriptionStore) Create(_ context.Context, p model.Prescription) (model.Prescription, error) {
	p.CreatedAt = time.Now()
	s.rows[p.ID] = p
	return p, nil
}

func (s *prescriptionStore) GetByID(_ context.Context, id uuid.UUID) (model.Prescription, error) {
	p, ok := s.rows[id]
	if !ok {
		return model.Prescription{}, errors.ErrNotFound
	}
	return p, nil
}

func (s *prescriptionStore) List(_ context.Context, f repo.PrescriptionFilter) ([]model.Prescription, int64, error) {
	var out []model.Prescription
	for _, p := range s.rows {
		if f.AuthorID != nil && p.AuthorID != *f.AuthorID {
			continue
		}
		if f.PatientID != nil && p.PatientID != *f.PatientID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (s *prescriptionStore) MarkConsumed(_ context.Context, id uuid.UUID, at time.Time) error {
	p, ok := s.rows[id]
	if !ok {
		return errors.ErrNotFound
	}
	if p.Status != model.StatusPending {
		return errors.NewForbidden("already consumed")
	}
	p.Status = model.StatusConsumed
	p.ConsumedAt = &at
	s.rows[id] = p
	return nil
}

func (s *prescriptionStore) Count(_ context.Context, _ repo.DateRange) (int64, error) {
	return int64(len(s.rows)), nil
}

func (s *prescriptionStore) CountByStatus(_ context.Context, _ repo.DateRange) ([]repo.StatusCount, error) {
	byStatus := map[model.PrescriptionStatus]int64{}
	for _, p := range s.rows {
		byStatus[p.Status]++
	}
	var out []repo.StatusCount
	for st, n := range byStatus {
		out = append(out, repo.StatusCount{Status: st, Count: n})
	}
	return out, nil
}

func (s *prescriptionStore) CountByDay(_ context.Context, _ repo.DateRange) ([]repo.DayCount, error) {
	return nil, nil
}

func (s *prescriptionStore) TopAuthors(_ context.Context, _ repo.DateRange, _ int) ([]repo.AuthorCount, error) {
	byAuthor := map[uuid.UUID]int64{}
	for _, p := range s.rows {
		byAuthor[p.AuthorID]++
	}
	var out []repo.AuthorCount
	for id, n := range byAuthor {
		out = append(out, repo.AuthorCount{AuthorID: id, Count: n})
	}
	return out, nil
}

/* ────────────────────────────── fixture ────────────────────────────── */

type fixture struct {
	router   *gin.Engine
	doctor   model.User
	patient  model.User
	admin    model.User
	patients *patientStore
	rx       *prescriptionStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mustHash := func(pw string) string {
		h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
		require.NoError(t, err)
		return string(h)
	}

	doctorUID, patientUID, adminUID := uuid.New(), uuid.New(), uuid.New()
	doc := model.Doctor{ID: uuid.New(), UserID: doctorUID, Specialty: "Medicina General"}
	pat := model.Patient{ID: uuid.New(), UserID: patientUID}

	doctor := model.User{
		ID: doctorUID, Email: "dr@test.com", PasswordHash: mustHash("dr123"),
		Name: "Dr. Juan Perez", Role: model.RoleDoctor, Doctor: &doc,
	}
	patient := model.User{
		ID: patientUID, Email: "patient@test.com", PasswordHash: mustHash("patient123"),
		Name: "Maria Garcia", Role: model.RolePatient, Patient: &pat,
	}
	adminUser := model.User{
		ID: adminUID, Email: "admin@test.com", PasswordHash: mustHash("admin123"),
		Name: "Admin", Role: model.RoleAdmin,
	}

	users := &userStore{users: map[uuid.UUID]model.User{
		doctorUID: doctor, patientUID: patient, adminUID: adminUser,
	}}
	doctors := &doctorStore{doctors: map[uuid.UUID]model.Doctor{doc.ID: doc}}
	patients := &patientStore{patients: map[uuid.UUID]model.Patient{pat.ID: pat}}
	rx := &prescriptionStore{rows: map[uuid.UUID]model.Prescription{}}

	v := validator.New()
	registry := revocation.NewMemoryRegistry()
	issuer := jwt.NewTokenIssuer("test-access", "test-refresh", time.Minute, time.Hour)
	auth := authsvc.New(users, registry, issuer, v, zap.NewNop())

	router := httpapi.NewRouter(httpapi.Options{
		Log:            zap.NewNop(),
		AllowedOrigins: []string{"*"},
		Auth:           auth,
		Prescriptions:  prescriptions.New(rx, patients, v),
		Admin:          admin.New(users, doctors, patients, rx),
		Directory:      directory.New(doctors, patients),
	})

	return &fixture{
		router: router, doctor: doctor, patient: patient, admin: adminUser,
		patients: patients, rx: rx,
	}
}

func (f *fixture) request(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) login(t *testing.T, email, password string) (access, refresh string) {
	t.Helper()
	rec := f.request(t, http.MethodPost, "/auth/login", gin.H{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.AccessToken)
	require.NotEmpty(t, out.RefreshToken)
	return out.AccessToken, out.RefreshToken
}

/* ─────────────────────────────── tests ─────────────────────────────── */

func TestHealthEndpoints(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = f.request(t, http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)

	for _, body := range []gin.H{
		{"email": "ghost@test.com", "password": "whatever"},
		{"email": "dr@test.com", "password": "wrong"},
	} {
		rec := f.request(t, http.MethodPost, "/auth/login", body, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.JSONEq(t, `{"error":"invalid credentials"}`, rec.Body.String())
	}

	rec := f.request(t, http.MethodPost, "/auth/login", gin.H{"email": "dr@test.com"}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProtectedRoutesNeedBearer(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodGet, "/auth/profile", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.request(t, http.MethodGet, "/auth/profile", nil, "not-a-token")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"error":"invalid token"}`, rec.Body.String())
}

func TestPrescriptionFullFlow(t *testing.T) {
	f := newFixture(t)

	doctorToken, _ := f.login(t, "dr@test.com", "dr123")
	patientToken, _ := f.login(t, "patient@test.com", "patient123")

	// doctor writes a prescription for the patient
	create := gin.H{
		"patientId": f.patient.Patient.ID.String(),
		"notes":     "rest and fluids",
		"items":     []gin.H{{"name": "Paracetamol", "dosage": "500mg", "quantity": 10}},
	}
	rec := f.request(t, http.MethodPost, "/prescriptions", create, doctorToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created model.Prescription
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Regexp(t, `^RX-[0-9A-Z]{10}$`, created.Code)
	require.Equal(t, model.StatusPending, created.Status)

	// the patient may not create
	rec = f.request(t, http.MethodPost, "/prescriptions", create, patientToken)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.JSONEq(t, `{"error":"insufficient permissions"}`, rec.Body.String())

	// patient sees it under /me/prescriptions
	rec = f.request(t, http.MethodGet, "/me/prescriptions", nil, patientToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Data []model.Prescription `json:"data"`
		Meta model.PageMeta       `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Data, 1)
	require.EqualValues(t, 1, listing.Meta.Total)

	// consume succeeds once
	rec = f.request(t, http.MethodPost, "/prescriptions/"+created.ID.String()+"/consume", nil, patientToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var consumed model.Prescription
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &consumed))
	require.Equal(t, model.StatusConsumed, consumed.Status)
	require.NotNil(t, consumed.ConsumedAt)

	// the second consume is refused, not absorbed
	rec = f.request(t, http.MethodPost, "/prescriptions/"+created.ID.String()+"/consume", nil, patientToken)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.JSONEq(t, `{"error":"already consumed"}`, rec.Body.String())
}

func TestOwnershipBeatsExistence(t *testing.T) {
	f := newFixture(t)

	doctorToken, _ := f.login(t, "dr@test.com", "dr123")

	// a prescription for somebody else's patient
	otherPatient := model.Patient{ID: uuid.New(), UserID: uuid.New()}
	f.patients.patients[otherPatient.ID] = otherPatient

	create := gin.H{
		"patientId": otherPatient.ID.String(),
		"items":     []gin.H{{"name": "Ibuprofeno"}},
	}
	rec := f.request(t, http.MethodPost, "/prescriptions", create, doctorToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.Prescription
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// the fixture patient asks for it and learns only "not yours"
	patientToken, _ := f.login(t, "patient@test.com", "patient123")
	rec = f.request(t, http.MethodGet, "/prescriptions/"+created.ID.String(), nil, patientToken)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.JSONEq(t, `{"error":"not your resource"}`, rec.Body.String())
}

func TestLogoutRevokesUntilNextLogin(t *testing.T) {
	f := newFixture(t)

	access, _ := f.login(t, "dr@test.com", "dr123")

	rec := f.request(t, http.MethodGet, "/auth/profile", nil, access)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.request(t, http.MethodPost, "/auth/logout", nil, access)
	require.Equal(t, http.StatusOK, rec.Code)

	// the still-unexpired token now hits the revocation gate
	rec = f.request(t, http.MethodGet, "/auth/profile", nil, access)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"error":"session expired, log in again"}`, rec.Body.String())

	// logging back in clears the entry for the new session
	access2, _ := f.login(t, "dr@test.com", "dr123")
	rec = f.request(t, http.MethodGet, "/auth/profile", nil, access2)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshMintsNewPair(t *testing.T) {
	f := newFixture(t)

	_, refresh := f.login(t, "dr@test.com", "dr123")

	rec := f.request(t, http.MethodPost, "/auth/refresh", gin.H{"refreshToken": refresh}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.AccessToken)

	rec = f.request(t, http.MethodPost, "/auth/refresh", gin.H{"refreshToken": "garbage"}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminSurface(t *testing.T) {
	f := newFixture(t)

	adminToken, _ := f.login(t, "admin@test.com", "admin123")
	doctorToken, _ := f.login(t, "dr@test.com", "dr123")

	rec := f.request(t, http.MethodGet, "/users?role=doctor", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)

	// doctors may not read the user list
	rec = f.request(t, http.MethodGet, "/users", nil, doctorToken)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// but they may browse patients
	rec = f.request(t, http.MethodGet, "/patients", nil, doctorToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.request(t, http.MethodGet, "/admin/metrics", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var m admin.Metrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	require.EqualValues(t, 1, m.Totals.Doctors)
	require.EqualValues(t, 1, m.Totals.Patients)
}
