// Command seed resets the database and loads the demo data set:
// one admin, one doctor, one patient and a handful of prescriptions
// in both lifecycle states.
package main

import (
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/clinicore/prescriptions-api/internal/config"
	"github.com/clinicore/prescriptions-api/internal/domain/model"
	lg "github.com/clinicore/prescriptions-api/internal/infra/log"
	"github.com/clinicore/prescriptions-api/internal/infra/migrate"
)

func main() {
	zapLog := lg.Must(os.Getenv("LOG_LEVEL"))
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("failed to load config", zap.Error(err))
	}

	db, err := gorm.Open(gormpostgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	// wipe in FK order
	for _, table := range []string{"prescription_items", "prescriptions", "doctors", "patients", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			zapLog.Fatal("wipe table", zap.String("table", table), zap.Error(err))
		}
	}

	hash := func(pw string) string {
		h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		if err != nil {
			zapLog.Fatal("hash password", zap.Error(err))
		}
		return string(h)
	}

	adminUser := model.User{
		ID:           uuid.New(),
		Email:        "admin@test.com",
		PasswordHash: hash("admin123"),
		Name:         "Administrador Principal",
		Role:         model.RoleAdmin,
	}

	doctorUser := model.User{
		ID:           uuid.New(),
		Email:        "dr@test.com",
		PasswordHash: hash("dr123"),
		Name:         "Dr. Juan Pérez",
		Role:         model.RoleDoctor,
	}
	doctorUser.Doctor = &model.Doctor{ID: uuid.New(), UserID: doctorUser.ID, Specialty: "Medicina General"}

	birth := time.Date(1990, 5, 15, 0, 0, 0, 0, time.UTC)
	patientUser := model.User{
		ID:           uuid.New(),
		Email:        "patient@test.com",
		PasswordHash: hash("patient123"),
		Name:         "María García",
		Role:         model.RolePatient,
	}
	patientUser.Patient = &model.Patient{ID: uuid.New(), UserID: patientUser.ID, BirthDate: birth}

	for _, u := range []*model.User{&adminUser, &doctorUser, &patientUser} {
		if err := db.Create(u).Error; err != nil {
			zapLog.Fatal("create user", zap.String("email", u.Email), zap.Error(err))
		}
		zapLog.Info("user created", zap.String("email", u.Email), zap.String("role", string(u.Role)))
	}

	consumedOct := time.Date(2024, 10, 15, 0, 0, 0, 0, time.UTC)
	consumedSep := time.Date(2024, 9, 20, 0, 0, 0, 0, time.UTC)

	prescription := func(code string, status model.PrescriptionStatus, notes string, consumedAt *time.Time, items ...model.PrescriptionItem) model.Prescription {
		p := model.Prescription{
			ID:         uuid.New(),
			Code:       code,
			Status:     status,
			Notes:      notes,
			AuthorID:   doctorUser.Doctor.ID,
			PatientID:  patientUser.Patient.ID,
			ConsumedAt: consumedAt,
		}
		for i := range items {
			items[i].ID = uuid.New()
			items[i].PrescriptionID = p.ID
		}
		p.Items = items
		return p
	}

	seedData := []model.Prescription{
		prescription("RX-2024-001", model.StatusPending, "Tomar con alimentos", nil,
			model.PrescriptionItem{Name: "Paracetamol 500mg", Dosage: "1 tableta cada 8 horas", Quantity: 30, Instructions: "Tomar después de las comidas"},
			model.PrescriptionItem{Name: "Ibuprofeno 400mg", Dosage: "1 tableta cada 12 horas", Quantity: 20, Instructions: "Solo en caso de dolor"},
		),
		prescription("RX-2024-002", model.StatusConsumed, "Completado el tratamiento", &consumedOct,
			model.PrescriptionItem{Name: "Amoxicilina 500mg", Dosage: "1 cápsula cada 8 horas", Quantity: 21, Instructions: "Completar todo el tratamiento de 7 días"},
		),
		prescription("RX-2024-003", model.StatusPending, "Control en 15 días", nil,
			model.PrescriptionItem{Name: "Omeprazol 20mg", Dosage: "1 cápsula en ayunas", Quantity: 30, Instructions: "Tomar 30 minutos antes del desayuno"},
		),
		prescription("RX-2024-004", model.StatusConsumed, "Tratamiento completado satisfactoriamente", &consumedSep,
			model.PrescriptionItem{Name: "Loratadina 10mg", Dosage: "1 tableta al día", Quantity: 10, Instructions: "Tomar por la noche"},
		),
		prescription("RX-2024-005", model.StatusPending, "Tratamiento para hipertensión", nil,
			model.PrescriptionItem{Name: "Enalapril 10mg", Dosage: "1 tableta al día", Quantity: 30, Instructions: "Tomar por la mañana"},
			model.PrescriptionItem{Name: "Aspirina 100mg", Dosage: "1 tableta al día", Quantity: 30, Instructions: "Tomar con el desayuno"},
		),
	}

	for _, p := range seedData {
		if err := db.Create(&p).Error; err != nil {
			zapLog.Fatal("create prescription", zap.String("code", p.Code), zap.Error(err))
		}
		zapLog.Info("prescription created",
			zap.String("code", p.Code), zap.String("status", string(p.Status)))
	}

	zapLog.Info("seed complete",
		zap.Int("users", 3), zap.Int("prescriptions", len(seedData)))
}
