package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

type PrescriptionStatus string

const (
	StatusPending  PrescriptionStatus = "pending"
	StatusConsumed PrescriptionStatus = "consumed"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Name         string    `gorm:"not null" json:"name"`
	Role         Role      `gorm:"not null" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Doctor  *Doctor  `gorm:"foreignKey:UserID" json:"doctor,omitempty"`
	Patient *Patient `gorm:"foreignKey:UserID" json:"patient,omitempty"`
}

type Doctor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	Specialty string    `gorm:"not null" json:"specialty"`
}

type Patient struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	BirthDate time.Time `json:"birthDate"`
}

type Prescription struct {
	ID         uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	Code       string             `gorm:"uniqueIndex;not null" json:"code"`
	Status     PrescriptionStatus `gorm:"not null;default:pending" json:"status"`
	Notes      string             `json:"notes,omitempty"`
	AuthorID   uuid.UUID          `gorm:"type:uuid;not null;index" json:"authorId"`
	PatientID  uuid.UUID          `gorm:"type:uuid;not null;index" json:"patientId"`
	ConsumedAt *time.Time         `json:"consumedAt,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`

	Items   []PrescriptionItem `gorm:"foreignKey:PrescriptionID" json:"items"`
	Author  *Doctor            `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Patient *Patient           `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

type PrescriptionItem struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PrescriptionID uuid.UUID `gorm:"type:uuid;not null;index" json:"prescriptionId"`
	Name           string    `gorm:"not null" json:"name"`
	Dosage         string    `json:"dosage,omitempty"`
	Quantity       int       `json:"quantity,omitempty"`
	Instructions   string    `json:"instructions,omitempty"`
}

// TokenPair is what the token issuer hands back after login/refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	UserID       uuid.UUID
}

// AuthUser is the identity context resolved by the authentication
// gate. Downstream code receives this struct and never re-derives
// identity from raw token claims.
type AuthUser struct {
	ID      uuid.UUID `json:"id"`
	Email   string    `json:"email"`
	Name    string    `json:"name"`
	Role    Role      `json:"role"`
	Doctor  *Doctor   `json:"doctor,omitempty"`
	Patient *Patient  `json:"patient,omitempty"`
}

// PageMeta is the pagination envelope shared by every listing.
type PageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

func NewPageMeta(total int64, page, limit int) PageMeta {
	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}
	return PageMeta{Total: total, Page: page, Limit: limit, TotalPages: pages}
}
