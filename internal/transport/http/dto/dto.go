package dto

type LoginDTO struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshDTO struct {
	// The refresh credential travels in the body, never in the
	// Authorization header. The two flows stay on separate channels.
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type PrescriptionItemDTO struct {
	Name         string `json:"name" validate:"required"`
	Dosage       string `json:"dosage"`
	Quantity     int    `json:"quantity" validate:"gte=0"`
	Instructions string `json:"instructions"`
}

type CreatePrescriptionDTO struct {
	PatientID string                `json:"patientId" validate:"required,uuid4"`
	Notes     string                `json:"notes"`
	Items     []PrescriptionItemDTO `json:"items" validate:"required,min=1,dive"`
}

type ListPrescriptionsQuery struct {
	Mine   bool   `form:"mine"`
	Status string `form:"status"`
	From   string `form:"from"`
	To     string `form:"to"`
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=10"`
	Order  string `form:"order,default=desc"`
}

type PageQuery struct {
	Page  int `form:"page,default=1"`
	Limit int `form:"limit,default=10"`
}

type ListUsersQuery struct {
	Role  string `form:"role"`
	Page  int    `form:"page,default=1"`
	Limit int    `form:"limit,default=10"`
}

type ListDoctorsQuery struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=10"`
	Search    string `form:"search"`
	Specialty string `form:"specialty"`
}

type ListPatientsQuery struct {
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=10"`
	Search string `form:"search"`
}

type MetricsQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}
