package doctor

type Doctor struct {
	ID          int64       `json:"_id"`
	Name        string      `json:"name"`
	License     string      `json:"license"`
	DateOfBirth string      `json:"date_of_birth,omitempty"`
	PhoneNumber string      `json:"phone_number"`
	Email       string      `json:"email"`
	Specialties []Specialty `json:"specialties"`
}

type Specialty struct {
	Specialty       string   `json:"specialty"`
	ConsultationFee float64  `json:"consultation_fee"`
	Services        []string `json:"services,omitempty"`
}

// ContactUpdate carries the fields that can change after registration.
// Specialties and date of birth are kept as stored.
type ContactUpdate struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	License     string `json:"license"`
}
