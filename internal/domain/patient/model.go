package patient

// Patient maps to a document in the "patient" collection.
type Patient struct {
	ID               int64   `json:"_id"`
	Name             string  `json:"name"`
	LastName         string  `json:"lastName"`
	Weight           float64 `json:"weight"`
	Height           float64 `json:"height"`
	Heartrate        int     `json:"heartrate"`
	BloodPressure    string  `json:"bloodPressure"`
	SugarBlood       float64 `json:"sugarBlood"`
	BirthDate        string  `json:"birthDate"`
	Phone            string  `json:"phone"`
	Email            string  `json:"email"`
	BloodType        string  `json:"bloodType"`
	Allergies        string  `json:"allergies,omitempty"`
	Gender           string  `json:"gender"`
	FamilyHistory    string  `json:"familyHistory,omitempty"`
	MedicalHistory   string  `json:"medicalHistory,omitempty"`
	EmergencyContact string  `json:"emergencyContact"`
	EmergencyPhone   string  `json:"emergencyPhone"`
	SocialSecurity   string  `json:"socialSecurity"`
	Avatar           string  `json:"avatar,omitempty"`
}

// Appointment is a completed medical appointment as shown in a patient's
// history, with the attending doctor's name resolved.
type Appointment struct {
	ID         int64  `json:"_id"`
	Date       string `json:"date"`
	Reason     string `json:"reason,omitempty"`
	Status     string `json:"status"`
	Patient    string `json:"patient,omitempty"`
	Doctor     string `json:"doctor,omitempty"`
	PatientID  int64  `json:"patient_id"`
	DoctorID   int64  `json:"doctor_id"`
	RecipeID   *int64 `json:"recipe_id"`
	DoctorName string `json:"doctor_name"`
}

// BloodTypes lists the accepted blood groups.
var BloodTypes = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// Genders lists the accepted gender values.
var Genders = []string{"Male", "Female", "Other"}

// QueryResult is the answer to a natural-language search.
type QueryResult struct {
	Filter  map[string]any `json:"filter"`
	Results []*Patient     `json:"results"`
}
