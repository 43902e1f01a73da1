package appointment

// DateLayout is the wire format of Appointment.Date, e.g. "12 Mar 2024 10:30".
const DateLayout = "02 Jan 2006 15:04"

type Appointment struct {
	ID        int64  `json:"_id"`
	Date      string `json:"date"`
	Reason    string `json:"reason"`
	Status    string `json:"status"`
	Patient   string `json:"patient"`
	Doctor    string `json:"doctor"`
	PatientID int64  `json:"patient_id"`
	DoctorID  int64  `json:"doctor_id"`
	RecipeID  *int64 `json:"recipe_id"`
}

// Option is an entry of the patient or doctor picker.
type Option struct {
	ID   int64  `json:"_id"`
	Name string `json:"name"`
}
