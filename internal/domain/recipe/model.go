package recipe

// Recipe is the prescription a doctor writes at the end of an appointment.
type Recipe struct {
	ID            int64   `json:"_id"`
	AppointmentID *int64  `json:"appointment_id,omitempty"`
	Patient       string  `json:"patient"`
	Doctor        string  `json:"doctor"`
	Observations  string  `json:"observations"`
	Diagnostic    string  `json:"diagnostic"`
	Weight        float64 `json:"weight"`
	Temperature   float64 `json:"temperature"`
	BloodPressure string  `json:"bloodPressure"`
	Medication    string  `json:"medication"`
	Quantity      int     `json:"quantity"`
}

// AppointmentSummary is what the prescription form prefills from an
// appointment.
type AppointmentSummary struct {
	AppointmentID int64  `json:"appointment_id"`
	PatientID     int64  `json:"patient_id"`
	Patient       string `json:"patient"`
	DoctorID      int64  `json:"doctor_id"`
	Doctor        string `json:"doctor"`
}

// MedicationOption is one entry of the medication picker.
type MedicationOption struct {
	ID   int64  `json:"_id"`
	Name string `json:"name"`
}
