package medication

// Medication is a stocked drug. Image holds a base64-encoded picture.
type Medication struct {
	ID             int64   `json:"_id"`
	Name           string  `json:"name"`
	Unit           string  `json:"unit"`
	Existence      int     `json:"existence"`
	Price          float64 `json:"price"`
	Administration string  `json:"administration"`
	Distributor    string  `json:"distributor"`
	Image          string  `json:"image"`
}

// Label is the display string recipes show for a medication.
func (m *Medication) Label() string {
	return m.Name + " " + m.Unit + " " + m.Distributor
}
