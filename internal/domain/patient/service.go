package patient

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/clinic/clinic/internal/nlquery"
	"github.com/clinic/clinic/internal/platform/docstore"
	"github.com/clinic/clinic/internal/platform/validate"
)

const (
	birthDateLayout = "2006-01-02"
	unknownDoctor   = "Unknown Doctor"

	// DefaultMaxQueryLength bounds natural-language queries when the caller
	// configures no limit.
	DefaultMaxQueryLength = 500
)

var (
	// ErrRefineQuery is returned when nothing in a query was recognized.
	ErrRefineQuery = validate.BadRequest("No valid filters found for the query. Please refine your input.")
	// ErrNoMatches is returned when a recognized query selects no patient.
	ErrNoMatches = errors.New("no patients found matching the query")
	// ErrEmptyQuery is returned for a missing or blank query.
	ErrEmptyQuery = validate.BadRequest("Query cannot be empty")
)

var bloodPressurePattern = regexp.MustCompile(`^\d+(/\d+)*$`)

type Service struct {
	patients   Repository
	translator *nlquery.Translator
	maxQuery   int
	logger     zerolog.Logger
	now        func() time.Time
}

// NewService wires the patient service. maxQueryLen <= 0 selects
// DefaultMaxQueryLength.
func NewService(patients Repository, translator *nlquery.Translator, maxQueryLen int, logger zerolog.Logger) *Service {
	if maxQueryLen <= 0 {
		maxQueryLen = DefaultMaxQueryLength
	}
	return &Service{
		patients:   patients,
		translator: translator,
		maxQuery:   maxQueryLen,
		logger:     logger.With().Str("service", "patient").Logger(),
		now:        time.Now,
	}
}

func (s *Service) ListPatients(ctx context.Context) ([]*Patient, error) {
	return s.patients.List(ctx)
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	return s.patients.Get(ctx, id)
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if err := s.validatePatient(p); err != nil {
		return err
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return err
	}
	s.logger.Info().Int64("patient_id", p.ID).Msg("patient created")
	return nil
}

func (s *Service) UpdatePatient(ctx context.Context, id int64, p *Patient) error {
	if err := s.validatePatient(p); err != nil {
		return err
	}
	p.ID = id
	return s.patients.Update(ctx, p)
}

// DeletePatient removes the patient.
func (s *Service) DeletePatient(ctx context.Context, id int64) error {
	if err := s.patients.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("patient_id", id).Msg("patient deleted")
	return nil
}

// CompletedAppointments lists the patient's completed appointments with the
// doctor's name filled in, "Unknown Doctor" when the doctor no longer exists.
func (s *Service) CompletedAppointments(ctx context.Context, patientID int64) ([]*Appointment, error) {
	appts, err := s.patients.CompletedAppointments(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if len(appts) == 0 {
		return appts, nil
	}

	seen := make(map[int64]bool, len(appts))
	var ids []int64
	for _, a := range appts {
		if !seen[a.DoctorID] {
			seen[a.DoctorID] = true
			ids = append(ids, a.DoctorID)
		}
	}
	names, err := s.patients.DoctorNames(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, a := range appts {
		a.DoctorName = names[a.DoctorID]
		if a.DoctorName == "" {
			a.DoctorName = unknownDoctor
		}
	}
	return appts, nil
}

// QueryPatients translates a natural-language query and runs it.
func (s *Service) QueryPatients(ctx context.Context, text string) (*QueryResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyQuery
	}
	if utf8.RuneCountInString(text) > s.maxQuery {
		return nil, validate.BadRequest(fmt.Sprintf("Query must not exceed %d characters", s.maxQuery))
	}

	parsed := s.translator.Translate(text)
	if parsed.Empty() {
		s.logger.Info().Str("query", text).Msg("no filters recognized in query")
		return nil, ErrRefineQuery
	}

	filter, err := interpretFilter(parsed)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("query", text).Stringer("filter", parsed).Msg("patient query translated")

	results, err := s.patients.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNoMatches
	}
	return &QueryResult{Filter: filter, Results: results}, nil
}

var (
	numericFields = map[string]bool{"weight": true, "height": true, "heartrate": true, "sugarBlood": true}
	dateFields    = map[string]bool{"birthDate": true}
)

// interpretFilter checks a translated filter against the patient schema and
// turns it into a store filter. Values are brought into the shape patients
// are stored in: dates become YYYY-MM-DD, numbers compared against text
// fields become strings, genders are title-cased.
func interpretFilter(f nlquery.Filter) (docstore.Filter, error) {
	verr := validate.New()
	out := make(docstore.Filter, f.Len())

	for _, c := range f.Clauses() {
		v, ok := interpretValue(c, verr)
		if !ok {
			continue
		}
		if c.Op == nlquery.OpEQ {
			out[c.Field] = v
		} else {
			out[c.Field] = map[string]any{c.Op.StoreOperator(): v}
		}
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func interpretValue(c nlquery.Clause, verr *validate.Errors) (any, bool) {
	switch {
	case numericFields[c.Field]:
		if _, isText := c.Value.(string); isText {
			verr.Add(c.Field, fmt.Sprintf("%s must be compared with a number.", c.Field))
			return nil, false
		}
		return c.Value, true

	case dateFields[c.Field]:
		if s, isText := c.Value.(string); isText {
			if t, err := time.Parse(nlquery.DateLayout, s); err == nil {
				return t.Format(birthDateLayout), true
			}
		}
		return textValue(c.Value), true

	case c.Field == "bloodType":
		if c.Op != nlquery.OpEQ {
			verr.Add(c.Field, "Blood type can only be compared for equality.")
			return nil, false
		}
		bt := textValue(c.Value)
		if !validate.OneOf(bt, BloodTypes...) {
			verr.Add(c.Field, "Blood type must be one of: A+, A-, B+, B-, AB+, AB-, O+, O-.")
			return nil, false
		}
		return bt, true

	case c.Field == "gender":
		g := cases.Title(language.English).String(strings.ToLower(textValue(c.Value)))
		if !validate.OneOf(g, Genders...) {
			verr.Add(c.Field, "Gender must be 'Male', 'Female', or 'Other'.")
			return nil, false
		}
		return g, true
	}
	return textValue(c.Value), true
}

func textValue(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case int:
		return strconv.Itoa(n)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func (s *Service) validatePatient(p *Patient) error {
	v := validate.New()

	v.Check(validate.NotBlank(p.Name), "name", "Name must be a non-empty string.")
	v.Check(validate.MaxLen(p.Name, 50), "name", "Name must not exceed 50 characters.")
	v.Check(validate.NotBlank(p.LastName), "lastName", "Last name must be a non-empty string.")
	v.Check(validate.MaxLen(p.LastName, 50), "lastName", "Last name must not exceed 50 characters.")

	v.Check(p.Weight > 0, "weight", "Weight must be a positive number.")
	v.Check(p.Weight <= 500, "weight", "Weight seems unrealistic (over 500 kg).")
	v.Check(p.Height > 0, "height", "Height must be a positive number.")
	v.Check(p.Height <= 300, "height", "Height seems unrealistic (over 300 cm).")
	v.Check(p.Heartrate >= 30 && p.Heartrate <= 200, "heartrate", "Heart rate must be between 30 and 200 bpm.")
	v.Check(bloodPressurePattern.MatchString(p.BloodPressure), "bloodPressure", "Blood pressure must be in the format '120/80'.")
	v.Check(p.SugarBlood >= 0, "sugarBlood", "Blood sugar level must be a non-negative number.")

	if valid, past := validate.PastDate(p.BirthDate, birthDateLayout, s.now()); !valid {
		v.Add("birthDate", "Birth date must be in the format 'YYYY-MM-DD'.")
	} else if !past {
		v.Add("birthDate", "Birth date cannot be in the future.")
	}

	v.Check(validate.MinLen(p.Phone, 5), "phone", "Phone number must be at least 5 characters.")
	v.Check(validate.NotBlank(p.Email), "email", "Email must be provided.")
	v.Check(validate.MaxLen(p.Email, 100), "email", "Email must not exceed 100 characters.")
	v.Check(p.Email == "" || validate.Email(p.Email), "email", "Email must be a valid address.")
	v.Check(validate.OneOf(p.BloodType, BloodTypes...), "bloodType", "Blood type must be one of: A+, A-, B+, B-, AB+, AB-, O+, O-.")
	v.Check(validate.OneOf(p.Gender, Genders...), "gender", "Gender must be 'Male', 'Female', or 'Other'.")
	v.Check(validate.NotBlank(p.EmergencyContact), "emergencyContact", "Emergency contact name must be provided.")
	v.Check(validate.MinLen(p.EmergencyPhone, 5), "emergencyPhone", "Emergency phone number must be at least 5 characters.")
	v.Check(validate.NotBlank(p.SocialSecurity), "socialSecurity", "Social security number must be provided.")
	v.Check(validate.MaxLen(p.SocialSecurity, 20), "socialSecurity", "Social security number must not exceed 20 characters.")

	return v.Err()
}
