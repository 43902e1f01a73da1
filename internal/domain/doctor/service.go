package doctor

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/validate"
)

const dateOfBirthLayout = "2006-01-02"

var (
	namePattern    = regexp.MustCompile(`^[a-zA-Z ]+$`)
	licensePattern = regexp.MustCompile(`^[k0-9]{10}$`)
	phonePattern   = regexp.MustCompile(`^[0-9]{10}$`)
)

type Service struct {
	doctors Repository
	logger  zerolog.Logger
	now     func() time.Time
}

func NewService(doctors Repository, logger zerolog.Logger) *Service {
	return &Service{
		doctors: doctors,
		logger:  logger.With().Str("service", "doctor").Logger(),
		now:     time.Now,
	}
}

func (s *Service) ListDoctors(ctx context.Context) ([]*Doctor, error) {
	return s.doctors.List(ctx)
}

func (s *Service) GetDoctor(ctx context.Context, id int64) (*Doctor, error) {
	return s.doctors.Get(ctx, id)
}

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	v := validate.New()
	checkContact(v, d.Name, d.PhoneNumber, d.Email, d.License)
	if d.DateOfBirth != "" {
		valid, past := validate.PastDate(d.DateOfBirth, dateOfBirthLayout, s.now())
		v.Check(valid, "date_of_birth", "The date of birth must be in YYYY-MM-DD format.")
		v.Check(!valid || past, "date_of_birth", "The date of birth cannot be in the future.")
	}
	checkSpecialties(v, d.Specialties)
	if err := v.Err(); err != nil {
		return err
	}
	if err := s.doctors.Create(ctx, d); err != nil {
		return err
	}
	s.logger.Info().Int64("doctor_id", d.ID).Msg("doctor created")
	return nil
}

// UpdateContact changes name, phone, email and license of doctor id and
// returns the stored result.
func (s *Service) UpdateContact(ctx context.Context, id int64, u *ContactUpdate) (*Doctor, error) {
	v := validate.New()
	checkContact(v, u.Name, u.PhoneNumber, u.Email, u.License)
	if err := v.Err(); err != nil {
		return nil, err
	}
	if _, err := s.doctors.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.doctors.UpdateContact(ctx, id, u); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("doctor_id", id).Msg("doctor updated")
	return s.doctors.Get(ctx, id)
}

func (s *Service) DeleteDoctor(ctx context.Context, id int64) (*Doctor, error) {
	d, err := s.doctors.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.doctors.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("doctor_id", id).Msg("doctor deleted")
	return d, nil
}

func checkContact(v *validate.Errors, name, phone, email, license string) {
	v.Check(len(strings.Fields(name)) >= 2, "name", "The name must include both first and last name.")
	v.Check(namePattern.MatchString(name), "name", "The name must only contain alphabetic characters and spaces.")
	v.Check(licensePattern.MatchString(license), "license", "The license number must be exactly 10 digits.")
	v.Check(phonePattern.MatchString(phone), "phone_number", "The phone number must be exactly 10 digits.")
	v.Check(validate.Email(email), "email", "The email must be a valid email address.")
}

func checkSpecialties(v *validate.Errors, specs []Specialty) {
	if len(specs) == 0 {
		v.Add("specialties", "At least one specialty must be provided.")
		return
	}
	for _, sp := range specs {
		if !validate.NotBlank(sp.Specialty) {
			v.Add("specialties", "Each specialty must have a valid name.")
		}
		if sp.ConsultationFee <= 0 {
			v.Add("specialties", "The consultation fee for each specialty must be greater than 0.")
		}
	}
}
