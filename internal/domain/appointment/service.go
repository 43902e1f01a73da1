package appointment

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/validate"
)

const maxReasonLen = 255

type Service struct {
	appointments Repository
	logger       zerolog.Logger
}

func NewService(appointments Repository, logger zerolog.Logger) *Service {
	return &Service{
		appointments: appointments,
		logger:       logger.With().Str("service", "appointment").Logger(),
	}
}

func (s *Service) ListAppointments(ctx context.Context) ([]*Appointment, error) {
	return s.appointments.List(ctx)
}

func (s *Service) GetAppointment(ctx context.Context, id int64) (*Appointment, error) {
	return s.appointments.Get(ctx, id)
}

// CreateAppointment books a. New appointments never carry a recipe.
func (s *Service) CreateAppointment(ctx context.Context, a *Appointment) error {
	if err := validateAppointment(a); err != nil {
		return err
	}
	a.RecipeID = nil
	if err := s.appointments.Create(ctx, a); err != nil {
		return err
	}
	s.logger.Info().Int64("appointment_id", a.ID).Int64("patient_id", a.PatientID).
		Int64("doctor_id", a.DoctorID).Str("date", a.Date).Msg("appointment booked")
	return nil
}

// UpdateAppointment rewrites appointment id and returns the stored record.
func (s *Service) UpdateAppointment(ctx context.Context, id int64, a *Appointment) (*Appointment, error) {
	if err := validateAppointment(a); err != nil {
		return nil, err
	}
	if _, err := s.appointments.Get(ctx, id); err != nil {
		return nil, err
	}
	a.ID = id
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return s.appointments.Get(ctx, id)
}

func (s *Service) DeleteAppointment(ctx context.Context, id int64) (*Appointment, error) {
	a, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.appointments.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("appointment_id", id).Msg("appointment deleted")
	return a, nil
}

func (s *Service) PatientOptions(ctx context.Context) ([]Option, error) {
	return s.appointments.PatientOptions(ctx)
}

func (s *Service) DoctorOptions(ctx context.Context) ([]Option, error) {
	return s.appointments.DoctorOptions(ctx)
}

func validateAppointment(a *Appointment) error {
	v := validate.New()
	_, err := time.Parse(DateLayout, a.Date)
	v.Check(err == nil, "date", "Date must be in the format 'DD MMM YYYY HH:MM'")
	v.Check(validate.MaxLen(a.Reason, maxReasonLen), "reason", "Reason must not exceed 255 characters.")
	return v.Err()
}
