package medication

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/validate"
)

type Service struct {
	meds   Repository
	logger zerolog.Logger
}

func NewService(meds Repository, logger zerolog.Logger) *Service {
	return &Service{meds: meds, logger: logger.With().Str("service", "medication").Logger()}
}

func (s *Service) ListMedications(ctx context.Context) ([]*Medication, error) {
	return s.meds.List(ctx)
}

func (s *Service) GetMedication(ctx context.Context, id int64) (*Medication, error) {
	return s.meds.Get(ctx, id)
}

func (s *Service) CreateMedication(ctx context.Context, m *Medication) error {
	if err := validateMedication(m); err != nil {
		return err
	}
	if err := s.meds.Create(ctx, m); err != nil {
		return err
	}
	s.logger.Info().Int64("medication_id", m.ID).Str("name", m.Name).Msg("medication created")
	return nil
}

// UpdateMedication replaces every field of medication id with m.
func (s *Service) UpdateMedication(ctx context.Context, id int64, m *Medication) error {
	if err := validateMedication(m); err != nil {
		return err
	}
	if _, err := s.meds.Get(ctx, id); err != nil {
		return err
	}
	m.ID = id
	return s.meds.Update(ctx, m)
}

// UpdateExistence sets the stock count alone and returns the updated
// medication.
func (s *Service) UpdateExistence(ctx context.Context, id int64, existence int) (*Medication, error) {
	if existence < 0 {
		v := validate.New()
		v.Add("existence", "Existence must be a non-negative integer.")
		return nil, v.Err()
	}
	m, err := s.meds.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.meds.SetExistence(ctx, id, existence); err != nil {
		return nil, err
	}
	m.Existence = existence
	s.logger.Info().Int64("medication_id", id).Int("existence", existence).Msg("stock updated")
	return m, nil
}

// DeleteMedication removes medication id and returns what was stored.
func (s *Service) DeleteMedication(ctx context.Context, id int64) (*Medication, error) {
	m, err := s.meds.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.meds.Delete(ctx, id); err != nil {
		return nil, err
	}
	return m, nil
}

func validateMedication(m *Medication) error {
	v := validate.New()
	v.Check(validate.NotBlank(m.Name), "name", "Name must be a non-empty string.")
	v.Check(validate.NotBlank(m.Unit), "unit", "Unit must be a non-empty string.")
	v.Check(m.Existence >= 0, "existence", "Existence must be a non-negative integer.")
	v.Check(m.Price >= 0, "price", "Price must be a non-negative number.")
	v.Check(validate.NotBlank(m.Administration), "administration", "Administration must be a non-empty string.")
	v.Check(validate.NotBlank(m.Distributor), "distributor", "Distributor must be a non-empty string.")
	v.Check(validate.NotBlank(m.Image), "image", "Image must be a base-64-image string.")
	return v.Err()
}
