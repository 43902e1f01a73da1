package recipe

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/domain/medication"
	"github.com/clinic/clinic/internal/platform/validate"
)

const minTextLen = 3

// MedicationLister supplies the stock a recipe can prescribe from.
// *medication.Service satisfies it.
type MedicationLister interface {
	ListMedications(ctx context.Context) ([]*medication.Medication, error)
}

type Service struct {
	recipes Repository
	meds    MedicationLister
	logger  zerolog.Logger
}

func NewService(recipes Repository, meds MedicationLister, logger zerolog.Logger) *Service {
	return &Service{recipes: recipes, meds: meds, logger: logger.With().Str("service", "recipe").Logger()}
}

func (s *Service) ListRecipes(ctx context.Context) ([]*Recipe, error) {
	return s.recipes.List(ctx)
}

func (s *Service) CreateRecipe(ctx context.Context, r *Recipe) error {
	v := validate.New()
	v.Check(validate.MinLen(r.Observations, minTextLen), "observations", "Observations must be at least 3 characters long.")
	v.Check(validate.MinLen(r.Diagnostic, minTextLen), "diagnostic", "Diagnostic must be at least 3 characters long.")
	v.Check(r.Weight >= 0, "weight", "Weight must be a non-negative number.")
	v.Check(r.Temperature >= 0, "temperature", "Temperature must be a non-negative number.")
	v.Check(r.Quantity >= 0, "quantity", "Quantity must be a non-negative integer.")
	if r.AppointmentID != nil {
		v.Check(*r.AppointmentID >= 1, "appointment_id", "Appointment id must be greater than 0.")
	}
	if err := v.Err(); err != nil {
		return err
	}
	if err := s.recipes.Create(ctx, r); err != nil {
		return err
	}
	ev := s.logger.Info().Int64("recipe_id", r.ID)
	if r.AppointmentID != nil {
		ev = ev.Int64("appointment_id", *r.AppointmentID)
	}
	ev.Msg("recipe created")
	return nil
}

func (s *Service) AppointmentSummary(ctx context.Context, appointmentID int64) (*AppointmentSummary, error) {
	return s.recipes.AppointmentSummary(ctx, appointmentID)
}

// MedicationOptions lists every medication labelled "name unit distributor".
func (s *Service) MedicationOptions(ctx context.Context) ([]MedicationOption, error) {
	meds, err := s.meds.ListMedications(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]MedicationOption, 0, len(meds))
	for _, m := range meds {
		out = append(out, MedicationOption{ID: m.ID, Name: m.Label()})
	}
	return out, nil
}
