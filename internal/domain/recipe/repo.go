package recipe

import "context"

type Repository interface {
	List(ctx context.Context) ([]*Recipe, error)
	// Create stores r. When r names an appointment, the appointment's
	// recipe_id is set in the same transaction.
	Create(ctx context.Context, r *Recipe) error
	AppointmentSummary(ctx context.Context, appointmentID int64) (*AppointmentSummary, error)
}
