package domain

import "fmt"

// Direction is a sort direction for store subscriptions.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Orderable document fields, named as the store exposes them.
const (
	FieldDepartureDate = "departureDate"
	FieldCreatedAt     = "createdAt"
	FieldFlightNumber  = "flightNumber"
)

// Order selects how a subscription snapshot is sorted.
type Order struct {
	Field     string
	Direction Direction
}

// Validate rejects unknown fields and directions.
func (o Order) Validate() error {
	switch o.Field {
	case FieldDepartureDate, FieldCreatedAt, FieldFlightNumber:
	default:
		return fmt.Errorf("%w: unknown order field %q", ErrValidation, o.Field)
	}
	if o.Direction != Asc && o.Direction != Desc {
		return fmt.Errorf("%w: unknown order direction %q", ErrValidation, o.Direction)
	}
	return nil
}
