package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-console/internal/crud"
	"marketplace-console/internal/forms"
	"marketplace-console/internal/logging"
	"marketplace-console/internal/models"
	"marketplace-console/internal/store"
)

// ErrInvalidRange is returned when a booking ends on or before its start day
var ErrInvalidRange = errors.New("booking must end after it starts")

// StatusForm accepts only the three status fields
var StatusForm = forms.Schema{
	Name: "booking_status",
	Fields: []forms.Field{
		{Key: models.FieldBookingStatus, Kind: forms.Enum, Options: models.BookingStatuses},
		{Key: models.FieldPaymentStatus, Kind: forms.Enum, Options: models.PaymentStatuses},
		{Key: models.FieldDepositStatus, Kind: forms.Enum, Options: models.DepositStatuses},
	},
}

// ComputeTotals returns the whole days between start and end and days × dailyRate.
// Times are truncated to calendar days.
func ComputeTotals(start, end time.Time, dailyRate int64) (int, int64, error) {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	days := int(e.Sub(s).Hours() / 24)
	if days <= 0 {
		return 0, 0, ErrInvalidRange
	}
	return days, int64(days) * dailyRate, nil
}

// Service handles agent-side booking edits
type Service struct {
	editor     *crud.Editor[models.RentalBooking]
	properties store.Collection[models.Property]
	history    store.Collection[models.BookingStatusChange]
}

// NewService creates a booking service
func NewService(editor *crud.Editor[models.RentalBooking], properties store.Collection[models.Property], history store.Collection[models.BookingStatusChange]) *Service {
	return &Service{editor: editor, properties: properties, history: history}
}

// List returns bookings matching q
func (s *Service) List(ctx context.Context, q store.Query) ([]models.RentalBooking, error) {
	return s.editor.List(ctx, q)
}

// Get returns one booking
func (s *Service) Get(ctx context.Context, id string) (*models.RentalBooking, error) {
	return s.editor.Get(ctx, id)
}

// UpdateStatus overwrites the status fields present in raw. Any value in the enum is accepted
// regardless of the current one. A history row is written for each field that changed.
func (s *Service) UpdateStatus(ctx context.Context, id string, raw map[string]string, actor string) ([]models.BookingStatusChange, error) {
	values, err := StatusForm.Bind(raw, true)
	if err != nil {
		return nil, err
	}
	for k, v := range values {
		if v == nil {
			// an empty status is not a valid overwrite
			return nil, &forms.ValidationError{Form: StatusForm.Name, Fields: []forms.FieldError{{Field: k, Message: "is required"}}}
		}
	}

	current, err := s.editor.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := DetectChanges(current, values)
	if len(changes) == 0 {
		return changes, nil
	}
	if err := s.editor.UpdateValues(ctx, id, values); err != nil {
		return nil, err
	}

	for i := range changes {
		changes[i].ChangedBy = actor
		changes[i].ChangedAt = time.Now()
		if _, err := s.history.Insert(ctx, map[string]interface{}{
			"booking_id": changes[i].BookingID,
			"field":      changes[i].Field,
			"old_value":  changes[i].OldValue,
			"new_value":  changes[i].NewValue,
			"changed_by": changes[i].ChangedBy,
			"changed_at": changes[i].ChangedAt,
		}); err != nil {
			logging.Logger.Warnf("Bookings: Failed to record %s change on %s: %v", changes[i].Field, id, err)
		}
	}
	logging.Logger.Infof("Bookings: %s updated %d status field(s) on %s", actor, len(changes), id)
	return changes, nil
}

// DetectChanges compares the booking with the new status values
func DetectChanges(b *models.RentalBooking, values forms.Values) []models.BookingStatusChange {
	current := map[string]string{
		models.FieldBookingStatus: string(b.BookingStatus),
		models.FieldPaymentStatus: string(b.PaymentStatus),
		models.FieldDepositStatus: string(b.DepositStatus),
	}

	changes := []models.BookingStatusChange{}
	for _, field := range []string{models.FieldBookingStatus, models.FieldPaymentStatus, models.FieldDepositStatus} {
		v, ok := values[field]
		if !ok {
			continue
		}
		next, _ := v.(string)
		if next == current[field] {
			continue
		}
		changes = append(changes, models.BookingStatusChange{
			BookingID: b.ID,
			Field:     field,
			OldValue:  current[field],
			NewValue:  next,
		})
	}
	return changes
}

// Edit applies an agent edit. When the dates move and no amount is given,
// total days and amount are recomputed from the listing price as a daily rate.
func (s *Service) Edit(ctx context.Context, id string, raw map[string]string) error {
	values, err := forms.BookingForm.Bind(raw, true)
	if err != nil {
		return err
	}

	_, startSet := values["start_date"]
	_, endSet := values["end_date"]
	if startSet || endSet {
		current, err := s.editor.Get(ctx, id)
		if err != nil {
			return err
		}
		start, end := current.StartDate, current.EndDate
		if v, ok := values["start_date"].(time.Time); ok {
			start = v
		}
		if v, ok := values["end_date"].(time.Time); ok {
			end = v
		}

		rate, err := s.dailyRate(ctx, current.PropertyID)
		if err != nil {
			return err
		}
		days, amount, err := ComputeTotals(start, end, rate)
		if err != nil {
			return &forms.ValidationError{Form: forms.BookingForm.Name, Fields: []forms.FieldError{{Field: "end_date", Message: "must be after start_date"}}}
		}
		values["total_days"] = days
		if _, given := values["total_amount"]; !given {
			values["total_amount"] = amount
		}
	}

	return s.editor.UpdateValues(ctx, id, values)
}

func (s *Service) dailyRate(ctx context.Context, propertyID string) (int64, error) {
	p, err := s.properties.Get(ctx, propertyID)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load property %s: %w", propertyID, err)
	}
	if p.Price == nil {
		return 0, nil
	}
	return *p.Price, nil
}

// History returns the status changes of a booking, newest first
func (s *Service) History(ctx context.Context, bookingID string) ([]models.BookingStatusChange, error) {
	return s.history.Select(ctx, store.Query{
		Filters: map[string]interface{}{"booking_id": bookingID},
		Order:   "changed_at desc",
	})
}
