package support

import (
	"context"
	"strings"
	"time"

	"marketplace-console/internal/crud"
	"marketplace-console/internal/forms"
	"marketplace-console/internal/models"
)

// Service adds the resolve actions on top of the ticket and error log editors.
// Concurrent resolves of one ticket are not serialized; the last write wins.
type Service struct {
	tickets   *crud.Editor[models.CustomerComplaint]
	errorLogs *crud.Editor[models.ErrorLog]
	now       func() time.Time
}

// NewService creates the support service
func NewService(tickets *crud.Editor[models.CustomerComplaint], errorLogs *crud.Editor[models.ErrorLog]) *Service {
	return &Service{tickets: tickets, errorLogs: errorLogs, now: time.Now}
}

// Tickets returns the ticket editor
func (s *Service) Tickets() *crud.Editor[models.CustomerComplaint] {
	return s.tickets
}

// ErrorLogs returns the error log editor
func (s *Service) ErrorLogs() *crud.Editor[models.ErrorLog] {
	return s.errorLogs
}

// ResolveTicket marks a ticket resolved with a resolution note
func (s *Service) ResolveTicket(ctx context.Context, id, resolution, agentID string) error {
	resolution = strings.TrimSpace(resolution)
	if resolution == "" {
		return &forms.ValidationError{Form: forms.TicketForm.Name, Fields: []forms.FieldError{{Field: "resolution", Message: "is required"}}}
	}
	values := forms.Values{
		"status":      string(models.TicketStatusResolved),
		"resolution":  resolution,
		"resolved_at": s.now(),
	}
	if agentID != "" {
		values["assigned_to"] = agentID
	}
	return s.tickets.UpdateValues(ctx, id, values)
}

// ReopenTicket puts a resolved or closed ticket back in progress
func (s *Service) ReopenTicket(ctx context.Context, id string) error {
	return s.tickets.UpdateValues(ctx, id, forms.Values{
		"status":      string(models.TicketStatusInProgress),
		"resolved_at": nil,
	})
}

// ResolveErrorLog marks an error log resolved, starting its retention clock
func (s *Service) ResolveErrorLog(ctx context.Context, id string) error {
	return s.errorLogs.UpdateValues(ctx, id, forms.Values{
		"is_resolved": true,
		"resolved_at": s.now(),
	})
}
