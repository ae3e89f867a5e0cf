package pipeline

import (
	"context"

	"hydrovigil/pkg/models"
)

// EventWriter writes exported engine events. WriteEvents must return promptly
// once ctx is done.
type EventWriter interface {
	WriteEvents(ctx context.Context, events []*models.Event) error
	Close() error
}
