package ports

import (
	"context"

	"github.com/BinLe1988/youcreator.ai-sub001/internal/domain"
)

// CapabilityProvider invokes one external generation capability (text,
// image, music, analysis, optimization or publish). An error return covers
// timeout, transport failure and backend-reported failure alike; callers
// bound every invocation with a context deadline.
type CapabilityProvider interface {
	Invoke(ctx context.Context, config map[string]any, inputs map[string]any) (map[string]any, error)
}

// EventPublisher receives execution lifecycle events. Publishing is best
// effort; a failed publish never affects the execution itself.
type EventPublisher interface {
	Publish(event domain.Event) error
}
