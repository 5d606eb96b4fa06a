package service

import (
	"context"

	"github.com/google/uuid"

	"trustledger/internal/events"
	dErrors "trustledger/pkg/domain-errors"
	"trustledger/pkg/requestcontext"
)

// Pause flips the global pause switch on. Only the system owner may call it;
// while paused, every mutating entry point fails with SystemPaused. Reads
// keep working.
func (s *Service) Pause(ctx context.Context) error {
	return s.setPaused(ctx, true, events.TypeSystemPaused)
}

// Unpause flips the switch back off. Deliberately exempt from the pause
// check itself so the system can always be recovered.
func (s *Service) Unpause(ctx context.Context) error {
	return s.setPaused(ctx, false, events.TypeSystemUnpaused)
}

// Paused reports the current switch position.
func (s *Service) Paused() bool {
	return s.guard.isPaused()
}

func (s *Service) setPaused(ctx context.Context, paused bool, eventType events.Type) error {
	release, err := s.guard.enterAdmin(ctx, requestcontext.Caller(ctx))
	if err != nil {
		return err
	}
	defer release()

	if err := s.store.SetPaused(ctx, paused); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist pause flag")
	}
	s.guard.setPaused(paused)

	s.events.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: requestcontext.Now(ctx),
	})
	s.logger.InfoContext(ctx, "pause switch changed",
		"request_id", requestcontext.RequestID(ctx),
		"paused", paused,
	)
	return nil
}
