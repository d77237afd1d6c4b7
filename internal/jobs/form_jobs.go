package jobs

import (
	"context"
	"errors"

	"clubforms-backend/internal/domain"
	"clubforms-backend/internal/logger"
)

// CloseExpiredEventForms closes the open registration form of every event
// dated before today (UTC). Submissions stay readable after closing.
func (jr *JobRunner) CloseExpiredEventForms() {
	jr.runWithRecovery("CloseExpiredEventForms", func() {
		ctx := context.Background()
		today := jr.now().UTC().Format("2006-01-02")

		events, err := jr.store.Events.ListEndedBefore(ctx, today)
		if err != nil {
			logger.Error("Failed to list past events", "error", err)
			return
		}

		closed := 0
		for _, event := range events {
			owner := domain.Owner{Kind: domain.OwnerKindEvent, ID: event.ID}
			def, err := jr.services.Forms.FieldsFor(ctx, owner)
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			if err != nil {
				logger.Error("Failed to load event form", "eventID", event.ID, "error", err)
				continue
			}
			logger.Debug("Closing form of past event", "eventID", event.ID, "date", event.Date, "formID", def.ID)
			if err := jr.services.Forms.Close(ctx, def.ID); err != nil {
				logger.Error("Failed to close event form", "eventID", event.ID, "formID", def.ID, "error", err)
				continue
			}
			closed++
		}

		logger.Info("Closed expired event forms", "events", len(events), "closed", closed)
	})
}
