package handlers

import (
	"github.com/google/uuid"

	"github.com/BruksfildServices01/meeting-rooms/internal/audit"
	"github.com/BruksfildServices01/meeting-rooms/internal/domain/access"
)

// writeAudit records a mutation done directly by a handler.
func writeAudit(
	d *audit.Dispatcher,
	actor access.Actor,
	action string,
	entity string,
	entityID uuid.UUID,
	meta any,
) {
	userID := actor.UserID
	d.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   action,
		Entity:   entity,
		EntityID: &entityID,
		Metadata: meta,
	})
}
