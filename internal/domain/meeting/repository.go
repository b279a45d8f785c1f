package meeting

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/meeting-rooms/internal/models"
)

type ListFilter struct {
	// VisibleTo limits the result to meetings organized by, or accepted by,
	// this user. Nil lists everything.
	VisibleTo *uuid.UUID

	RoomID *uuid.UUID
	Status string
	From   *time.Time
	To     *time.Time
}

type Repository interface {
	BookingReader

	// -------- Lookups --------
	GetUser(
		ctx context.Context,
		id uuid.UUID,
	) (*models.User, error)

	GetRoom(
		ctx context.Context,
		id uuid.UUID,
	) (*models.Room, error)

	// -------- Meeting --------

	// GetMeeting loads the meeting with its room and every child collection.
	GetMeeting(
		ctx context.Context,
		id uuid.UUID,
	) (*models.Meeting, error)

	ListMeetings(
		ctx context.Context,
		f ListFilter,
	) ([]models.Meeting, error)

	// WithRoomLock runs fn in one transaction holding an exclusive lock on
	// the room row, so check-then-write on bookings is serialized per room.
	// A nil room still runs fn in a transaction.
	WithRoomLock(
		ctx context.Context,
		roomID *uuid.UUID,
		fn func(tx Repository) error,
	) error

	CreateMeeting(
		ctx context.Context,
		m *models.Meeting,
	) error

	// CreateRecurring inserts the booking and all its occurrences atomically.
	CreateRecurring(
		ctx context.Context,
		rb *models.RecurringBooking,
		meetings []models.Meeting,
	) error

	UpdateMeeting(
		ctx context.Context,
		m *models.Meeting,
	) error

	DeleteMeeting(
		ctx context.Context,
		id uuid.UUID,
	) error

	// -------- Invitees --------
	CreateInvitee(
		ctx context.Context,
		inv *models.Invitee,
	) error

	UpdateInvitee(
		ctx context.Context,
		inv *models.Invitee,
	) error

	DeleteInvitee(
		ctx context.Context,
		id uuid.UUID,
	) error

	// -------- Notes --------
	CreateNote(
		ctx context.Context,
		n *models.Note,
	) error

	UpdateNote(
		ctx context.Context,
		n *models.Note,
	) error

	DeleteNote(
		ctx context.Context,
		id uuid.UUID,
	) error

	// -------- Action items --------
	GetActionItem(
		ctx context.Context,
		id uuid.UUID,
	) (*models.ActionItem, error)

	CreateActionItem(
		ctx context.Context,
		item *models.ActionItem,
	) error

	UpdateActionItem(
		ctx context.Context,
		item *models.ActionItem,
	) error

	DeleteActionItem(
		ctx context.Context,
		id uuid.UUID,
	) error

	// -------- Attachments --------
	CreateAttachments(
		ctx context.Context,
		atts []models.Attachment,
	) error

	DeleteAttachment(
		ctx context.Context,
		id uuid.UUID,
	) error

	// ReplaceActionItemAttachments swaps every attachment of one side of the
	// item for atts in a single transaction and returns the removed rows.
	ReplaceActionItemAttachments(
		ctx context.Context,
		itemID uuid.UUID,
		kind string,
		atts []models.Attachment,
	) ([]models.Attachment, error)
}
