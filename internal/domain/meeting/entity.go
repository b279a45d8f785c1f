package meeting

import (
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/meeting-rooms/internal/models"
)

// ===============================
// Lookups
// ===============================

func IsOrganizer(m *models.Meeting, userID uuid.UUID) bool {
	return m.OrganizerID != nil && *m.OrganizerID == userID
}

func IsAccepted(inv *models.Invitee) bool {
	return Attendance(inv.Attendance) == AttendanceAccepted && InviteStatus(inv.Status) == InviteAnswered
}

func IsAcceptedInvitee(m *models.Meeting, userID uuid.UUID) bool {
	for i := range m.Invitees {
		if m.Invitees[i].UserID == userID && IsAccepted(&m.Invitees[i]) {
			return true
		}
	}
	return false
}

func AcceptedCount(m *models.Meeting) int {
	n := 0
	for i := range m.Invitees {
		if IsAccepted(&m.Invitees[i]) {
			n++
		}
	}
	return n
}

func FindInvitee(m *models.Meeting, id uuid.UUID) *models.Invitee {
	for i := range m.Invitees {
		if m.Invitees[i].ID == id {
			return &m.Invitees[i]
		}
	}
	return nil
}

func InviteeForUser(m *models.Meeting, userID uuid.UUID) *models.Invitee {
	for i := range m.Invitees {
		if m.Invitees[i].UserID == userID {
			return &m.Invitees[i]
		}
	}
	return nil
}

func FindNote(m *models.Meeting, id uuid.UUID) *models.Note {
	for i := range m.Notes {
		if m.Notes[i].ID == id {
			return &m.Notes[i]
		}
	}
	return nil
}

func FindActionItem(m *models.Meeting, id uuid.UUID) *models.ActionItem {
	for i := range m.ActionItems {
		if m.ActionItems[i].ID == id {
			return &m.ActionItems[i]
		}
	}
	return nil
}

func FindAttachment(m *models.Meeting, id uuid.UUID) *models.Attachment {
	for i := range m.Attachments {
		if m.Attachments[i].ID == id {
			return &m.Attachments[i]
		}
	}
	return nil
}

// ===============================
// Domain Actions
// ===============================

func Cancel(m *models.Meeting, now time.Time) error {
	if err := CanCancel(Status(m.Status)); err != nil {
		return err
	}
	m.Status = string(StatusCancelled)
	m.UpdatedAt = now
	return nil
}

func Complete(m *models.Meeting, now time.Time) error {
	if err := CanComplete(Status(m.Status)); err != nil {
		return err
	}
	m.Status = string(StatusCompleted)
	m.UpdatedAt = now
	return nil
}

// HasRoomFor reports whether one more invitee may be accepted. Un-roomed and
// cancelled meetings are never full.
func HasRoomFor(m *models.Meeting) bool {
	if m.Room == nil || Status(m.Status) == StatusCancelled {
		return true
	}
	return AcceptedCount(m) < m.Room.Capacity
}

// Respond moves an invite from Pending to Answered. It happens once.
func Respond(m *models.Meeting, inv *models.Invitee, accept bool, now time.Time) error {
	if InviteStatus(inv.Status) != InvitePending {
		return ErrAlreadyAnswered
	}

	if accept {
		if !HasRoomFor(m) {
			return ErrRoomFull
		}
		inv.Attendance = string(AttendanceAccepted)
	} else {
		inv.Attendance = string(AttendanceDeclined)
	}

	inv.Status = string(InviteAnswered)
	inv.UpdatedAt = now
	return nil
}

// CanAssign checks that assignee may own an action item of m.
func CanAssign(m *models.Meeting, assignee uuid.UUID) error {
	if IsOrganizer(m, assignee) || IsAcceptedInvitee(m, assignee) {
		return nil
	}
	return ErrInvalidAssignee
}

// ToggleStatus flips Pending and Submitted. Any previous verdict is cleared.
func ToggleStatus(item *models.ActionItem, now time.Time) {
	if ItemStatus(item.Status) == ItemSubmitted {
		item.Status = string(ItemPending)
	} else {
		item.Status = string(ItemSubmitted)
	}
	item.Judgment = string(JudgmentUnjudged)
	item.UpdatedAt = now
}

func CanJudge(item *models.ActionItem) error {
	if ItemStatus(item.Status) != ItemSubmitted {
		return ErrNotSubmitted
	}
	return nil
}

func Judge(item *models.ActionItem, verdict Judgment, now time.Time) error {
	if err := CanJudge(item); err != nil {
		return err
	}
	item.Judgment = string(verdict)
	item.UpdatedAt = now
	return nil
}
