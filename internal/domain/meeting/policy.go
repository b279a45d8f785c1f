package meeting

import (
	"github.com/BruksfildServices01/meeting-rooms/internal/domain/access"
	"github.com/BruksfildServices01/meeting-rooms/internal/models"
)

// Capability names a guarded operation on a meeting or one of its children.
type Capability string

const (
	ViewMeeting   Capability = "meeting.view"
	UpdateMeeting Capability = "meeting.update"
	DeleteMeeting Capability = "meeting.delete"

	AddNote  Capability = "note.add"
	EditNote Capability = "note.edit"

	AddActionItem    Capability = "action_item.add"
	UpdateActionItem Capability = "action_item.update"
	DeleteActionItem Capability = "action_item.delete"
	ToggleActionItem Capability = "action_item.toggle"
	JudgeActionItem  Capability = "action_item.judge"

	AddInvitee    Capability = "invitee.add"
	DeleteInvitee Capability = "invitee.delete"
	RespondInvite Capability = "invitee.respond"

	AddMeetingAttachment    Capability = "attachment.meeting.add"
	DeleteMeetingAttachment Capability = "attachment.meeting.delete"
	AddAssignmentAttachment Capability = "attachment.assignment.add"
	AddSubmissionAttachment Capability = "attachment.submission.add"

	ReadMeetingFile    Capability = "file.meeting.read"
	ReadActionItemFile Capability = "file.action_item.read"
)

// Target is the entity an operation acts on. Meeting is always set; the
// child field matching the capability is set when one is involved.
type Target struct {
	Meeting    *models.Meeting
	Note       *models.Note
	ActionItem *models.ActionItem
	Invitee    *models.Invitee
	Attachment *models.Attachment
}

type rule func(access.Actor, Target) bool

var policies = map[Capability]rule{
	ViewMeeting:   anyOf(admin, organizer, acceptedInvitee),
	UpdateMeeting: organizer,
	DeleteMeeting: organizer,

	AddNote:  anyOf(organizer, acceptedInvitee),
	EditNote: anyOf(organizer, noteAuthor),

	AddActionItem:    organizer,
	UpdateActionItem: organizer,
	DeleteActionItem: organizer,
	ToggleActionItem: assignee,
	JudgeActionItem:  organizer,

	AddInvitee:    organizer,
	DeleteInvitee: organizer,
	RespondInvite: invitedUser,

	AddMeetingAttachment:    anyOf(organizer, acceptedInvitee),
	DeleteMeetingAttachment: anyOf(organizer, uploader),
	AddAssignmentAttachment: organizer,
	AddSubmissionAttachment: assignee,

	ReadMeetingFile:    anyOf(organizer, acceptedInvitee),
	ReadActionItemFile: anyOf(organizer, assignee),
}

// Can evaluates the rule for c. Unknown capabilities are denied.
func Can(actor access.Actor, c Capability, t Target) bool {
	r, ok := policies[c]
	if !ok || t.Meeting == nil {
		return false
	}
	return r(actor, t)
}

func Authorize(actor access.Actor, c Capability, t Target) error {
	if !Can(actor, c, t) {
		return ErrForbidden
	}
	return nil
}

func anyOf(rules ...rule) rule {
	return func(a access.Actor, t Target) bool {
		for _, r := range rules {
			if r(a, t) {
				return true
			}
		}
		return false
	}
}

func admin(a access.Actor, _ Target) bool {
	return a.IsAdmin()
}

func organizer(a access.Actor, t Target) bool {
	return IsOrganizer(t.Meeting, a.UserID)
}

func acceptedInvitee(a access.Actor, t Target) bool {
	return IsAcceptedInvitee(t.Meeting, a.UserID)
}

func noteAuthor(a access.Actor, t Target) bool {
	return t.Note != nil && t.Note.CreatedByID == a.UserID
}

func assignee(a access.Actor, t Target) bool {
	return t.ActionItem != nil && t.ActionItem.AssignedToID == a.UserID
}

func invitedUser(a access.Actor, t Target) bool {
	return t.Invitee != nil && t.Invitee.UserID == a.UserID
}

func uploader(a access.Actor, t Target) bool {
	return t.Attachment != nil && t.Attachment.UploadedByID == a.UserID
}
