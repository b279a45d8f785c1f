package meeting

import "github.com/BruksfildServices01/meeting-rooms/internal/httperr"

var (
	ErrMeetingNotFound    = httperr.NotFoundErr("meeting_not_found", "Meeting not found.")
	ErrRoomNotFound       = httperr.NotFoundErr("room_not_found", "Room not found.")
	ErrUserNotFound       = httperr.NotFoundErr("user_not_found", "User not found.")
	ErrInviteNotFound     = httperr.NotFoundErr("invite_not_found", "Invite not found.")
	ErrNoteNotFound       = httperr.NotFoundErr("note_not_found", "Note not found.")
	ErrActionItemNotFound = httperr.NotFoundErr("action_item_not_found", "Action item not found.")
	ErrAttachmentNotFound = httperr.NotFoundErr("attachment_not_found", "Attachment not found.")
	ErrFileNotFound       = httperr.NotFoundErr("file_not_found", "File not found.")

	ErrForbidden = httperr.ForbiddenErr("forbidden", "You are not allowed to perform this action.")

	ErrInvalidTimeRange    = httperr.InvalidErr("invalid_time_range", "StartTime must be before EndTime.")
	ErrInvalidTitle        = httperr.InvalidErr("invalid_title", "Title is required and must be at most 200 characters.")
	ErrInvalidStatus       = httperr.InvalidErr("invalid_status", "Status must be Scheduled, Completed or Cancelled.")
	ErrInvalidState        = httperr.InvalidErr("invalid_state", "Only scheduled meetings can be cancelled or completed.")
	ErrAlreadyInvited      = httperr.InvalidErr("already_invited", "User is already invited to this meeting.")
	ErrInviteOrganizer     = httperr.InvalidErr("cannot_invite_organizer", "The organizer cannot be invited to their own meeting.")
	ErrRoomFull            = httperr.InvalidErr("room_full", "Room is at full capacity.")
	ErrRoomTooSmall        = httperr.InvalidErr("room_too_small", "Room capacity is below the number of accepted invitees.")
	ErrAlreadyAnswered     = httperr.InvalidErr("invite_already_answered", "Invite was already answered.")
	ErrEmptyNote           = httperr.InvalidErr("invalid_note", "Note content is required.")
	ErrInvalidItemType     = httperr.InvalidErr("invalid_action_item_type", "Type must be Decision, Task or Issue.")
	ErrInvalidActionItem   = httperr.InvalidErr("invalid_action_item", "Description and deadline are required.")
	ErrInvalidAssignee     = httperr.InvalidErr("invalid_assignee", "Assignee must be the organizer or an accepted invitee.")
	ErrNotSubmitted        = httperr.InvalidErr("action_item_not_submitted", "Action item must be submitted before it can be judged.")
	ErrNoFiles             = httperr.InvalidErr("no_files", "At least one file is required.")
	ErrTooManyFiles        = httperr.InvalidErr("too_many_files", "You can upload a maximum of 5 files.")
	ErrFileTooLarge        = httperr.InvalidErr("file_too_large", "Each file must be at most 5 MB.")
	ErrUnsupportedFileType = httperr.InvalidErr("unsupported_file_type", "File type is not allowed.")
	ErrInvalidFileName     = httperr.InvalidErr("invalid_file_name", "File name is invalid.")
	ErrInvalidKind         = httperr.InvalidErr("invalid_attachment_kind", "Attachment kind must be assignment or submission.")

	ErrRoomBooked       = httperr.ConflictErr("room_already_booked", "Room is already booked for the requested time.")
	ErrNoFreeOccurrence = httperr.ConflictErr("no_free_occurrence", "Every occurrence conflicts with an existing booking.")
	ErrAttachmentsBusy  = httperr.ConflictErr("attachments_busy", "Attachments are being updated, try again.")
)
