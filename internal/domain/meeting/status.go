package meeting

// ===============================
// Meeting Status
// ===============================

type Status string

const (
	StatusScheduled Status = "Scheduled"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return Status(s), nil
	}
	return "", ErrInvalidStatus
}

// CanCancel reports whether a meeting in current may be cancelled.
func CanCancel(current Status) error {
	if current != StatusScheduled {
		return ErrInvalidState
	}
	return nil
}

// CanComplete reports whether a meeting in current may be completed.
func CanComplete(current Status) error {
	if current != StatusScheduled {
		return ErrInvalidState
	}
	return nil
}

func InitialStatus() Status {
	return StatusScheduled
}

// ===============================
// Invitee RSVP
// ===============================

type InviteStatus string

const (
	InvitePending  InviteStatus = "Pending"
	InviteAnswered InviteStatus = "Answered"
)

type Attendance string

const (
	AttendanceDeclined Attendance = "Declined"
	AttendanceAccepted Attendance = "Accepted"
)

// ===============================
// Action Items
// ===============================

type ItemStatus string

const (
	ItemPending   ItemStatus = "Pending"
	ItemSubmitted ItemStatus = "Submitted"
)

type Judgment string

const (
	JudgmentUnjudged Judgment = "Unjudged"
	JudgmentAccepted Judgment = "Accepted"
	JudgmentRejected Judgment = "Rejected"
)

type ItemType string

const (
	TypeDecision ItemType = "Decision"
	TypeTask     ItemType = "Task"
	TypeIssue    ItemType = "Issue"
)

func ParseItemType(s string) (ItemType, error) {
	switch ItemType(s) {
	case TypeDecision, TypeTask, TypeIssue:
		return ItemType(s), nil
	}
	return "", ErrInvalidItemType
}
