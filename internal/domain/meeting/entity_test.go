package meeting

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/meeting-rooms/internal/models"
)

func pendingInvite(userID uuid.UUID) models.Invitee {
	return models.Invitee{
		ID:         uuid.New(),
		UserID:     userID,
		Status:     string(InvitePending),
		Attendance: string(AttendanceDeclined),
	}
}

func acceptedInvite(userID uuid.UUID) models.Invitee {
	inv := pendingInvite(userID)
	inv.Status = string(InviteAnswered)
	inv.Attendance = string(AttendanceAccepted)
	return inv
}

func TestRespond_SingleTransition(t *testing.T) {
	now := time.Now()
	m := &models.Meeting{Status: string(StatusScheduled)}
	inv := pendingInvite(uuid.New())

	require.NoError(t, Respond(m, &inv, true, now))
	assert.Equal(t, string(InviteAnswered), inv.Status)
	assert.Equal(t, string(AttendanceAccepted), inv.Attendance)

	assert.ErrorIs(t, Respond(m, &inv, true, now), ErrAlreadyAnswered)
	assert.ErrorIs(t, Respond(m, &inv, false, now), ErrAlreadyAnswered)
	assert.Equal(t, string(InviteAnswered), inv.Status)
	assert.Equal(t, string(AttendanceAccepted), inv.Attendance)
}

func TestRespond_Decline(t *testing.T) {
	m := &models.Meeting{Status: string(StatusScheduled)}
	inv := pendingInvite(uuid.New())

	require.NoError(t, Respond(m, &inv, false, time.Now()))
	assert.Equal(t, string(InviteAnswered), inv.Status)
	assert.Equal(t, string(AttendanceDeclined), inv.Attendance)
}

func TestRespond_AcceptRespectsCapacity(t *testing.T) {
	m := &models.Meeting{
		Status: string(StatusScheduled),
		Room:   &models.Room{Capacity: 1},
		Invitees: []models.Invitee{
			acceptedInvite(uuid.New()),
			pendingInvite(uuid.New()),
		},
	}

	err := Respond(m, &m.Invitees[1], true, time.Now())
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Equal(t, string(InvitePending), m.Invitees[1].Status)

	require.NoError(t, Respond(m, &m.Invitees[1], false, time.Now()))
}

func TestHasRoomFor(t *testing.T) {
	full := &models.Meeting{
		Status:   string(StatusScheduled),
		Room:     &models.Room{Capacity: 2},
		Invitees: []models.Invitee{acceptedInvite(uuid.New()), acceptedInvite(uuid.New()), pendingInvite(uuid.New())},
	}
	assert.False(t, HasRoomFor(full))
	assert.Equal(t, 2, AcceptedCount(full))

	full.Status = string(StatusCancelled)
	assert.True(t, HasRoomFor(full), "cancelled meetings do not count toward capacity")

	virtual := &models.Meeting{Status: string(StatusScheduled), Invitees: full.Invitees}
	assert.True(t, HasRoomFor(virtual))
}

func TestCancelAndComplete(t *testing.T) {
	now := time.Now()

	m := &models.Meeting{Status: string(StatusScheduled)}
	require.NoError(t, Cancel(m, now))
	assert.Equal(t, string(StatusCancelled), m.Status)
	assert.ErrorIs(t, Cancel(m, now), ErrInvalidState)
	assert.ErrorIs(t, Complete(m, now), ErrInvalidState)

	m2 := &models.Meeting{Status: string(StatusScheduled)}
	require.NoError(t, Complete(m2, now))
	assert.Equal(t, string(StatusCompleted), m2.Status)
}

func TestCanAssign(t *testing.T) {
	organizerID := uuid.New()
	accepted := uuid.New()
	pending := uuid.New()
	m := &models.Meeting{
		OrganizerID: &organizerID,
		Invitees:    []models.Invitee{acceptedInvite(accepted), pendingInvite(pending)},
	}

	assert.NoError(t, CanAssign(m, organizerID))
	assert.NoError(t, CanAssign(m, accepted))
	assert.ErrorIs(t, CanAssign(m, pending), ErrInvalidAssignee)
	assert.ErrorIs(t, CanAssign(m, uuid.New()), ErrInvalidAssignee)
}

func TestToggleStatus(t *testing.T) {
	item := &models.ActionItem{Status: string(ItemPending), Judgment: string(JudgmentUnjudged)}

	ToggleStatus(item, time.Now())
	assert.Equal(t, string(ItemSubmitted), item.Status)

	require.NoError(t, Judge(item, JudgmentAccepted, time.Now()))
	assert.Equal(t, string(JudgmentAccepted), item.Judgment)

	ToggleStatus(item, time.Now())
	assert.Equal(t, string(ItemPending), item.Status)
	assert.Equal(t, string(JudgmentUnjudged), item.Judgment)
}

func TestJudge_RequiresSubmitted(t *testing.T) {
	item := &models.ActionItem{Status: string(ItemPending), Judgment: string(JudgmentUnjudged)}

	assert.ErrorIs(t, Judge(item, JudgmentAccepted, time.Now()), ErrNotSubmitted)
	assert.ErrorIs(t, Judge(item, JudgmentRejected, time.Now()), ErrNotSubmitted)
	assert.Equal(t, string(JudgmentUnjudged), item.Judgment)

	item.Status = string(ItemSubmitted)
	require.NoError(t, Judge(item, JudgmentRejected, time.Now()))
	require.NoError(t, Judge(item, JudgmentRejected, time.Now()))
	assert.Equal(t, string(JudgmentRejected), item.Judgment)
	require.NoError(t, Judge(item, JudgmentAccepted, time.Now()))
	assert.Equal(t, string(JudgmentAccepted), item.Judgment)
}

func TestParseStatusAndType(t *testing.T) {
	s, err := ParseStatus("Completed")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s)

	_, err = ParseStatus("Postponed")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = ParseItemType("Chore")
	assert.ErrorIs(t, err, ErrInvalidItemType)
}
