package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/meeting-rooms/internal/domain/meeting"
	"github.com/BruksfildServices01/meeting-rooms/internal/models"
	"github.com/BruksfildServices01/meeting-rooms/internal/testhelper"
)

var ctx = context.Background()

type seed struct {
	repo      *MeetingGormRepository
	organizer models.User
	guest     models.User
	room      models.Room
}

func setup(t *testing.T) seed {
	t.Helper()
	gdb := testhelper.SetupTestDB(t)

	s := seed{
		repo:      NewMeetingGormRepository(gdb),
		organizer: user(t, gdb),
		guest:     user(t, gdb),
		room:      models.Room{ID: uuid.New(), Name: "Room " + uuid.NewString()[:8], Capacity: 4},
	}
	require.NoError(t, gdb.Create(&s.room).Error)
	return s
}

func user(t *testing.T, gdb *gorm.DB) models.User {
	t.Helper()
	u := models.User{
		ID:           uuid.New(),
		FirstName:    "Test",
		LastName:     "User",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Role:         "Employee",
	}
	require.NoError(t, gdb.Create(&u).Error)
	return u
}

func slot(base time.Time, fromH, toH int) (time.Time, time.Time) {
	return base.Add(time.Duration(fromH) * time.Hour), base.Add(time.Duration(toH) * time.Hour)
}

func (s seed) meeting(start, end time.Time) *models.Meeting {
	return &models.Meeting{
		ID:          uuid.New(),
		RoomID:      &s.room.ID,
		OrganizerID: &s.organizer.ID,
		Title:       "Sync",
		StartTime:   start,
		EndTime:     end,
		Status:      string(domain.StatusScheduled),
	}
}

func TestExclusionConstraint_RejectsOverlap(t *testing.T) {
	s := setup(t)
	base := time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.repo.CreateMeeting(ctx, s.meeting(slot(base, 9, 10))))

	err := s.repo.CreateMeeting(ctx, s.meeting(slot(base, 9, 11)))
	assert.ErrorIs(t, err, domain.ErrRoomBooked)

	assert.NoError(t, s.repo.CreateMeeting(ctx, s.meeting(slot(base, 10, 11))), "touching ranges do not overlap")

	cancelled := s.meeting(slot(base, 12, 13))
	cancelled.Status = string(domain.StatusCancelled)
	require.NoError(t, s.repo.CreateMeeting(ctx, cancelled))
	assert.NoError(t, s.repo.CreateMeeting(ctx, s.meeting(slot(base, 12, 13))), "cancelled bookings free the slot")
}

func TestWithRoomLock_ConcurrentCreatesBookOnce(t *testing.T) {
	s := setup(t)
	start, end := slot(time.Date(2030, 2, 4, 0, 0, 0, 0, time.UTC), 9, 10)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.repo.WithRoomLock(ctx, &s.room.ID, func(tx domain.Repository) error {
				w := domain.Window{Start: start, End: end}
				booked, err := domain.IsBooked(ctx, tx, &s.room.ID, uuid.Nil, w)
				if err != nil {
					return err
				}
				if booked {
					return domain.ErrRoomBooked
				}
				return tx.CreateMeeting(ctx, s.meeting(start, end))
			})
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
}

func TestWithRoomLock_MissingRoomAndRollback(t *testing.T) {
	s := setup(t)

	missing := uuid.New()
	err := s.repo.WithRoomLock(ctx, &missing, func(domain.Repository) error { return nil })
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	m := s.meeting(slot(time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC), 9, 10))
	err = s.repo.WithRoomLock(ctx, &s.room.ID, func(tx domain.Repository) error {
		if err := tx.CreateMeeting(ctx, m); err != nil {
			return err
		}
		return domain.ErrRoomBooked
	})
	assert.ErrorIs(t, err, domain.ErrRoomBooked)

	_, err = s.repo.GetMeeting(ctx, m.ID)
	assert.ErrorIs(t, err, domain.ErrMeetingNotFound)
}

func TestInvitees_UniquePerMeeting(t *testing.T) {
	s := setup(t)
	m := s.meeting(slot(time.Date(2030, 4, 1, 0, 0, 0, 0, time.UTC), 9, 10))
	require.NoError(t, s.repo.CreateMeeting(ctx, m))

	inv := func() *models.Invitee {
		return &models.Invitee{
			ID: uuid.New(), MeetingID: m.ID, UserID: s.guest.ID,
			Status: string(domain.InvitePending), Attendance: string(domain.AttendanceDeclined),
		}
	}
	require.NoError(t, s.repo.CreateInvitee(ctx, inv()))
	assert.ErrorIs(t, s.repo.CreateInvitee(ctx, inv()), domain.ErrAlreadyInvited)
}

func TestListMeetings_Visibility(t *testing.T) {
	s := setup(t)
	base := time.Date(2030, 5, 6, 0, 0, 0, 0, time.UTC)

	accepted := s.meeting(slot(base, 9, 10))
	pending := s.meeting(slot(base, 11, 12))
	require.NoError(t, s.repo.CreateMeeting(ctx, accepted))
	require.NoError(t, s.repo.CreateMeeting(ctx, pending))

	require.NoError(t, s.repo.CreateInvitee(ctx, &models.Invitee{
		ID: uuid.New(), MeetingID: accepted.ID, UserID: s.guest.ID,
		Status: string(domain.InviteAnswered), Attendance: string(domain.AttendanceAccepted),
	}))
	require.NoError(t, s.repo.CreateInvitee(ctx, &models.Invitee{
		ID: uuid.New(), MeetingID: pending.ID, UserID: s.guest.ID,
		Status: string(domain.InvitePending), Attendance: string(domain.AttendanceDeclined),
	}))

	list, err := s.repo.ListMeetings(ctx, domain.ListFilter{VisibleTo: &s.guest.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, accepted.ID, list[0].ID)
	assert.Len(t, list[0].Invitees, 1)

	list, err = s.repo.ListMeetings(ctx, domain.ListFilter{VisibleTo: &s.organizer.ID, RoomID: &s.room.ID})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestReplaceActionItemAttachments(t *testing.T) {
	s := setup(t)
	m := s.meeting(slot(time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC), 9, 10))
	require.NoError(t, s.repo.CreateMeeting(ctx, m))

	item := &models.ActionItem{
		ID: uuid.New(), MeetingID: m.ID, AssignedToID: s.organizer.ID,
		Description: "Do it", Type: "Task", Deadline: m.EndTime,
		Status: string(domain.ItemPending), Judgment: string(domain.JudgmentUnjudged),
	}
	require.NoError(t, s.repo.CreateActionItem(ctx, item))

	att := func(kind string) models.Attachment {
		id := uuid.New()
		return models.Attachment{
			ID: id, ActionItemID: &item.ID, Kind: kind,
			StorageKey: "action-items/" + item.ID.String() + "/" + kind + "/" + id.String() + ".txt",
			FileName:   id.String() + ".txt", UploadedByID: s.organizer.ID, UploadedAt: time.Now(),
		}
	}

	first := []models.Attachment{att(models.AttachmentAssignment), att(models.AttachmentAssignment)}
	removed, err := s.repo.ReplaceActionItemAttachments(ctx, item.ID, models.AttachmentAssignment, first)
	require.NoError(t, err)
	assert.Empty(t, removed)
	require.NoError(t, s.repo.CreateAttachments(ctx, []models.Attachment{att(models.AttachmentSubmission)}))

	removed, err = s.repo.ReplaceActionItemAttachments(ctx, item.ID, models.AttachmentAssignment,
		[]models.Attachment{att(models.AttachmentAssignment)})
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	got, err := s.repo.GetActionItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Len(t, got.AttachmentsOf(models.AttachmentAssignment), 1)
	assert.Len(t, got.AttachmentsOf(models.AttachmentSubmission), 1)

	_, err = s.repo.ReplaceActionItemAttachments(ctx, uuid.New(), models.AttachmentAssignment, nil)
	assert.ErrorIs(t, err, domain.ErrActionItemNotFound)
}

func TestDeleteMeeting_Cascades(t *testing.T) {
	s := setup(t)
	m := s.meeting(slot(time.Date(2030, 7, 1, 0, 0, 0, 0, time.UTC), 9, 10))
	require.NoError(t, s.repo.CreateMeeting(ctx, m))
	require.NoError(t, s.repo.CreateNote(ctx, &models.Note{
		ID: uuid.New(), MeetingID: m.ID, CreatedByID: s.organizer.ID, Content: "n",
	}))

	require.NoError(t, s.repo.DeleteMeeting(ctx, m.ID))
	assert.ErrorIs(t, s.repo.DeleteMeeting(ctx, m.ID), domain.ErrMeetingNotFound)
}
