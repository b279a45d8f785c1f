// Package meetingtest provides an in-memory meeting.Repository for tests.
package meetingtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/meeting-rooms/internal/domain/meeting"
	"github.com/BruksfildServices01/meeting-rooms/internal/models"
)

type state struct {
	users       map[uuid.UUID]models.User
	rooms       map[uuid.UUID]models.Room
	meetings    map[uuid.UUID]models.Meeting
	recurring   map[uuid.UUID]models.RecurringBooking
	invitees    map[uuid.UUID]models.Invitee
	notes       map[uuid.UUID]models.Note
	items       map[uuid.UUID]models.ActionItem
	attachments map[uuid.UUID]models.Attachment
	seq         map[uuid.UUID]int
	next        int
}

func newState() state {
	return state{
		users:       map[uuid.UUID]models.User{},
		rooms:       map[uuid.UUID]models.Room{},
		meetings:    map[uuid.UUID]models.Meeting{},
		recurring:   map[uuid.UUID]models.RecurringBooking{},
		invitees:    map[uuid.UUID]models.Invitee{},
		notes:       map[uuid.UUID]models.Note{},
		items:       map[uuid.UUID]models.ActionItem{},
		attachments: map[uuid.UUID]models.Attachment{},
		seq:         map[uuid.UUID]int{},
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.rooms {
		c.rooms[k] = v
	}
	for k, v := range s.meetings {
		c.meetings[k] = v
	}
	for k, v := range s.recurring {
		c.recurring[k] = v
	}
	for k, v := range s.invitees {
		c.invitees[k] = v
	}
	for k, v := range s.notes {
		c.notes[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.attachments {
		c.attachments[k] = v
	}
	for k, v := range s.seq {
		c.seq[k] = v
	}
	c.next = s.next
	return c
}

// Memory keeps rows in maps and hands out copies, so callers never alias
// stored state. WithRoomLock rolls back every write when fn fails.
type Memory struct {
	mu   sync.Mutex
	txMu sync.Mutex
	s    state

	// Failure injection for atomicity tests.
	FailCreateAttachments error
	FailReplace           error
	FailCreateMeeting     error
}

func New() *Memory {
	return &Memory{s: newState()}
}

// -------- Seeding and inspection --------

func (r *Memory) AddUser(u models.User) models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.s.users[u.ID] = u
	return u
}

func (r *Memory) AddRoom(room models.Room) models.Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room.ID == uuid.Nil {
		room.ID = uuid.New()
	}
	r.s.rooms[room.ID] = room
	return room
}

func (r *Memory) MeetingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.s.meetings)
}

func (r *Memory) RecurringCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.s.recurring)
}

func (r *Memory) InviteeCount(meetingID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, inv := range r.s.invitees {
		if inv.MeetingID == meetingID {
			n++
		}
	}
	return n
}

// -------- meeting.Repository --------

func (r *Memory) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, meeting.ErrUserNotFound
	}
	return &u, nil
}

func (r *Memory) GetRoom(_ context.Context, id uuid.UUID) (*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.s.rooms[id]
	if !ok {
		return nil, meeting.ErrRoomNotFound
	}
	return &room, nil
}

func (r *Memory) GetMeeting(_ context.Context, id uuid.UUID) (*models.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.s.meetings[id]
	if !ok {
		return nil, meeting.ErrMeetingNotFound
	}
	full := r.assemble(m)
	return &full, nil
}

func (r *Memory) ListMeetings(_ context.Context, f meeting.ListFilter) ([]models.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Meeting
	for _, m := range r.s.meetings {
		full := r.assemble(m)
		if f.VisibleTo != nil && !meeting.IsOrganizer(&full, *f.VisibleTo) && !meeting.IsAcceptedInvitee(&full, *f.VisibleTo) {
			continue
		}
		if f.RoomID != nil && (m.RoomID == nil || *m.RoomID != *f.RoomID) {
			continue
		}
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		if f.From != nil && m.StartTime.Before(*f.From) {
			continue
		}
		if f.To != nil && !m.StartTime.Before(*f.To) {
			continue
		}
		out = append(out, full)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *Memory) ListRoomBookings(_ context.Context, roomID uuid.UUID, start, end time.Time) ([]models.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Meeting
	for _, m := range r.s.meetings {
		if m.RoomID == nil || *m.RoomID != roomID || m.Status == string(meeting.StatusCancelled) {
			continue
		}
		if m.StartTime.Before(end) && m.EndTime.After(start) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *Memory) WithRoomLock(ctx context.Context, roomID *uuid.UUID, fn func(tx meeting.Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	if roomID != nil {
		if _, err := r.GetRoom(ctx, *roomID); err != nil {
			return err
		}
	}

	r.mu.Lock()
	snapshot := r.s.clone()
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.s = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *Memory) CreateMeeting(_ context.Context, m *models.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailCreateMeeting != nil {
		return r.FailCreateMeeting
	}
	r.putMeeting(*m)
	return nil
}

func (r *Memory) CreateRecurring(_ context.Context, rb *models.RecurringBooking, meetings []models.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailCreateMeeting != nil {
		return r.FailCreateMeeting
	}
	r.s.recurring[rb.ID] = *rb
	for _, m := range meetings {
		r.putMeeting(m)
	}
	return nil
}

func (r *Memory) UpdateMeeting(_ context.Context, m *models.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.s.meetings[m.ID]; !ok {
		return meeting.ErrMeetingNotFound
	}
	r.putMeeting(*m)
	return nil
}

func (r *Memory) DeleteMeeting(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.s.meetings, id)
	for k, v := range r.s.invitees {
		if v.MeetingID == id {
			delete(r.s.invitees, k)
		}
	}
	for k, v := range r.s.notes {
		if v.MeetingID == id {
			delete(r.s.notes, k)
		}
	}
	for k, v := range r.s.items {
		if v.MeetingID == id {
			r.deleteItemLocked(k)
		}
	}
	for k, v := range r.s.attachments {
		if v.MeetingID != nil && *v.MeetingID == id {
			delete(r.s.attachments, k)
		}
	}
	return nil
}

func (r *Memory) CreateInvitee(_ context.Context, inv *models.Invitee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.s.invitees {
		if existing.MeetingID == inv.MeetingID && existing.UserID == inv.UserID {
			return meeting.ErrAlreadyInvited
		}
	}
	r.s.invitees[inv.ID] = *inv
	r.touch(inv.ID)
	return nil
}

func (r *Memory) UpdateInvitee(_ context.Context, inv *models.Invitee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.s.invitees[inv.ID]; !ok {
		return meeting.ErrInviteNotFound
	}
	r.s.invitees[inv.ID] = *inv
	return nil
}

func (r *Memory) DeleteInvitee(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.s.invitees, id)
	return nil
}

func (r *Memory) CreateNote(_ context.Context, n *models.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s.notes[n.ID] = *n
	r.touch(n.ID)
	return nil
}

func (r *Memory) UpdateNote(_ context.Context, n *models.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.s.notes[n.ID]; !ok {
		return meeting.ErrNoteNotFound
	}
	r.s.notes[n.ID] = *n
	return nil
}

func (r *Memory) DeleteNote(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.s.notes, id)
	return nil
}

func (r *Memory) GetActionItem(_ context.Context, id uuid.UUID) (*models.ActionItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.s.items[id]
	if !ok {
		return nil, meeting.ErrActionItemNotFound
	}
	full := r.assembleItem(item)
	return &full, nil
}

func (r *Memory) CreateActionItem(_ context.Context, item *models.ActionItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *item
	stored.Attachments = nil
	r.s.items[item.ID] = stored
	r.touch(item.ID)
	return nil
}

func (r *Memory) UpdateActionItem(_ context.Context, item *models.ActionItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.s.items[item.ID]; !ok {
		return meeting.ErrActionItemNotFound
	}
	stored := *item
	stored.Attachments = nil
	r.s.items[item.ID] = stored
	return nil
}

func (r *Memory) DeleteActionItem(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteItemLocked(id)
	return nil
}

func (r *Memory) CreateAttachments(_ context.Context, atts []models.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailCreateAttachments != nil {
		return r.FailCreateAttachments
	}
	for _, a := range atts {
		r.s.attachments[a.ID] = a
		r.touch(a.ID)
	}
	return nil
}

func (r *Memory) DeleteAttachment(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.s.attachments, id)
	return nil
}

func (r *Memory) ReplaceActionItemAttachments(
	_ context.Context,
	itemID uuid.UUID,
	kind string,
	atts []models.Attachment,
) ([]models.Attachment, error) {

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailReplace != nil {
		return nil, r.FailReplace
	}
	if _, ok := r.s.items[itemID]; !ok {
		return nil, meeting.ErrActionItemNotFound
	}

	var removed []models.Attachment
	for k, a := range r.s.attachments {
		if a.ActionItemID != nil && *a.ActionItemID == itemID && a.Kind == kind {
			removed = append(removed, a)
			delete(r.s.attachments, k)
		}
	}
	for _, a := range atts {
		r.s.attachments[a.ID] = a
		r.touch(a.ID)
	}
	return removed, nil
}

// -------- helpers (mu held) --------

func (r *Memory) touch(id uuid.UUID) {
	if _, ok := r.s.seq[id]; ok {
		return
	}
	r.s.next++
	r.s.seq[id] = r.s.next
}

func (r *Memory) putMeeting(m models.Meeting) {
	m.Room = nil
	m.Invitees = nil
	m.Notes = nil
	m.ActionItems = nil
	m.Attachments = nil
	r.s.meetings[m.ID] = m
	r.touch(m.ID)
}

func (r *Memory) deleteItemLocked(id uuid.UUID) {
	delete(r.s.items, id)
	for k, a := range r.s.attachments {
		if a.ActionItemID != nil && *a.ActionItemID == id {
			delete(r.s.attachments, k)
		}
	}
}

func (r *Memory) byInsertion(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return r.s.seq[ids[i]] < r.s.seq[ids[j]] })
}

func (r *Memory) assemble(m models.Meeting) models.Meeting {
	if m.RoomID != nil {
		if room, ok := r.s.rooms[*m.RoomID]; ok {
			m.Room = &room
		}
	}

	var ids []uuid.UUID
	for id, inv := range r.s.invitees {
		if inv.MeetingID == m.ID {
			ids = append(ids, id)
		}
	}
	r.byInsertion(ids)
	for _, id := range ids {
		m.Invitees = append(m.Invitees, r.s.invitees[id])
	}

	ids = ids[:0]
	for id, n := range r.s.notes {
		if n.MeetingID == m.ID {
			ids = append(ids, id)
		}
	}
	r.byInsertion(ids)
	for _, id := range ids {
		m.Notes = append(m.Notes, r.s.notes[id])
	}

	ids = ids[:0]
	for id, item := range r.s.items {
		if item.MeetingID == m.ID {
			ids = append(ids, id)
		}
	}
	r.byInsertion(ids)
	for _, id := range ids {
		m.ActionItems = append(m.ActionItems, r.assembleItem(r.s.items[id]))
	}

	ids = ids[:0]
	for id, a := range r.s.attachments {
		if a.MeetingID != nil && *a.MeetingID == m.ID {
			ids = append(ids, id)
		}
	}
	r.byInsertion(ids)
	for _, id := range ids {
		m.Attachments = append(m.Attachments, r.s.attachments[id])
	}

	return m
}

func (r *Memory) assembleItem(item models.ActionItem) models.ActionItem {
	var ids []uuid.UUID
	for id, a := range r.s.attachments {
		if a.ActionItemID != nil && *a.ActionItemID == item.ID {
			ids = append(ids, id)
		}
	}
	r.byInsertion(ids)

	item.Attachments = nil
	for _, id := range ids {
		item.Attachments = append(item.Attachments, r.s.attachments[id])
	}
	return item
}

var _ meeting.Repository = (*Memory)(nil)
