package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/meeting-rooms/internal/domain/meeting"
	"github.com/BruksfildServices01/meeting-rooms/internal/httperr"
	"github.com/BruksfildServices01/meeting-rooms/internal/models"
)

type MeetingGormRepository struct {
	db *gorm.DB
}

func NewMeetingGormRepository(db *gorm.DB) *MeetingGormRepository {
	return &MeetingGormRepository{db: db}
}

// notFound turns gorm's missing-row error into the domain error of the entity.
func notFound(err error, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}

// bookingErr maps the room overlap constraint to ErrRoomBooked.
func bookingErr(err error) error {
	if httperr.IsExclusionConflict(err) {
		return domain.ErrRoomBooked
	}
	return err
}

// --------------------------------------------------
// Lookups
// --------------------------------------------------

func (r *MeetingGormRepository) GetUser(
	ctx context.Context,
	id uuid.UUID,
) (*models.User, error) {

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	return &user, nil
}

func (r *MeetingGormRepository) GetRoom(
	ctx context.Context,
	id uuid.UUID,
) (*models.Room, error) {

	var room models.Room
	if err := r.db.WithContext(ctx).First(&room, "id = ?", id).Error; err != nil {
		return nil, notFound(err, domain.ErrRoomNotFound)
	}
	return &room, nil
}

// --------------------------------------------------
// Bookings
// --------------------------------------------------

func (r *MeetingGormRepository) ListRoomBookings(
	ctx context.Context,
	roomID uuid.UUID,
	start time.Time,
	end time.Time,
) ([]models.Meeting, error) {

	var meetings []models.Meeting
	if err := r.db.WithContext(ctx).
		Where(
			"room_id = ? AND status <> ? AND start_time < ? AND end_time > ?",
			roomID,
			string(domain.StatusCancelled),
			end,
			start,
		).
		Find(&meetings).Error; err != nil {
		return nil, err
	}
	return meetings, nil
}

// WithRoomLock takes SELECT ... FOR UPDATE on the room row. Other writers to
// the same room wait on the row until this transaction ends.
func (r *MeetingGormRepository) WithRoomLock(
	ctx context.Context,
	roomID *uuid.UUID,
	fn func(tx domain.Repository) error,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if roomID != nil {
			var room models.Room
			if err := tx.
				Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&room, "id = ?", *roomID).Error; err != nil {
				return notFound(err, domain.ErrRoomNotFound)
			}
		}
		return fn(&MeetingGormRepository{db: tx})
	})
}

// --------------------------------------------------
// Meeting
// --------------------------------------------------

func (r *MeetingGormRepository) withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Room").
		Preload("Room.Features").
		Preload("Invitees", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Preload("Notes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Preload("ActionItems", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Preload("ActionItems.Attachments", func(db *gorm.DB) *gorm.DB { return db.Order("uploaded_at, id") }).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB { return db.Order("uploaded_at, id") })
}

func (r *MeetingGormRepository) GetMeeting(
	ctx context.Context,
	id uuid.UUID,
) (*models.Meeting, error) {

	var m models.Meeting
	if err := r.withChildren(r.db.WithContext(ctx)).
		First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, domain.ErrMeetingNotFound)
	}
	return &m, nil
}

func (r *MeetingGormRepository) ListMeetings(
	ctx context.Context,
	f domain.ListFilter,
) ([]models.Meeting, error) {

	q := r.withChildren(r.db.WithContext(ctx)).Model(&models.Meeting{})

	if f.VisibleTo != nil {
		accepted := r.db.
			Model(&models.Invitee{}).
			Select("meeting_id").
			Where(
				"user_id = ? AND status = ? AND attendance = ?",
				*f.VisibleTo,
				string(domain.InviteAnswered),
				string(domain.AttendanceAccepted),
			)
		q = q.Where("organizer_id = ? OR id IN (?)", *f.VisibleTo, accepted)
	}
	if f.RoomID != nil {
		q = q.Where("room_id = ?", *f.RoomID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("start_time >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("start_time < ?", *f.To)
	}

	var meetings []models.Meeting
	if err := q.Order("start_time").Find(&meetings).Error; err != nil {
		return nil, err
	}
	return meetings, nil
}

func (r *MeetingGormRepository) CreateMeeting(
	ctx context.Context,
	m *models.Meeting,
) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error
	return bookingErr(err)
}

func (r *MeetingGormRepository) CreateRecurring(
	ctx context.Context,
	rb *models.RecurringBooking,
	meetings []models.Meeting,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(rb).Error; err != nil {
			return err
		}
		if len(meetings) == 0 {
			return nil
		}
		err := tx.Omit(clause.Associations).CreateInBatches(&meetings, 100).Error
		return bookingErr(err)
	})
}

func (r *MeetingGormRepository) UpdateMeeting(
	ctx context.Context,
	m *models.Meeting,
) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Save(m).Error
	return bookingErr(err)
}

// DeleteMeeting relies on ON DELETE CASCADE for invitees, notes, action
// items and attachments.
func (r *MeetingGormRepository) DeleteMeeting(
	ctx context.Context,
	id uuid.UUID,
) error {
	res := r.db.WithContext(ctx).Delete(&models.Meeting{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrMeetingNotFound
	}
	return nil
}

// --------------------------------------------------
// Invitees
// --------------------------------------------------

func (r *MeetingGormRepository) CreateInvitee(
	ctx context.Context,
	inv *models.Invitee,
) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(inv).Error
	if httperr.IsUniqueViolation(err) {
		return domain.ErrAlreadyInvited
	}
	return err
}

func (r *MeetingGormRepository) UpdateInvitee(
	ctx context.Context,
	inv *models.Invitee,
) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(inv).Error
}

func (r *MeetingGormRepository) DeleteInvitee(
	ctx context.Context,
	id uuid.UUID,
) error {
	return r.db.WithContext(ctx).Delete(&models.Invitee{}, "id = ?", id).Error
}

// --------------------------------------------------
// Notes
// --------------------------------------------------

func (r *MeetingGormRepository) CreateNote(
	ctx context.Context,
	n *models.Note,
) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *MeetingGormRepository) UpdateNote(
	ctx context.Context,
	n *models.Note,
) error {
	return r.db.WithContext(ctx).Save(n).Error
}

func (r *MeetingGormRepository) DeleteNote(
	ctx context.Context,
	id uuid.UUID,
) error {
	return r.db.WithContext(ctx).Delete(&models.Note{}, "id = ?", id).Error
}

// --------------------------------------------------
// Action items
// --------------------------------------------------

func (r *MeetingGormRepository) GetActionItem(
	ctx context.Context,
	id uuid.UUID,
) (*models.ActionItem, error) {

	var item models.ActionItem
	if err := r.db.WithContext(ctx).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB { return db.Order("uploaded_at, id") }).
		First(&item, "id = ?", id).Error; err != nil {
		return nil, notFound(err, domain.ErrActionItemNotFound)
	}
	return &item, nil
}

func (r *MeetingGormRepository) CreateActionItem(
	ctx context.Context,
	item *models.ActionItem,
) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

func (r *MeetingGormRepository) UpdateActionItem(
	ctx context.Context,
	item *models.ActionItem,
) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(item).Error
}

func (r *MeetingGormRepository) DeleteActionItem(
	ctx context.Context,
	id uuid.UUID,
) error {
	return r.db.WithContext(ctx).Delete(&models.ActionItem{}, "id = ?", id).Error
}

// --------------------------------------------------
// Attachments
// --------------------------------------------------

func (r *MeetingGormRepository) CreateAttachments(
	ctx context.Context,
	atts []models.Attachment,
) error {
	if len(atts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&atts).Error
}

func (r *MeetingGormRepository) DeleteAttachment(
	ctx context.Context,
	id uuid.UUID,
) error {
	return r.db.WithContext(ctx).Delete(&models.Attachment{}, "id = ?", id).Error
}

func (r *MeetingGormRepository) ReplaceActionItemAttachments(
	ctx context.Context,
	itemID uuid.UUID,
	kind string,
	atts []models.Attachment,
) ([]models.Attachment, error) {

	var removed []models.Attachment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.ActionItem
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&item, "id = ?", itemID).Error; err != nil {
			return notFound(err, domain.ErrActionItemNotFound)
		}

		if err := tx.
			Where("action_item_id = ? AND kind = ?", itemID, kind).
			Find(&removed).Error; err != nil {
			return err
		}

		if len(removed) > 0 {
			if err := tx.
				Where("action_item_id = ? AND kind = ?", itemID, kind).
				Delete(&models.Attachment{}).Error; err != nil {
				return err
			}
		}

		if len(atts) == 0 {
			return nil
		}
		return tx.Create(&atts).Error
	})
	if err != nil {
		return nil, err
	}

	return removed, nil
}

var _ domain.Repository = (*MeetingGormRepository)(nil)
