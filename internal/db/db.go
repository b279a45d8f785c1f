package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BruksfildServices01/meeting-rooms/internal/config"
	"github.com/BruksfildServices01/meeting-rooms/internal/models"
)

func NewDB(cfg *config.Config, log *zap.Logger) *gorm.DB {
	db, err := Open(cfg.DBUrl)
	if err != nil {
		log.Fatal("failed to connect database", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB", zap.Error(err))
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db); err != nil {
		log.Fatal("failed to migrate", zap.Error(err))
	}

	return db
}

func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt: true,
		Logger:      gormlogger.Default.LogMode(gormlogger.Warn),
	})
}

// Migrate creates the schema and the constraints AutoMigrate cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Room{}, "Features", &models.RoomFeature{}); err != nil {
		return fmt.Errorf("room features join table: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Feature{},
		&models.Room{},
		&models.RecurringBooking{},
		&models.Meeting{},
		&models.Invitee{},
		&models.Note{},
		&models.ActionItem{},
		&models.Attachment{},
		&models.Notification{},
		&models.AuditLog{},
	); err != nil {
		return err
	}

	for _, stmt := range constraints {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// Two live bookings of one room never overlap. Half-open ranges let a meeting
// start exactly when the previous one ends.
var constraints = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,
	`DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'meetings_room_no_overlap') THEN
		ALTER TABLE meetings ADD CONSTRAINT meetings_room_no_overlap
			EXCLUDE USING gist (
				room_id WITH =,
				tstzrange(start_time, end_time, '[)') WITH &&
			) WHERE (status <> 'Cancelled' AND room_id IS NOT NULL);
	END IF;
END $$`,
	`DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'meetings_time_order') THEN
		ALTER TABLE meetings ADD CONSTRAINT meetings_time_order CHECK (start_time < end_time);
	END IF;
END $$`,
}
