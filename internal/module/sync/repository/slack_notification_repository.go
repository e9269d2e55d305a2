package repository

import (
	"github.com/rs/zerolog"

	"github.com/yearn/ySync/internal/database"
	"github.com/yearn/ySync/internal/database/schema"
)

type SlackNotificationRepository interface {
	Enqueue(notification schema.SlackNotifications) error
	PendingNotifications(limit int) ([]schema.SlackNotifications, error)
	MarkProcessed(ids []uint64) error
}

type slackNotificationRepository struct {
	db     *database.Database
	logger zerolog.Logger
}

func NewSlackNotificationRepository(db *database.Database, logger zerolog.Logger) SlackNotificationRepository {
	return &slackNotificationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *slackNotificationRepository) Enqueue(notification schema.SlackNotifications) error {
	return r.db.DB.Create(&notification).Error
}

func (r *slackNotificationRepository) PendingNotifications(limit int) ([]schema.SlackNotifications, error) {
	var notifications []schema.SlackNotifications
	err := r.db.DB.Where("processed = ?", false).Order("created_at ASC").Limit(limit).Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *slackNotificationRepository) MarkProcessed(ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.DB.Model(&schema.SlackNotifications{}).Where("id IN ?", ids).Update("processed", true).Error
}
