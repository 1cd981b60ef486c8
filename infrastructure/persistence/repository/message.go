package repository

import (
	"context"

	"github.com/banterhq/banter/domain/apperrors"
	"github.com/banterhq/banter/domain/model"
	"github.com/banterhq/banter/domain/repository"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type messageRepository struct {
	db     *gorm.DB
	tracer trace.Tracer
}

func NewMessageRepository(db *gorm.DB, tracer trace.Tracer) repository.MessageRepository {
	return &messageRepository{db: db, tracer: tracer}
}

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	ctx, span := r.tracer.Start(ctx, "messageRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("message.id", message.ID),
		attribute.String("room.id", message.RoomID),
	)

	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create message")
		return apperrors.Internal("failed to create message", err)
	}

	span.SetStatus(codes.Ok, "message created")
	return nil
}

// GetByRoom queries newest-first and returns the page reversed so callers
// receive messages oldest-first. When the filter carries a user and
// IncludeRecipients, recipient-targeted rows are kept only for the recipient
// or the author; otherwise recipient-targeted rows are dropped entirely.
func (r *messageRepository) GetByRoom(ctx context.Context, roomID string, filter repository.MessageFilter) ([]*model.Message, error) {
	ctx, span := r.tracer.Start(ctx, "messageRepository.GetByRoom")
	defer span.End()

	span.SetAttributes(
		attribute.String("room.id", roomID),
		attribute.Int("filter.limit", filter.Limit),
		attribute.Bool("filter.include_recipients", filter.IncludeRecipients),
	)

	q := r.db.WithContext(ctx).Where("room_id = ?", roomID)

	if filter.IncludeRecipients && filter.UserID != "" {
		q = q.Where("recipient_id IS NULL OR recipient_id = ? OR sender_id = ?", filter.UserID, filter.UserID)
	} else if !filter.IncludeRecipients {
		q = q.Where("recipient_id IS NULL")
	}

	var messages []*model.Message
	if err := q.Order("created_at desc").Limit(filter.Limit).Find(&messages).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get messages")
		return nil, apperrors.Internal("failed to get messages", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	span.SetAttributes(attribute.Int("message.count", len(messages)))
	span.SetStatus(codes.Ok, "messages retrieved")
	return messages, nil
}

func (r *messageRepository) CountByRoom(ctx context.Context, roomID string) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "messageRepository.CountByRoom")
	defer span.End()

	span.SetAttributes(attribute.String("room.id", roomID))

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("room_id = ?", roomID).
		Count(&count).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to count messages")
		return 0, apperrors.Internal("failed to count messages", err)
	}

	span.SetStatus(codes.Ok, "messages counted")
	return count, nil
}
