package repository

import (
	"context"
	"errors"

	"github.com/banterhq/banter/domain/apperrors"
	"github.com/banterhq/banter/domain/model"
	"github.com/banterhq/banter/domain/repository"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type roomRepository struct {
	db     *gorm.DB
	tracer trace.Tracer
}

func NewRoomRepository(db *gorm.DB, tracer trace.Tracer) repository.RoomRepository {
	return &roomRepository{db: db, tracer: tracer}
}

func (r *roomRepository) Create(ctx context.Context, room *model.Room) error {
	ctx, span := r.tracer.Start(ctx, "roomRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("room.id", room.ID),
		attribute.String("room.name", room.Name),
	)

	if err := r.db.WithContext(ctx).Create(room).Error; err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			span.SetStatus(codes.Error, "room name taken")
			return apperrors.Conflict("room name already taken", err)
		}
		span.SetStatus(codes.Error, "failed to create room")
		return apperrors.Internal("failed to create room", err)
	}

	span.SetStatus(codes.Ok, "room created")
	return nil
}

func (r *roomRepository) Update(ctx context.Context, room *model.Room) error {
	ctx, span := r.tracer.Start(ctx, "roomRepository.Update")
	defer span.End()

	span.SetAttributes(attribute.String("room.id", room.ID))

	if err := r.db.WithContext(ctx).Save(room).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update room")
		return apperrors.Internal("failed to update room", err)
	}

	span.SetStatus(codes.Ok, "room updated")
	return nil
}

func (r *roomRepository) GetByID(ctx context.Context, id string) (*model.Room, error) {
	ctx, span := r.tracer.Start(ctx, "roomRepository.GetByID")
	defer span.End()

	span.SetAttributes(attribute.String("room.id", id))

	var room model.Room
	if err := r.db.WithContext(ctx).First(&room, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "room not found")
			return nil, apperrors.NotFound("room not found", err)
		}
		span.SetStatus(codes.Error, "failed to get room")
		return nil, apperrors.Internal("failed to get room", err)
	}

	span.SetStatus(codes.Ok, "room retrieved")
	return &room, nil
}

func (r *roomRepository) GetByName(ctx context.Context, name string) (*model.Room, error) {
	ctx, span := r.tracer.Start(ctx, "roomRepository.GetByName")
	defer span.End()

	var room model.Room
	if err := r.db.WithContext(ctx).First(&room, "name = ?", name).Error; err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "room not found")
			return nil, apperrors.NotFound("room not found", err)
		}
		span.SetStatus(codes.Error, "failed to get room")
		return nil, apperrors.Internal("failed to get room", err)
	}

	span.SetStatus(codes.Ok, "room retrieved")
	return &room, nil
}

func (r *roomRepository) List(ctx context.Context) ([]*model.Room, error) {
	ctx, span := r.tracer.Start(ctx, "roomRepository.List")
	defer span.End()

	var rooms []*model.Room
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&rooms).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list rooms")
		return nil, apperrors.Internal("failed to list rooms", err)
	}

	span.SetAttributes(attribute.Int("room.count", len(rooms)))
	span.SetStatus(codes.Ok, "rooms listed")
	return rooms, nil
}

func (r *roomRepository) ListByCreator(ctx context.Context, creatorID string) ([]*model.Room, error) {
	ctx, span := r.tracer.Start(ctx, "roomRepository.ListByCreator")
	defer span.End()

	span.SetAttributes(attribute.String("room.creator_id", creatorID))

	var rooms []*model.Room
	if err := r.db.WithContext(ctx).Where("creator_id = ?", creatorID).Find(&rooms).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list rooms by creator")
		return nil, apperrors.Internal("failed to list rooms by creator", err)
	}

	span.SetStatus(codes.Ok, "rooms listed")
	return rooms, nil
}

func (r *roomRepository) ListByIDs(ctx context.Context, ids []string) ([]*model.Room, error) {
	ctx, span := r.tracer.Start(ctx, "roomRepository.ListByIDs")
	defer span.End()

	if len(ids) == 0 {
		return nil, nil
	}

	var rooms []*model.Room
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rooms).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list rooms by ids")
		return nil, apperrors.Internal("failed to list rooms by ids", err)
	}

	span.SetStatus(codes.Ok, "rooms listed")
	return rooms, nil
}
