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

type membershipRepository struct {
	db     *gorm.DB
	tracer trace.Tracer
}

func NewMembershipRepository(db *gorm.DB, tracer trace.Tracer) repository.MembershipRepository {
	return &membershipRepository{db: db, tracer: tracer}
}

func (r *membershipRepository) Insert(ctx context.Context, membership *model.Membership) error {
	ctx, span := r.tracer.Start(ctx, "membershipRepository.Insert")
	defer span.End()

	span.SetAttributes(
		attribute.String("room.id", membership.RoomID),
		attribute.String("identity.id", membership.IdentityID),
		attribute.String("membership.status", string(membership.Status)),
	)

	if err := r.db.WithContext(ctx).Create(membership).Error; err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent writer won the insert; the caller re-reads the row.
			span.SetStatus(codes.Error, "membership already exists")
			return apperrors.Conflict("membership already exists", err)
		}
		span.SetStatus(codes.Error, "failed to insert membership")
		return apperrors.Internal("failed to insert membership", err)
	}

	span.SetStatus(codes.Ok, "membership inserted")
	return nil
}

func (r *membershipRepository) Get(ctx context.Context, roomID, identityID string) (*model.Membership, error) {
	ctx, span := r.tracer.Start(ctx, "membershipRepository.Get")
	defer span.End()

	span.SetAttributes(
		attribute.String("room.id", roomID),
		attribute.String("identity.id", identityID),
	)

	var membership model.Membership
	err := r.db.WithContext(ctx).
		First(&membership, "room_id = ? AND identity_id = ?", roomID, identityID).Error
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "membership not found")
			return nil, apperrors.NotFound("membership not found", err)
		}
		span.SetStatus(codes.Error, "failed to get membership")
		return nil, apperrors.Internal("failed to get membership", err)
	}

	span.SetStatus(codes.Ok, "membership retrieved")
	return &membership, nil
}

func (r *membershipRepository) SetStatus(ctx context.Context, roomID, identityID string, status model.MembershipStatus) error {
	ctx, span := r.tracer.Start(ctx, "membershipRepository.SetStatus")
	defer span.End()

	span.SetAttributes(
		attribute.String("room.id", roomID),
		attribute.String("identity.id", identityID),
		attribute.String("membership.status", string(status)),
	)

	res := r.db.WithContext(ctx).
		Model(&model.Membership{}).
		Where("room_id = ? AND identity_id = ?", roomID, identityID).
		Update("status", status)
	if res.Error != nil {
		span.RecordError(res.Error)
		span.SetStatus(codes.Error, "failed to set membership status")
		return apperrors.Internal("failed to set membership status", res.Error)
	}
	if res.RowsAffected == 0 {
		span.SetStatus(codes.Error, "membership not found")
		return apperrors.NotFound("membership not found")
	}

	span.SetStatus(codes.Ok, "membership status updated")
	return nil
}

func (r *membershipRepository) Delete(ctx context.Context, roomID, identityID string) error {
	ctx, span := r.tracer.Start(ctx, "membershipRepository.Delete")
	defer span.End()

	span.SetAttributes(
		attribute.String("room.id", roomID),
		attribute.String("identity.id", identityID),
	)

	if err := r.db.WithContext(ctx).
		Delete(&model.Membership{}, "room_id = ? AND identity_id = ?", roomID, identityID).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete membership")
		return apperrors.Internal("failed to delete membership", err)
	}

	span.SetStatus(codes.Ok, "membership deleted")
	return nil
}

func (r *membershipRepository) ListByRoom(ctx context.Context, roomID string) ([]*model.Membership, error) {
	ctx, span := r.tracer.Start(ctx, "membershipRepository.ListByRoom")
	defer span.End()

	span.SetAttributes(attribute.String("room.id", roomID))

	var memberships []*model.Membership
	if err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("joined_at asc").
		Find(&memberships).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list memberships")
		return nil, apperrors.Internal("failed to list memberships", err)
	}

	span.SetAttributes(attribute.Int("membership.count", len(memberships)))
	span.SetStatus(codes.Ok, "memberships listed")
	return memberships, nil
}

func (r *membershipRepository) ListByIdentity(ctx context.Context, identityID string) ([]*model.Membership, error) {
	ctx, span := r.tracer.Start(ctx, "membershipRepository.ListByIdentity")
	defer span.End()

	span.SetAttributes(attribute.String("identity.id", identityID))

	var memberships []*model.Membership
	if err := r.db.WithContext(ctx).
		Where("identity_id = ?", identityID).
		Find(&memberships).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list memberships")
		return nil, apperrors.Internal("failed to list memberships", err)
	}

	span.SetStatus(codes.Ok, "memberships listed")
	return memberships, nil
}
