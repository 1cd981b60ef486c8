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

type identityRepository struct {
	db     *gorm.DB
	tracer trace.Tracer
}

func NewIdentityRepository(db *gorm.DB, tracer trace.Tracer) repository.IdentityRepository {
	return &identityRepository{db: db, tracer: tracer}
}

func (r *identityRepository) Create(ctx context.Context, identity *model.Identity) error {
	ctx, span := r.tracer.Start(ctx, "identityRepository.Create")
	defer span.End()

	span.SetAttributes(attribute.String("identity.id", identity.ID))

	if err := r.db.WithContext(ctx).Create(identity).Error; err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			span.SetStatus(codes.Error, "username taken")
			return apperrors.Conflict("username already taken", err)
		}
		span.SetStatus(codes.Error, "failed to create identity")
		return apperrors.Internal("failed to create identity", err)
	}

	span.SetStatus(codes.Ok, "identity created")
	return nil
}

func (r *identityRepository) GetByID(ctx context.Context, id string) (*model.Identity, error) {
	ctx, span := r.tracer.Start(ctx, "identityRepository.GetByID")
	defer span.End()

	span.SetAttributes(attribute.String("identity.id", id))

	var identity model.Identity
	if err := r.db.WithContext(ctx).First(&identity, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "identity not found")
			return nil, apperrors.NotFound("identity not found", err)
		}
		span.SetStatus(codes.Error, "failed to get identity")
		return nil, apperrors.Internal("failed to get identity", err)
	}

	span.SetStatus(codes.Ok, "identity retrieved")
	return &identity, nil
}

func (r *identityRepository) GetByUsername(ctx context.Context, username string) (*model.Identity, error) {
	ctx, span := r.tracer.Start(ctx, "identityRepository.GetByUsername")
	defer span.End()

	var identity model.Identity
	if err := r.db.WithContext(ctx).First(&identity, "username = ?", username).Error; err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "identity not found")
			return nil, apperrors.NotFound("identity not found", err)
		}
		span.SetStatus(codes.Error, "failed to get identity")
		return nil, apperrors.Internal("failed to get identity", err)
	}

	span.SetStatus(codes.Ok, "identity retrieved")
	return &identity, nil
}
