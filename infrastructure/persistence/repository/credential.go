package repository

import (
	"context"
	"errors"
	"time"

	"github.com/banterhq/banter/domain/apperrors"
	"github.com/banterhq/banter/domain/model"
	"github.com/banterhq/banter/domain/repository"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type credentialRepository struct {
	db     *gorm.DB
	tracer trace.Tracer
}

func NewCredentialRepository(db *gorm.DB, tracer trace.Tracer) repository.CredentialRepository {
	return &credentialRepository{db: db, tracer: tracer}
}

func (r *credentialRepository) Create(ctx context.Context, credential *model.Credential) error {
	ctx, span := r.tracer.Start(ctx, "credentialRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("credential.id", credential.ID),
		attribute.String("credential.kind", string(credential.Kind)),
	)

	if err := r.db.WithContext(ctx).Create(credential).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create credential")
		return apperrors.Internal("failed to create credential", err)
	}

	span.SetStatus(codes.Ok, "credential created")
	return nil
}

func (r *credentialRepository) Update(ctx context.Context, credential *model.Credential) error {
	ctx, span := r.tracer.Start(ctx, "credentialRepository.Update")
	defer span.End()

	span.SetAttributes(attribute.String("credential.id", credential.ID))

	if err := r.db.WithContext(ctx).Save(credential).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update credential")
		return apperrors.Internal("failed to update credential", err)
	}

	span.SetStatus(codes.Ok, "credential updated")
	return nil
}

func (r *credentialRepository) GetByID(ctx context.Context, id string) (*model.Credential, error) {
	ctx, span := r.tracer.Start(ctx, "credentialRepository.GetByID")
	defer span.End()

	span.SetAttributes(attribute.String("credential.id", id))

	var credential model.Credential
	if err := r.db.WithContext(ctx).First(&credential, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "credential not found")
			return nil, apperrors.NotFound("credential not found", err)
		}
		span.SetStatus(codes.Error, "failed to get credential")
		return nil, apperrors.Internal("failed to get credential", err)
	}

	span.SetStatus(codes.Ok, "credential retrieved")
	return &credential, nil
}

func (r *credentialRepository) GetBySignature(ctx context.Context, signature string) (*model.Credential, error) {
	ctx, span := r.tracer.Start(ctx, "credentialRepository.GetBySignature")
	defer span.End()

	var credential model.Credential
	if err := r.db.WithContext(ctx).First(&credential, "token_signature = ?", signature).Error; err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "credential not found")
			return nil, apperrors.NotFound("credential not found", err)
		}
		span.SetStatus(codes.Error, "failed to get credential")
		return nil, apperrors.Internal("failed to get credential", err)
	}

	span.SetStatus(codes.Ok, "credential retrieved")
	return &credential, nil
}

func (r *credentialRepository) ListByIdentity(ctx context.Context, identityID string) ([]*model.Credential, error) {
	ctx, span := r.tracer.Start(ctx, "credentialRepository.ListByIdentity")
	defer span.End()

	span.SetAttributes(attribute.String("identity.id", identityID))

	var credentials []*model.Credential
	if err := r.db.WithContext(ctx).
		Where("identity_id = ?", identityID).
		Order("created_at desc").
		Find(&credentials).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list credentials")
		return nil, apperrors.Internal("failed to list credentials", err)
	}

	span.SetAttributes(attribute.Int("credential.count", len(credentials)))
	span.SetStatus(codes.Ok, "credentials listed")
	return credentials, nil
}

func (r *credentialRepository) Deactivate(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(ctx, "credentialRepository.Deactivate")
	defer span.End()

	span.SetAttributes(attribute.String("credential.id", id))

	res := r.db.WithContext(ctx).
		Model(&model.Credential{}).
		Where("id = ?", id).
		Update("active", false)
	if res.Error != nil {
		span.RecordError(res.Error)
		span.SetStatus(codes.Error, "failed to deactivate credential")
		return apperrors.Internal("failed to deactivate credential", res.Error)
	}
	if res.RowsAffected == 0 {
		span.SetStatus(codes.Error, "credential not found")
		return apperrors.NotFound("credential not found")
	}

	span.SetStatus(codes.Ok, "credential deactivated")
	return nil
}

func (r *credentialRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	ctx, span := r.tracer.Start(ctx, "credentialRepository.TouchLastUsed")
	defer span.End()

	span.SetAttributes(attribute.String("credential.id", id))

	if err := r.db.WithContext(ctx).
		Model(&model.Credential{}).
		Where("id = ?", id).
		Update("last_used_at", at).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to stamp last used")
		return apperrors.Internal("failed to stamp last used", err)
	}

	span.SetStatus(codes.Ok, "last used stamped")
	return nil
}
