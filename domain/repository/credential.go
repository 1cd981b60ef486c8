package repository

import (
	"context"
	"time"

	"github.com/banterhq/banter/domain/model"
)

type CredentialRepository interface {
	Create(ctx context.Context, credential *model.Credential) error
	Update(ctx context.Context, credential *model.Credential) error
	GetByID(ctx context.Context, id string) (*model.Credential, error)
	GetBySignature(ctx context.Context, signature string) (*model.Credential, error)
	ListByIdentity(ctx context.Context, identityID string) ([]*model.Credential, error)
	Deactivate(ctx context.Context, id string) error
	TouchLastUsed(ctx context.Context, id string, at time.Time) error
}
