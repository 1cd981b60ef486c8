package repository

import (
	"context"

	"github.com/banterhq/banter/domain/model"
)

type IdentityRepository interface {
	Create(ctx context.Context, identity *model.Identity) error
	GetByID(ctx context.Context, id string) (*model.Identity, error)
	GetByUsername(ctx context.Context, username string) (*model.Identity, error)
}
