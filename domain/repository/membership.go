package repository

import (
	"context"

	"github.com/banterhq/banter/domain/model"
)

// MembershipRepository owns the (room, identity) rows. Insert must surface
// apperrors.Conflict when the composite key already exists so concurrent
// first joins collapse into a single row.
type MembershipRepository interface {
	Insert(ctx context.Context, membership *model.Membership) error
	Get(ctx context.Context, roomID, identityID string) (*model.Membership, error)
	SetStatus(ctx context.Context, roomID, identityID string, status model.MembershipStatus) error
	Delete(ctx context.Context, roomID, identityID string) error
	ListByRoom(ctx context.Context, roomID string) ([]*model.Membership, error)
	ListByIdentity(ctx context.Context, identityID string) ([]*model.Membership, error)
}
