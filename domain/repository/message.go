package repository

import (
	"context"

	"github.com/banterhq/banter/domain/model"
)

// MessageFilter narrows a room history query. UserID combined with
// IncludeRecipients keeps recipient-targeted rows only when the user is the
// recipient or the author.
type MessageFilter struct {
	Limit             int
	UserID            string
	IncludeRecipients bool
}

type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	GetByRoom(ctx context.Context, roomID string, filter MessageFilter) ([]*model.Message, error)
	CountByRoom(ctx context.Context, roomID string) (int64, error)
}
