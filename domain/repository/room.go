package repository

import (
	"context"

	"github.com/banterhq/banter/domain/model"
)

type RoomRepository interface {
	Create(ctx context.Context, room *model.Room) error
	Update(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetByName(ctx context.Context, name string) (*model.Room, error)
	List(ctx context.Context) ([]*model.Room, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*model.Room, error)
	ListByIDs(ctx context.Context, ids []string) ([]*model.Room, error)
}
