package dependency

import (
	"github.com/banterhq/banter/infrastructure/persistence/repository"
	"github.com/banterhq/banter/infrastructure/tracing"
)

func (c *Container) initRepositories() {
	tracer := tracing.Tracer()

	c.IdentityRepo = repository.NewIdentityRepository(c.DB, tracer)
	c.CredentialRepo = repository.NewCredentialRepository(c.DB, tracer)
	c.RoomRepo = repository.NewRoomRepository(c.DB, tracer)
	c.MembershipRepo = repository.NewMembershipRepository(c.DB, tracer)
	c.MessageRepo = repository.NewMessageRepository(c.DB, tracer)

	c.Logger.Info("Repositories initialized successfully")
}
