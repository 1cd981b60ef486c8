package dependency

import (
	identityUseCase "github.com/banterhq/banter/application/usecases/identity"
	membershipUseCase "github.com/banterhq/banter/application/usecases/membership"
	messageUseCase "github.com/banterhq/banter/application/usecases/message"
	roomUseCase "github.com/banterhq/banter/application/usecases/room"
	tokenUseCase "github.com/banterhq/banter/application/usecases/token"
)

func (c *Container) initUseCases() {
	c.TokenUC = tokenUseCase.NewTokenUseCase(c.CredentialRepo, c.Config, c.Logger)
	c.IdentityUC = identityUseCase.NewIdentityUseCase(c.IdentityRepo, c.TokenUC, c.Logger)
	c.RoomUC = roomUseCase.NewRoomUseCase(c.RoomRepo, c.MembershipRepo, c.Logger)
	c.MembershipUC = membershipUseCase.NewMembershipUseCase(c.MembershipRepo, c.RoomRepo, c.WSCore, c.Config, c.Logger)
	c.MessageUC = messageUseCase.NewMessageUseCase(c.MessageRepo, c.RoomRepo, c.MembershipUC, c.WSCore, c.Logger)

	c.Logger.Info("Use cases initialized successfully")
}
