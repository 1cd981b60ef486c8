package dependency

import (
	"fmt"

	identityUseCase "github.com/banterhq/banter/application/usecases/identity"
	membershipUseCase "github.com/banterhq/banter/application/usecases/membership"
	messageUseCase "github.com/banterhq/banter/application/usecases/message"
	roomUseCase "github.com/banterhq/banter/application/usecases/room"
	tokenUseCase "github.com/banterhq/banter/application/usecases/token"
	"github.com/banterhq/banter/domain/repository"
	"github.com/banterhq/banter/infrastructure/config"
	"github.com/banterhq/banter/infrastructure/logger"
	"github.com/banterhq/banter/infrastructure/metrics"
	"github.com/banterhq/banter/infrastructure/presence"
	"github.com/banterhq/banter/infrastructure/websocket"
	"github.com/banterhq/banter/presentation/controllers/auth"
	"github.com/banterhq/banter/presentation/controllers/credential"
	"github.com/banterhq/banter/presentation/controllers/message"
	"github.com/banterhq/banter/presentation/controllers/room"
	wsCtrl "github.com/banterhq/banter/presentation/controllers/websocket"
	"go.opentelemetry.io/otel/sdk/trace"
	"gorm.io/gorm"
)

type Container struct {
	Config *config.Config
	Logger *logger.Logger

	TracerProvider *trace.TracerProvider
	Metrics        *metrics.Metrics

	DB       *gorm.DB
	Presence *presence.Registry

	IdentityRepo   repository.IdentityRepository
	CredentialRepo repository.CredentialRepository
	RoomRepo       repository.RoomRepository
	MembershipRepo repository.MembershipRepository
	MessageRepo    repository.MessageRepository

	Sessions websocket.SessionRegistry
	WSCore   *websocket.Core

	TokenUC      tokenUseCase.TokenUseCase
	IdentityUC   identityUseCase.IdentityUseCase
	RoomUC       roomUseCase.RoomUseCase
	MembershipUC membershipUseCase.MembershipUseCase
	MessageUC    messageUseCase.MessageUseCase

	AuthController       auth.AuthController
	CredentialController credential.CredentialController
	RoomController       room.RoomController
	MessageController    message.MessageController
	WebsocketController  wsCtrl.WebSocketController
}

func NewContainer() (*Container, error) {
	c := &Container{}

	c.Config = config.GetConfig()

	loggerInstance, err := logger.New(c.Config)
	if err != nil {
		return nil, fmt.Errorf("error initializing logger: %w", err)
	}
	c.Logger = loggerInstance

	c.Logger.Info("Initializing Banter API dependencies")

	if err := c.initInfrastructure(); err != nil {
		return nil, fmt.Errorf("error initializing infrastructure: %w", err)
	}

	c.initRepositories()

	c.initWebSocket()

	c.initUseCases()

	c.initControllers()

	c.Logger.Info("All dependencies initialized successfully")

	return c, nil
}
