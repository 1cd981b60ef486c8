package websocket

import (
	"context"
	"net/url"

	"github.com/banterhq/banter/domain/apperrors"
	"github.com/banterhq/banter/domain/model"
	"github.com/banterhq/banter/infrastructure/logger"
	"go.uber.org/zap"
)

// Validator resolves a raw credential string into a principal. The token
// usecase implements it.
type Validator interface {
	Validate(ctx context.Context, token string) (*model.Principal, error)
}

// Authenticator runs exactly once per connection, synchronously, before the
// connection is admitted to any room.
type Authenticator struct {
	validator Validator
	logger    *logger.Logger
}

func NewAuthenticator(validator Validator, logger *logger.Logger) *Authenticator {
	return &Authenticator{validator: validator, logger: logger}
}

// Authenticate extracts a credential from the handshake query. A connection
// offering both a user token and a service credential is a malformed client
// and is rejected outright, which is distinct from bad credentials: an
// invalid or missing credential soft-fails into an anonymous session so
// legacy read-only clients keep working.
func (a *Authenticator) Authenticate(ctx context.Context, clientID string, query url.Values) (*Session, error) {
	userToken := query.Get("token")
	apiKey := query.Get("apiKey")

	if userToken != "" && apiKey != "" {
		return nil, apperrors.Validation("provide either token or apiKey, not both")
	}

	credential := userToken
	if credential == "" {
		credential = apiKey
	}
	if credential == "" {
		return &Session{ClientID: clientID}, nil
	}

	principal, err := a.validator.Validate(ctx, credential)
	if err != nil {
		a.logger.Warn("handshake credential rejected, admitting anonymous",
			zap.Error(err),
			zap.String("clientID", clientID))
		return &Session{ClientID: clientID}, nil
	}

	// A service credential presented in the user token field (or vice versa)
	// indicates a confused client; treat it like any other bad credential.
	if userToken != "" && principal.AuthType != model.AuthTypeUser {
		a.logger.Warn("service credential presented as user token", zap.String("clientID", clientID))
		return &Session{ClientID: clientID}, nil
	}
	if apiKey != "" && principal.AuthType != model.AuthTypeService {
		a.logger.Warn("user token presented as apiKey", zap.String("clientID", clientID))
		return &Session{ClientID: clientID}, nil
	}

	return &Session{ClientID: clientID, Principal: principal}, nil
}
