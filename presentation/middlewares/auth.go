package middlewares

import (
	"net/http"
	"strings"

	"github.com/banterhq/banter/application/usecases/token"
	"github.com/banterhq/banter/domain/apperrors"
	"github.com/banterhq/banter/domain/model"
	"github.com/banterhq/banter/infrastructure/logger"
	"github.com/banterhq/banter/infrastructure/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const PrincipalContextKey = "principal"

// Authenticate resolves the caller's credential into a Principal. A bearer
// token and an X-API-Key header are mutually exclusive: presenting both is a
// 400, not a 401, so the caller can tell a malformed request apart from a
// rejected credential. Requests with no credential pass through anonymous;
// RequireAuth decides whether that is acceptable per route.
func Authenticate(tokens token.TokenUseCase, m *metrics.Metrics, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer := bearerToken(c)
		apiKey := c.GetHeader("X-API-Key")

		if bearer != "" && apiKey != "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_request",
				"message": "provide either a bearer token or an API key, not both",
			})
			c.Abort()
			return
		}

		credential := bearer
		if credential == "" {
			credential = apiKey
		}
		if credential == "" {
			c.Next()
			return
		}

		principal, err := tokens.Validate(c.Request.Context(), credential)
		if err != nil {
			m.AuthFailures.WithLabelValues(failureReason(err)).Inc()
			logger.Warn("credential rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
				zap.Error(err),
			)
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": apperrors.Public(err),
			})
			c.Abort()
			return
		}

		if bearer != "" && !principal.IsUser() {
			m.AuthFailures.WithLabelValues("wrong_credential_kind").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "service credentials must be sent via X-API-Key",
			})
			c.Abort()
			return
		}
		if apiKey != "" && principal.IsUser() {
			m.AuthFailures.WithLabelValues("wrong_credential_kind").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "user tokens must be sent via the Authorization header",
			})
			c.Abort()
			return
		}

		c.Set(PrincipalContextKey, principal)
		c.Next()
	}
}

// RequireAuth aborts anonymous requests. It assumes Authenticate ran earlier
// in the chain.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetPrincipal(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "authentication required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireUser aborts requests whose principal is not an interactive user.
// Service credentials cannot manage memberships or other identity-bound state.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok || !principal.IsUser() {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "this operation requires a user token",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func GetPrincipal(c *gin.Context) (*model.Principal, bool) {
	value, exists := c.Get(PrincipalContextKey)
	if !exists {
		return nil, false
	}

	principal, ok := value.(*model.Principal)
	return principal, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func failureReason(err error) string {
	switch apperrors.KindOf(err) {
	case apperrors.KindAuthentication:
		return "invalid_credential"
	case apperrors.KindAuthorization:
		return "forbidden"
	default:
		return "internal"
	}
}
