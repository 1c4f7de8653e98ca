package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"docvault/internal/apperr"
	"docvault/internal/auth"
	"docvault/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Context keys set by AuthMiddleware
const (
	UserIDKey = "userID"
	ClaimsKey = "claims"
)

// Authenticator validates a bearer token
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, primitive.ObjectID, error)
}

// AuthMiddleware requires a valid bearer token. Websocket upgrades may pass the
// token as ?token= since browsers cannot set headers on them.
func AuthMiddleware(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.Request)
		if token == "" && websocket.IsWebSocketUpgrade(c.Request) {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.NewErrorResponse("Missing bearer token", ""))
			return
		}

		claims, userID, err := authn.Authenticate(c.Request.Context(), token)
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, apperr.ErrUnavailable) {
				status = http.StatusServiceUnavailable
			}
			msg := apperr.Message(err)
			if msg == "" {
				msg = "Unauthorized"
			}
			c.AbortWithStatusJSON(status, model.NewErrorResponse(msg, ""))
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// UserID returns the authenticated user id
func UserID(c *gin.Context) primitive.ObjectID {
	if v, ok := c.Get(UserIDKey); ok {
		if id, ok := v.(primitive.ObjectID); ok {
			return id
		}
	}
	return primitive.NilObjectID
}

// Claims returns the token claims of the authenticated request
func Claims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
