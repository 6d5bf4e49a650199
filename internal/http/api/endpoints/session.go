package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/dhanfinix/sukund/internal/http/api"
	"github.com/dhanfinix/sukund/internal/http/api/packets"
	"github.com/dhanfinix/sukund/internal/http/middleware"
)

type SessionController struct {
	secret       string
	passwordHash string
}

func NewSessionController(secret, passwordHash string) *SessionController {
	return &SessionController{secret: secret, passwordHash: passwordHash}
}

// RegisterSessionRoutes mounts the only unauthenticated route.
func RegisterSessionRoutes(r *gin.RouterGroup, secret, passwordHash string) {
	ctl := NewSessionController(secret, passwordHash)
	r.POST("/session", api.ResolveEndpoint(ctl.createSession))
}

func (s *SessionController) createSession(ctx *gin.Context) (any, *api.Error) {
	var request packets.SessionRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(request.Password)); err != nil {
		return nil, &api.Error{Code: http.StatusUnauthorized, Message: "invalid password"}
	}

	token, err := middleware.GenerateJWT(s.secret)
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not issue token"}
	}
	return packets.SessionResponse{Token: token}, nil
}
