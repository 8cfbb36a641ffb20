package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Wang-tianhao/vibrant-blog-go/internal/store"
	"github.com/Wang-tianhao/vibrant-blog-go/jwtauth"
)

// loginRequest accepts an OAuth2 password form (username/password) or JSON (email/password)
type loginRequest struct {
	Email    string `form:"username" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// TokenResponse is returned by a successful login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (s *Server) login(c *gin.Context) {
	if !s.limiter.allow(c.ClientIP()) {
		tooManyRequests(c)
		return
	}

	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		validationError(c, err)
		return
	}

	user, err := s.store.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			forbidden(c, "invalid credentials")
			return
		}
		serverError(c, s.logger, err)
		return
	}

	codec := s.guard.Codec()
	token, err := codec.Encode(jwtauth.NewClaims(user.ID))
	if err != nil {
		serverError(c, s.logger, err)
		return
	}

	if name := codec.Config().CookieName(); name != "" {
		maxAge := int(codec.Config().Expiry().Seconds())
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(name, token, maxAge, "/", "", c.Request.TLS != nil, true)
	}

	c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}
