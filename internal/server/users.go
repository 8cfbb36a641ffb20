package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Wang-tianhao/vibrant-blog-go/internal/store"
	"github.com/Wang-tianhao/vibrant-blog-go/jwtauth"
)

type createUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *store.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

func (s *Server) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	user, err := s.store.CreateUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		storeError(c, s.logger, "user", err)
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(user))
}

func (s *Server) getUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := s.store.UserByID(c.Request.Context(), id)
	if err != nil {
		storeError(c, s.logger, "user", err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

func (s *Server) me(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

// currentUser reads the user the auth middleware resolved
func (s *Server) currentUser(c *gin.Context) (*store.User, bool) {
	user, ok := jwtauth.CurrentUser[store.User](c)
	if !ok {
		serverError(c, s.logger, errors.New("authenticated route reached without a user"))
		return nil, false
	}
	return user, true
}

// pathID parses the :id path parameter
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		validationError(c, errors.New("id must be a positive integer"))
		return 0, false
	}
	return id, true
}
