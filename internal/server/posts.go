package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Wang-tianhao/vibrant-blog-go/internal/store"
)

type postRequest struct {
	Title     string `json:"title" binding:"required"`
	Content   string `json:"content" binding:"required"`
	Published *bool  `json:"published"`
}

func (r postRequest) input() store.PostInput {
	return store.PostInput{Title: r.Title, Content: r.Content, Published: r.Published}
}

type listQuery struct {
	Limit  int    `form:"limit" binding:"min=0,max=100"`
	Skip   int    `form:"skip" binding:"min=0"`
	Search string `form:"search"`
}

func (s *Server) listPosts(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		validationError(c, err)
		return
	}

	posts, err := s.store.ListPosts(c.Request.Context(), store.ListOptions{
		Limit:  q.Limit,
		Skip:   q.Skip,
		Search: q.Search,
	})
	if err != nil {
		serverError(c, s.logger, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

func (s *Server) getPost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	post, err := s.store.GetPost(c.Request.Context(), id)
	if err != nil {
		storeError(c, s.logger, "post", err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func (s *Server) createPost(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	post, err := s.store.CreatePost(c.Request.Context(), user.ID, req.input())
	if err != nil {
		storeError(c, s.logger, "post", err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

func (s *Server) updatePost(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	post, err := s.store.UpdatePost(c.Request.Context(), id, user.ID, req.input())
	if err != nil {
		storeError(c, s.logger, "post", err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func (s *Server) deletePost(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := s.store.DeletePost(c.Request.Context(), id, user.ID); err != nil {
		storeError(c, s.logger, "post", err)
		return
	}

	c.Status(http.StatusNoContent)
}
