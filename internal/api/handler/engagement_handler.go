package handler

import (
	"BrainScript/internal/api/dto"
	"BrainScript/internal/pkg/response"
	"BrainScript/internal/service"

	"github.com/gin-gonic/gin"
)

type EngagementHandler struct {
	engagementSvc service.EngagementService
}

func NewEngagementHandler(engagementSvc service.EngagementService) *EngagementHandler {
	return &EngagementHandler{
		engagementSvc: engagementSvc,
	}
}

func (s *EngagementHandler) ToggleLike(c *gin.Context) {
	userID := c.GetUint64("user_id")
	postID, err := uintParam(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := s.engagementSvc.ToggleLike(c.Request.Context(), userID, postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *EngagementHandler) ToggleSave(c *gin.Context) {
	userID := c.GetUint64("user_id")
	postID, err := uintParam(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := s.engagementSvc.ToggleSave(c.Request.Context(), userID, postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *EngagementHandler) GetSavedPosts(c *gin.Context) {
	userID := c.GetUint64("user_id")

	posts, err := s.engagementSvc.GetSavedPosts(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, posts)
}

func (s *EngagementHandler) ListComments(c *gin.Context) {
	postID, err := uintParam(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	comments, err := s.engagementSvc.ListComments(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comments)
}

func (s *EngagementHandler) CreateComment(c *gin.Context) {
	userID := c.GetUint64("user_id")

	var req dto.CommentCreateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	comment, err := s.engagementSvc.CreateComment(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comment)
}

func (s *EngagementHandler) UpdateComment(c *gin.Context) {
	userID := c.GetUint64("user_id")
	commentID, err := uintParam(c, "comment_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.CommentUpdateDTO
	if err = c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	comment, err := s.engagementSvc.UpdateComment(c.Request.Context(), userID, commentID, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comment)
}

func (s *EngagementHandler) DeleteComment(c *gin.Context) {
	userID := c.GetUint64("user_id")
	commentID, err := uintParam(c, "comment_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err = s.engagementSvc.DeleteComment(c.Request.Context(), userID, commentID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
