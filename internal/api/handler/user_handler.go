package handler

import (
	"BrainScript/internal/api/dto"
	"BrainScript/internal/pkg/response"
	"BrainScript/internal/pkg/security"
	"BrainScript/internal/service"
	"time"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userSvc    service.UserService
	rankingSvc service.RankingService
}

func NewUserHandler(userSvc service.UserService, rankingSvc service.RankingService) *UserHandler {
	return &UserHandler{
		userSvc:    userSvc,
		rankingSvc: rankingSvc,
	}
}

func (s *UserHandler) GetMe(c *gin.Context) {
	userID := c.GetUint64("user_id")

	user, err := s.userSvc.GetMe(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

func (s *UserHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetUint64("user_id")

	var req dto.UpdateProfileDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	user, err := s.userSvc.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

func (s *UserHandler) UpdateTheme(c *gin.Context) {
	userID := c.GetUint64("user_id")

	var req dto.UpdateThemeDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	if err := s.userSvc.UpdateTheme(c.Request.Context(), userID, req.Theme); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *UserHandler) GetSuggestions(c *gin.Context) {
	suggestions, err := s.userSvc.GetSuggestions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, suggestions)
}

func (s *UserHandler) GetTopWriters(c *gin.Context) {
	writers, err := s.rankingSvc.GetTopWriters(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, writers)
}

func (s *UserHandler) GetProfile(c *gin.Context) {
	userID, err := uintParam(c, "user_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	profile, err := s.rankingSvc.GetPublicProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}

// Logout 令牌拉黑到其自然过期
func (s *UserHandler) Logout(c *gin.Context) {
	token := c.GetString("token")
	value, ok := c.Get("claims")
	claims, isClaims := value.(*security.UserClaims)
	if !ok || !isClaims || token == "" {
		response.Error(c, service.ErrUnauthenticated)
		return
	}

	if err := s.userSvc.Logout(c.Request.Context(), token, claims.Remaining(time.Now())); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
