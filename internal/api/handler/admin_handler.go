package handler

import (
	"BrainScript/internal/api/dto"
	"BrainScript/internal/pkg/response"
	"BrainScript/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler 角色校验在 service 层按数据库中的角色进行
type AdminHandler struct {
	adminSvc   service.AdminService
	rankingSvc service.RankingService
}

func NewAdminHandler(adminSvc service.AdminService, rankingSvc service.RankingService) *AdminHandler {
	return &AdminHandler{
		adminSvc:   adminSvc,
		rankingSvc: rankingSvc,
	}
}

func (s *AdminHandler) GetStats(c *gin.Context) {
	userID := c.GetUint64("user_id")

	stats, err := s.rankingSvc.GetAdminStats(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

func (s *AdminHandler) ListUsers(c *gin.Context) {
	userID := c.GetUint64("user_id")

	users, err := s.adminSvc.ListUsers(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, users)
}

func (s *AdminHandler) UpdateRole(c *gin.Context) {
	userID := c.GetUint64("user_id")
	targetID, err := uintParam(c, "user_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateRoleDTO
	if err = c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	if err = s.adminSvc.UpdateRole(c.Request.Context(), userID, targetID, req.Role); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *AdminHandler) DeleteUser(c *gin.Context) {
	userID := c.GetUint64("user_id")
	targetID, err := uintParam(c, "user_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err = s.adminSvc.DeleteUser(c.Request.Context(), userID, targetID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
