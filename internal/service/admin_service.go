package service

import (
	"BrainScript/internal/api/config"
	"BrainScript/internal/api/dto"
	"BrainScript/internal/model"
	"BrainScript/internal/pkg/consts"
	"BrainScript/internal/repository"
	"context"
	log "log/slog"
	"strings"
)

type AdminService interface {
	ListUsers(ctx context.Context, callerID uint64) ([]*dto.UserDTO, error)
	UpdateRole(ctx context.Context, callerID, targetID uint64, role string) error
	DeleteUser(ctx context.Context, callerID, targetID uint64) error
	// BootstrapSuperAdmin 启动时确保配置的超级管理员拥有 admin 角色
	BootstrapSuperAdmin(ctx context.Context) error
}

type adminServiceImpl struct {
	userRepo        repository.UserRepo
	superAdminEmail string
}

func NewAdminService(userRepo repository.UserRepo, authCfg config.AuthConfig) AdminService {
	return &adminServiceImpl{
		userRepo:        userRepo,
		superAdminEmail: strings.ToLower(strings.TrimSpace(authCfg.SuperAdminEmail)),
	}
}

// requireRole 角色在每次调用时重新从库中读取，不信任令牌里的声明
func requireRole(ctx context.Context, userRepo repository.UserRepo, userID uint64, role string) (*model.User, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	user, err := userRepo.GetUserById(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Role != role {
		return nil, UnauthorizedError
	}
	return user, nil
}

func (s *adminServiceImpl) isSuperAdmin(user *model.User) bool {
	return s.superAdminEmail != "" && strings.EqualFold(user.Email, s.superAdminEmail)
}

func (s *adminServiceImpl) ListUsers(ctx context.Context, callerID uint64) ([]*dto.UserDTO, error) {
	if _, err := requireRole(ctx, s.userRepo, callerID, consts.RoleAdmin); err != nil {
		return nil, err
	}
	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.UserDTO, 0, len(users))
	for _, user := range users {
		out = append(out, toUserDTO(user, true))
	}
	return out, nil
}

func (s *adminServiceImpl) UpdateRole(ctx context.Context, callerID, targetID uint64, role string) error {
	if role != consts.RoleUser && role != consts.RoleAdmin {
		return ErrInvalidRole
	}
	if _, err := requireRole(ctx, s.userRepo, callerID, consts.RoleAdmin); err != nil {
		return err
	}
	target, err := s.userRepo.GetUserById(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrUserNotFound
	}
	if s.isSuperAdmin(target) {
		return ErrSuperAdminProtected
	}
	if target.Role == role {
		return nil
	}
	if err = s.userRepo.UpdateRole(ctx, targetID, role); err != nil {
		return err
	}
	log.InfoContext(ctx, "user role updated", "operator", callerID, "target", targetID, "role", role)
	return nil
}

func (s *adminServiceImpl) DeleteUser(ctx context.Context, callerID, targetID uint64) error {
	if _, err := requireRole(ctx, s.userRepo, callerID, consts.RoleAdmin); err != nil {
		return err
	}
	if callerID == targetID {
		return ErrCannotDeleteSelf
	}
	target, err := s.userRepo.GetUserById(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrUserNotFound
	}
	if s.isSuperAdmin(target) {
		return ErrSuperAdminProtected
	}
	if err = s.userRepo.DeleteUser(ctx, targetID); err != nil {
		return err
	}
	log.InfoContext(ctx, "user deleted", "operator", callerID, "target", targetID)
	return nil
}

func (s *adminServiceImpl) BootstrapSuperAdmin(ctx context.Context) error {
	if s.superAdminEmail == "" {
		log.WarnContext(ctx, "super admin email not configured, skip bootstrap")
		return nil
	}
	user, err := s.userRepo.GetUserByEmail(ctx, s.superAdminEmail)
	if err != nil {
		return err
	}
	if user == nil {
		log.InfoContext(ctx, "super admin has not signed up yet", "email", s.superAdminEmail)
		return nil
	}
	if user.Role == consts.RoleAdmin {
		return nil
	}
	if err = s.userRepo.UpdateRole(ctx, user.ID, consts.RoleAdmin); err != nil {
		return err
	}
	log.InfoContext(ctx, "super admin promoted", "user_id", user.ID)
	return nil
}
