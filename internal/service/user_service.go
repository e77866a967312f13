package service

import (
	"BrainScript/internal/api/config"
	"BrainScript/internal/api/dto"
	"BrainScript/internal/model"
	"BrainScript/internal/pkg/consts"
	"BrainScript/internal/pkg/redis"
	"BrainScript/internal/pkg/security"
	"BrainScript/internal/pkg/util"
	"BrainScript/internal/repository"
	"context"
	"crypto/subtle"
	log "log/slog"
	"strings"
	"time"
)

const (
	suggestionScanUsers = 100
	suggestionLimit     = 10
)

type UserService interface {
	// VerifyWebhookSecret 校验身份提供方推送时携带的共享密钥
	VerifyWebhookSecret(secret string) error
	SyncFromProvider(ctx context.Context, evt *dto.IdentityWebhookDTO) error
	GetMe(ctx context.Context, userID uint64) (*dto.UserDTO, error)
	UpdateProfile(ctx context.Context, userID uint64, req *dto.UpdateProfileDTO) (*dto.UserDTO, error)
	UpdateTheme(ctx context.Context, userID uint64, theme string) error
	GetSuggestions(ctx context.Context) (*dto.SuggestionsDTO, error)
	// Logout 令牌在剩余有效期内作废
	Logout(ctx context.Context, token string, ttl time.Duration) error
}

type UserServiceImpl struct {
	userRepo      repository.UserRepo
	webhookSecret string
}

func NewUserService(userRepo repository.UserRepo, authCfg config.AuthConfig) UserService {
	return &UserServiceImpl{
		userRepo:      userRepo,
		webhookSecret: authCfg.WebhookSecret,
	}
}

func (s *UserServiceImpl) VerifyWebhookSecret(secret string) error {
	if s.webhookSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(s.webhookSecret)) != 1 {
		return ErrWebhookSecretMismatch
	}
	return nil
}

// SyncFromProvider 按邮箱插入或刷新，已有用户的角色不被覆盖
func (s *UserServiceImpl) SyncFromProvider(ctx context.Context, evt *dto.IdentityWebhookDTO) error {
	if err := util.ValidateDTO(evt); err != nil {
		log.WarnContext(ctx, "invalid identity webhook", "err", err)
		return ErrParamInvalid
	}
	email := strings.ToLower(strings.TrimSpace(evt.Data.Email))
	name := strings.TrimSpace(evt.Data.FirstName + " " + evt.Data.LastName)
	if name == "" {
		name = email[:strings.Index(email, "@")]
	}

	user := &model.User{
		Email: email,
		Name:  name,
		Image: evt.Data.ImageURL,
		Role:  consts.RoleUser,
		Theme: consts.ThemeSystem,
	}
	if err := s.userRepo.UpsertByEmail(ctx, user); err != nil {
		return err
	}
	log.InfoContext(ctx, "user synced from identity provider", "type", evt.Type, "email", email)
	return nil
}

func (s *UserServiceImpl) GetMe(ctx context.Context, userID uint64) (*dto.UserDTO, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	user, err := s.userRepo.GetUserById(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return toUserDTO(user, true), nil
}

func (s *UserServiceImpl) UpdateProfile(ctx context.Context, userID uint64, req *dto.UpdateProfileDTO) (*dto.UserDTO, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	fields := make(map[string]interface{})
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrParamInvalid
		}
		fields["name"] = name
	}
	if req.Passion != nil {
		fields["passion"] = strings.TrimSpace(*req.Passion)
	}
	if req.Interest != nil {
		fields["interest"] = strings.TrimSpace(*req.Interest)
	}
	if req.Organization != nil {
		fields["organization"] = strings.TrimSpace(*req.Organization)
	}
	if len(fields) > 0 {
		if err := s.userRepo.UpdateProfile(ctx, userID, fields); err != nil {
			return nil, err
		}
	}
	return s.GetMe(ctx, userID)
}

func (s *UserServiceImpl) UpdateTheme(ctx context.Context, userID uint64, theme string) error {
	if userID == 0 {
		return ErrUnauthenticated
	}
	switch theme {
	case consts.ThemeLight, consts.ThemeDark, consts.ThemeSystem:
	default:
		return ErrInvalidTheme
	}
	return s.userRepo.UpdateProfile(ctx, userID, map[string]interface{}{"theme": theme})
}

// GetSuggestions 取最近注册用户填写过的热情方向与组织作为候选
func (s *UserServiceImpl) GetSuggestions(ctx context.Context) (*dto.SuggestionsDTO, error) {
	users, err := s.userRepo.GetRecentUsers(ctx, suggestionScanUsers)
	if err != nil {
		return nil, err
	}
	passions := make([]string, 0, len(users))
	organizations := make([]string, 0, len(users))
	for _, u := range users {
		passions = append(passions, u.Passion)
		organizations = append(organizations, u.Organization)
	}
	return &dto.SuggestionsDTO{
		Passions:      util.DistinctNonEmpty(passions, suggestionLimit),
		Organizations: util.DistinctNonEmpty(organizations, suggestionLimit),
	}, nil
}

func (s *UserServiceImpl) Logout(ctx context.Context, token string, ttl time.Duration) error {
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return ErrParamInvalid
	}
	if ttl <= 0 {
		return nil
	}
	return redis.SetWithExpiration(ctx, consts.TokenRevokedKey+signature, true, ttl)
}
