package service

import (
	"BrainScript/internal/api/config"
	"BrainScript/internal/api/dto"
	"BrainScript/internal/model"
	"BrainScript/internal/pkg/consts"
	"BrainScript/internal/pkg/metrics"
	"BrainScript/internal/repository"
	"context"
	"regexp"
	"strconv"
	"time"
)

var sessionTokenRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

// ReaderIdentity 在线状态使用的弱身份，匿名会话令牌只用于去重，不代表归属
type ReaderIdentity struct {
	UserID uint64
	Key    string
}

// ResolveIdentity 登录用户为 user:{id}，带合法会话令牌的匿名读者为 anon:{token}，其余共用 anon
func ResolveIdentity(userID uint64, sessionToken string) ReaderIdentity {
	if userID > 0 {
		return ReaderIdentity{UserID: userID, Key: "user:" + strconv.FormatUint(userID, 10)}
	}
	if sessionTokenRegex.MatchString(sessionToken) {
		return ReaderIdentity{Key: "anon:" + sessionToken}
	}
	return ReaderIdentity{Key: consts.AnonymousIdentity}
}

// Kind 用于指标标签
func (r ReaderIdentity) Kind() string {
	switch {
	case r.UserID > 0:
		return "user"
	case r.Key == consts.AnonymousIdentity:
		return "legacy"
	default:
		return "anon"
	}
}

type PresenceService interface {
	Heartbeat(ctx context.Context, postID uint64, identity ReaderIdentity) error
	GetActiveReaders(ctx context.Context, postID uint64) ([]*dto.ReaderDTO, error)
	GetViewerCount(ctx context.Context, postID uint64) (int64, error)
}

type presenceServiceImpl struct {
	presenceRepo repository.PresenceRepo
	postRepo     repository.PostRepo
	userRepo     repository.UserRepo
	cfg          config.EngagementConfig
	now          func() time.Time
}

func NewPresenceService(presenceRepo repository.PresenceRepo, postRepo repository.PostRepo, userRepo repository.UserRepo, cfg config.EngagementConfig) PresenceService {
	return &presenceServiceImpl{
		presenceRepo: presenceRepo,
		postRepo:     postRepo,
		userRepo:     userRepo,
		cfg:          cfg,
		now:          time.Now,
	}
}

func (s *presenceServiceImpl) windowStart() int64 {
	window := time.Duration(s.cfg.PresenceWindowSecond) * time.Second
	return s.now().Add(-window).UnixMilli()
}

func (s *presenceServiceImpl) Heartbeat(ctx context.Context, postID uint64, identity ReaderIdentity) (err error) {
	defer func() { metrics.ObserveHeartbeat(identity.Kind(), err) }()

	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	return s.presenceRepo.Upsert(ctx, &model.Presence{
		PostID:    postID,
		UserID:    identity.UserID,
		Identity:  identity.Key,
		UpdatedAt: s.now().UnixMilli(),
	})
}

// GetActiveReaders 作者本人不出现在列表中
func (s *presenceServiceImpl) GetActiveReaders(ctx context.Context, postID uint64) ([]*dto.ReaderDTO, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	rows, err := s.presenceRepo.FindActive(ctx, postID, s.windowStart(), s.cfg.PresenceLimit)
	if err != nil {
		return nil, err
	}

	userIDs := make([]uint64, 0, len(rows))
	for _, row := range rows {
		if row.UserID > 0 && row.UserID != post.UserID {
			userIDs = append(userIDs, row.UserID)
		}
	}
	users, err := s.userRepo.GetUserByIds(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	userMap := make(map[uint64]*model.User, len(users))
	for _, user := range users {
		userMap[user.ID] = user
	}

	readers := make([]*dto.ReaderDTO, 0, len(rows))
	for _, row := range rows {
		if row.UserID > 0 && row.UserID == post.UserID {
			continue
		}
		reader := &dto.ReaderDTO{LastSeen: row.UpdatedAt}
		if row.UserID == 0 {
			reader.ID = "presence-" + strconv.FormatUint(row.ID, 10)
			reader.Name = consts.AnonymousReaderName
		} else if user, ok := userMap[row.UserID]; ok {
			reader.ID = strconv.FormatUint(user.ID, 10)
			reader.Name = user.Name
			reader.Image = user.Image
		} else {
			reader.ID = strconv.FormatUint(row.UserID, 10)
			reader.Name = consts.UnknownUserName
		}
		readers = append(readers, reader)
	}
	return readers, nil
}

func (s *presenceServiceImpl) GetViewerCount(ctx context.Context, postID uint64) (int64, error) {
	return s.presenceRepo.CountActive(ctx, postID, s.windowStart())
}
