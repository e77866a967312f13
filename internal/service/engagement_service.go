package service

import (
	"BrainScript/internal/api/dto"
	"BrainScript/internal/model"
	"BrainScript/internal/pkg/consts"
	"BrainScript/internal/pkg/database"
	"BrainScript/internal/pkg/metrics"
	"BrainScript/internal/pkg/redis"
	"BrainScript/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

const (
	maxCommentLength = 5000
	// countRefreshTTL 写路径回填的计数只短暂保留，乱序写回的旧值很快过期
	countRefreshTTL = time.Minute
)

type EngagementService interface {
	ToggleLike(ctx context.Context, userID, postID uint64) (*dto.ToggleResultDTO, error)
	HasLiked(ctx context.Context, userID, postID uint64) (bool, error)
	ToggleSave(ctx context.Context, userID, postID uint64) (*dto.ToggleResultDTO, error)
	HasSaved(ctx context.Context, userID, postID uint64) (bool, error)
	GetSavedPosts(ctx context.Context, userID uint64) ([]*dto.PostDTO, error)

	ListComments(ctx context.Context, postID uint64) ([]*dto.CommentDTO, error)
	CreateComment(ctx context.Context, userID uint64, req *dto.CommentCreateDTO) (*dto.CommentDTO, error)
	UpdateComment(ctx context.Context, userID, commentID uint64, content string) (*dto.CommentDTO, error)
	DeleteComment(ctx context.Context, userID, commentID uint64) error
}

type engagementServiceImpl struct {
	engagementRepo      repository.EngagementRepo
	postRepo            repository.PostRepo
	userRepo            repository.UserRepo
	notificationService NotificationService
}

func NewEngagementService(
	engagementRepo repository.EngagementRepo,
	postRepo repository.PostRepo,
	userRepo repository.UserRepo,
	notificationService NotificationService,
) EngagementService {
	return &engagementServiceImpl{
		engagementRepo:      engagementRepo,
		postRepo:            postRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
	}
}

func (s *engagementServiceImpl) ToggleLike(ctx context.Context, userID, postID uint64) (*dto.ToggleResultDTO, error) {
	post, err := s.loadPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	liked, err := s.engagementRepo.ToggleLike(ctx, userID, postID)
	if err != nil {
		if liked, err = toggleFallback(err); err != nil {
			return nil, err
		}
	} else if liked {
		s.notificationService.Notify(ctx, post.UserID, userID, consts.NotificationLike, postID, "")
	}
	metrics.ObserveToggle("like", liked)

	count, err := s.afterCounterChange(ctx, postID, consts.PostLikeKey, func(p *model.Post) int64 { return p.LikesCount })
	if err != nil {
		return nil, err
	}
	return &dto.ToggleResultDTO{Active: liked, Count: count}, nil
}

func (s *engagementServiceImpl) HasLiked(ctx context.Context, userID, postID uint64) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return s.engagementRepo.CheckLikeExists(ctx, userID, postID)
}

func (s *engagementServiceImpl) ToggleSave(ctx context.Context, userID, postID uint64) (*dto.ToggleResultDTO, error) {
	if _, err := s.loadPost(ctx, userID, postID); err != nil {
		return nil, err
	}

	saved, err := s.engagementRepo.ToggleSave(ctx, userID, postID)
	if err != nil {
		if saved, err = toggleFallback(err); err != nil {
			return nil, err
		}
	}
	metrics.ObserveToggle("save", saved)

	count, err := s.afterCounterChange(ctx, postID, consts.PostSaveKey, func(p *model.Post) int64 { return p.SavesCount })
	if err != nil {
		return nil, err
	}
	return &dto.ToggleResultDTO{Active: saved, Count: count}, nil
}

func (s *engagementServiceImpl) HasSaved(ctx context.Context, userID, postID uint64) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return s.engagementRepo.CheckSaveExists(ctx, userID, postID)
}

// GetSavedPosts 按收藏时间倒序，已删除的帖子被跳过
func (s *engagementServiceImpl) GetSavedPosts(ctx context.Context, userID uint64) ([]*dto.PostDTO, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	ids, err := s.engagementRepo.GetSavedPostIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.GetPostByIds(ctx, ids)
	if err != nil {
		return nil, err
	}
	postMap := make(map[uint64]*model.Post, len(posts))
	for _, post := range posts {
		postMap[post.ID] = post
	}

	out := make([]*dto.PostDTO, 0, len(ids))
	for _, id := range ids {
		if post, ok := postMap[id]; ok {
			out = append(out, toPostDTO(post, false))
		}
	}
	return out, nil
}

func (s *engagementServiceImpl) ListComments(ctx context.Context, postID uint64) ([]*dto.CommentDTO, error) {
	comments, err := s.engagementRepo.ListCommentsByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	userIDs := make([]uint64, 0, len(comments))
	for _, c := range comments {
		userIDs = append(userIDs, c.UserID)
	}
	users, err := s.userRepo.GetUserByIds(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	userMap := make(map[uint64]*model.User, len(users))
	for _, u := range users {
		userMap[u.ID] = u
	}

	out := make([]*dto.CommentDTO, 0, len(comments))
	for _, c := range comments {
		out = append(out, toCommentDTO(c, userMap[c.UserID]))
	}
	return out, nil
}

func (s *engagementServiceImpl) CreateComment(ctx context.Context, userID uint64, req *dto.CommentCreateDTO) (*dto.CommentDTO, error) {
	content, err := normalizeComment(req.Content)
	if err != nil {
		return nil, err
	}
	post, err := s.loadPost(ctx, userID, req.PostID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostID:  req.PostID,
		UserID:  userID,
		Content: content,
	}
	if err = s.engagementRepo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	s.notificationService.Notify(ctx, post.UserID, userID, consts.NotificationComment, req.PostID, content)
	s.refreshCommentCount(ctx, req.PostID)

	author, err := s.userRepo.GetUserById(ctx, userID)
	if err != nil {
		log.WarnContext(ctx, "load comment author failed", "user_id", userID, "err", err)
	}
	return toCommentDTO(comment, author), nil
}

func (s *engagementServiceImpl) UpdateComment(ctx context.Context, userID, commentID uint64, content string) (*dto.CommentDTO, error) {
	content, err := normalizeComment(content)
	if err != nil {
		return nil, err
	}
	comment, err := s.ownedComment(ctx, userID, commentID)
	if err != nil {
		return nil, err
	}
	if err = s.engagementRepo.UpdateCommentContent(ctx, commentID, content); err != nil {
		return nil, err
	}
	updated, err := s.engagementRepo.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrCommentNotFound
	}

	author, err := s.userRepo.GetUserById(ctx, comment.UserID)
	if err != nil {
		log.WarnContext(ctx, "load comment author failed", "user_id", comment.UserID, "err", err)
	}
	return toCommentDTO(updated, author), nil
}

func (s *engagementServiceImpl) DeleteComment(ctx context.Context, userID, commentID uint64) error {
	comment, err := s.ownedComment(ctx, userID, commentID)
	if err != nil {
		return err
	}
	if err = s.engagementRepo.DeleteComment(ctx, comment); err != nil {
		return err
	}
	s.refreshCommentCount(ctx, comment.PostID)
	return nil
}

func (s *engagementServiceImpl) ownedComment(ctx context.Context, userID, commentID uint64) (*model.Comment, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	comment, err := s.engagementRepo.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, ErrCommentNotFound
	}
	if comment.UserID != userID {
		return nil, UnauthorizedError
	}
	return comment, nil
}

func normalizeComment(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" || utf8.RuneCountInString(content) > maxCommentLength {
		return "", ErrParamInvalid
	}
	return content, nil
}

func (s *engagementServiceImpl) loadPost(ctx context.Context, userID, postID uint64) (*model.Post, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *engagementServiceImpl) freshCount(ctx context.Context, postID uint64, pick func(*model.Post) int64) (int64, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return 0, err
	}
	if post == nil {
		return 0, ErrPostNotFound
	}
	return pick(post), nil
}

// toggleFallback 并发切换撞上唯一索引说明行已存在，其余错误原样返回
func toggleFallback(err error) (bool, error) {
	if database.IsDuplicateKey(err) {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, ErrPostNotFound
	}
	return false, err
}

// afterCounterChange 登记到待快照集合，并用提交后的计数覆盖缓存
// 读路径只用 SetNX 回填，不会覆盖这里写入的值
func (s *engagementServiceImpl) afterCounterChange(ctx context.Context, postID uint64, countKey string, pick func(*model.Post) int64) (int64, error) {
	markPostDirty(ctx, postID)
	key := countKey + strconv.FormatUint(postID, 10)

	count, err := s.freshCount(ctx, postID, pick)
	if err != nil {
		dropCountCache(ctx, postID, key)
		return 0, err
	}
	if err = redis.SetWithExpiration(ctx, key, count, countRefreshTTL); err != nil {
		log.WarnContext(ctx, "refresh count cache failed", "post_id", postID, "err", err)
		dropCountCache(ctx, postID, key)
	}
	return count, nil
}

// refreshCommentCount 评论已经落库，计数刷新失败只记日志
func (s *engagementServiceImpl) refreshCommentCount(ctx context.Context, postID uint64) {
	if _, err := s.afterCounterChange(ctx, postID, consts.PostCommentKey, func(p *model.Post) int64 { return p.CommentsCount }); err != nil {
		log.WarnContext(ctx, "refresh comment count failed", "post_id", postID, "err", err)
	}
}

func dropCountCache(ctx context.Context, postID uint64, key string) {
	if err := redis.DeleteKey(ctx, key); err != nil {
		log.WarnContext(ctx, "invalidate count cache failed", "post_id", postID, "err", err)
	}
}

func markPostDirty(ctx context.Context, postID uint64) {
	if err := redis.SAdd(ctx, consts.PostDirtyKey, postID); err != nil {
		log.WarnContext(ctx, "mark post dirty failed", "post_id", postID, "err", err)
	}
}
