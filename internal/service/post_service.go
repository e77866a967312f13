package service

import (
	"BrainScript/internal/api/dto"
	"BrainScript/internal/model"
	"BrainScript/internal/pkg/consts"
	"BrainScript/internal/pkg/database"
	"BrainScript/internal/pkg/redis"
	"BrainScript/internal/pkg/util"
	"BrainScript/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
)

const (
	recentPostsLimit = 10
	// MaxReadTimeReport 单次上报的阅读时长上限
	MaxReadTimeReport = time.Hour
)

type PostService interface {
	CreatePost(ctx context.Context, userID uint64, req *dto.CreatePostDTO) (*dto.PostDTO, error)
	UpdatePost(ctx context.Context, userID, postID uint64, req *dto.UpdatePostDTO) (*dto.PostDTO, error)
	DeletePost(ctx context.Context, userID, postID uint64) error

	GetBySlug(ctx context.Context, slug string) (*dto.PostDTO, error)
	GetByID(ctx context.Context, postID uint64) (*dto.PostDTO, error)
	GetRecent(ctx context.Context) ([]*dto.PostDTO, error)
	GetMyPosts(ctx context.Context, userID uint64) ([]*dto.PostDTO, error)
	CheckTitle(ctx context.Context, title string) (*dto.CheckTitleDTO, error)
	ListCategories(ctx context.Context) ([]string, error)

	IncrementView(ctx context.Context, postID uint64) error
	// TrackReadTime 把一段阅读时长累加到帖子上
	TrackReadTime(ctx context.Context, postID uint64, durationMs int64) error
}

type postServiceImpl struct {
	postRepo            repository.PostRepo
	userRepo            repository.UserRepo
	notificationService NotificationService
}

func NewPostService(postRepo repository.PostRepo, userRepo repository.UserRepo, notificationService NotificationService) PostService {
	return &postServiceImpl{
		postRepo:            postRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
	}
}

func (s *postServiceImpl) CreatePost(ctx context.Context, userID uint64, req *dto.CreatePostDTO) (*dto.PostDTO, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return nil, ErrParamInvalid
	}
	if !util.IsValidSlug(req.Slug) {
		return nil, ErrInvalidSlug
	}
	exists, err := s.postRepo.ExistsSlug(ctx, req.Slug, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrSlugExists
	}

	post := &model.Post{
		UserID:          userID,
		Title:           title,
		Slug:            req.Slug,
		Content:         req.Content,
		Excerpt:         req.Excerpt,
		CoverImage:      req.CoverImage,
		Published:       true,
		Category:        strings.TrimSpace(req.Category),
		Tags:            util.DistinctNonEmpty(req.Tags, 20),
		PostType:        consts.PostTypeArticle,
		ProblemNumber:   req.ProblemNumber,
		ProblemName:     req.ProblemName,
		Difficulty:      req.Difficulty,
		LeetcodeURL:     req.LeetcodeURL,
		TimeComplexity:  req.TimeComplexity,
		SpaceComplexity: req.SpaceComplexity,
	}
	if req.Published != nil {
		post.Published = *req.Published
	}
	if req.PostType != "" {
		post.PostType = req.PostType
	}

	if err = s.postRepo.CreatePost(ctx, post); err != nil {
		// 并发下检查与插入之间被抢先
		if database.IsDuplicateKey(err) {
			return nil, ErrSlugExists
		}
		return nil, err
	}
	log.InfoContext(ctx, "post created", "post_id", post.ID, "user_id", userID)
	return s.GetByID(ctx, post.ID)
}

func (s *postServiceImpl) UpdatePost(ctx context.Context, userID, postID uint64, req *dto.UpdatePostDTO) (*dto.PostDTO, error) {
	post, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrParamInvalid
		}
		fields["title"] = title
	}
	if req.Slug != nil && *req.Slug != post.Slug {
		if !util.IsValidSlug(*req.Slug) {
			return nil, ErrInvalidSlug
		}
		exists, err := s.postRepo.ExistsSlug(ctx, *req.Slug, postID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrSlugExists
		}
		fields["slug"] = *req.Slug
	}
	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			return nil, ErrParamInvalid
		}
		fields["content"] = *req.Content
	}
	if req.Excerpt != nil {
		fields["excerpt"] = *req.Excerpt
	}
	if req.CoverImage != nil {
		fields["cover_image"] = *req.CoverImage
	}
	if req.Published != nil {
		fields["published"] = *req.Published
	}
	if req.Category != nil {
		fields["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Tags != nil {
		fields["tags"] = tagsColumn(util.DistinctNonEmpty(req.Tags, 20))
	}

	if len(fields) > 0 {
		if err = s.postRepo.UpdatePost(ctx, postID, fields); err != nil {
			if database.IsDuplicateKey(err) {
				return nil, ErrSlugExists
			}
			return nil, err
		}
	}
	return s.GetByID(ctx, postID)
}

// DeletePost 作者或管理员可删除；关系数据在一个事务里级联清理，通知与缓存尽力清理
func (s *postServiceImpl) DeletePost(ctx context.Context, userID, postID uint64) error {
	if userID == 0 {
		return ErrUnauthenticated
	}
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.UserID != userID {
		if _, err = requireRole(ctx, s.userRepo, userID, consts.RoleAdmin); err != nil {
			return err
		}
	}

	if err = s.postRepo.DeletePostCascade(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	if err = s.notificationService.DeleteByPost(ctx, postID); err != nil {
		log.WarnContext(ctx, "delete post notifications failed", "post_id", postID, "err", err)
	}
	id := strconv.FormatUint(postID, 10)
	if err = redis.DeleteKey(ctx,
		consts.PostLikeKey+id,
		consts.PostSaveKey+id,
		consts.PostCommentKey+id,
		consts.PostMetrics7Days+id,
		consts.PostMetrics30Days+id,
	); err != nil {
		log.WarnContext(ctx, "delete post cache failed", "post_id", postID, "err", err)
	}
	log.InfoContext(ctx, "post deleted", "post_id", postID, "operator", userID)
	return nil
}

func (s *postServiceImpl) GetBySlug(ctx context.Context, slug string) (*dto.PostDTO, error) {
	post, err := s.postRepo.GetPostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return toPostDTO(post, true), nil
}

func (s *postServiceImpl) GetByID(ctx context.Context, postID uint64) (*dto.PostDTO, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return toPostDTO(post, true), nil
}

func (s *postServiceImpl) GetRecent(ctx context.Context) ([]*dto.PostDTO, error) {
	posts, err := s.postRepo.ListRecent(ctx, recentPostsLimit)
	if err != nil {
		return nil, err
	}
	return toPostDTOs(posts), nil
}

// GetMyPosts 包含草稿
func (s *postServiceImpl) GetMyPosts(ctx context.Context, userID uint64) ([]*dto.PostDTO, error) {
	if userID == 0 {
		return []*dto.PostDTO{}, nil
	}
	posts, err := s.postRepo.ListByAuthor(ctx, userID, false, 0)
	if err != nil {
		return nil, err
	}
	return toPostDTOs(posts), nil
}

func (s *postServiceImpl) CheckTitle(ctx context.Context, title string) (*dto.CheckTitleDTO, error) {
	slug := util.Slugify(title)
	if slug == "" {
		return nil, ErrParamInvalid
	}
	exists, err := s.postRepo.ExistsSlug(ctx, slug, 0)
	if err != nil {
		return nil, err
	}
	return &dto.CheckTitleDTO{Slug: slug, Available: !exists}, nil
}

func (s *postServiceImpl) ListCategories(ctx context.Context) ([]string, error) {
	return s.postRepo.ListCategories(ctx)
}

func (s *postServiceImpl) IncrementView(ctx context.Context, postID uint64) error {
	if err := s.postRepo.IncrementViews(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	markPostDirty(ctx, postID)
	return nil
}

func (s *postServiceImpl) TrackReadTime(ctx context.Context, postID uint64, durationMs int64) error {
	if durationMs <= 0 || durationMs > MaxReadTimeReport.Milliseconds() {
		return ErrParamInvalid
	}
	if err := s.postRepo.AddReadTime(ctx, postID, durationMs); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	markPostDirty(ctx, postID)
	return nil
}

func (s *postServiceImpl) ownedPost(ctx context.Context, userID, postID uint64) (*model.Post, error) {
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
	if post.UserID != userID {
		return nil, UnauthorizedError
	}
	return post, nil
}

// tagsColumn map 更新不走序列化器，这里手动编码成 JSON 列
func tagsColumn(tags []string) string {
	b, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(b)
}
