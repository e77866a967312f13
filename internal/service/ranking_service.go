package service

import (
	"BrainScript/internal/api/config"
	"BrainScript/internal/api/dto"
	"BrainScript/internal/model"
	"BrainScript/internal/pkg/consts"
	"BrainScript/internal/pkg/metrics"
	"BrainScript/internal/pkg/redis"
	"BrainScript/internal/repository"
	"context"
	log "log/slog"
	"sort"
	"strconv"
	"time"
)

const (
	trendingCacheTTL   = time.Minute
	topWritersCacheTTL = time.Minute
	countCacheTTL      = 7 * 24 * time.Hour
	popularDefault     = 5
	popularMax         = 20
	profileRecentPosts = 20
)

// RankingService 只读的聚合视图：热门、作者榜、统计面板
type RankingService interface {
	GetTrending(ctx context.Context) ([]*dto.TrendingPostDTO, error)
	// RebuildTrending 重新计算热门榜并写入缓存
	RebuildTrending(ctx context.Context) ([]*dto.TrendingPostDTO, error)
	GetPopular(ctx context.Context, limit int) ([]*dto.PostDTO, error)
	GetTopWriters(ctx context.Context) ([]*dto.TopWriterDTO, error)
	GetAdminStats(ctx context.Context, callerID uint64) (*dto.AdminStatsDTO, error)
	GetMyStats(ctx context.Context, callerID uint64) (*dto.AuthorStatsDTO, error)
	GetPublicProfile(ctx context.Context, userID uint64) (*dto.PublicProfileDTO, error)

	GetLikeCount(ctx context.Context, postID uint64) (int64, error)
	GetCommentCount(ctx context.Context, postID uint64) (int64, error)
	GetSaveCount(ctx context.Context, postID uint64) (int64, error)
}

type rankingServiceImpl struct {
	postRepo repository.PostRepo
	userRepo repository.UserRepo
	cfg      config.EngagementConfig
	now      func() time.Time
}

func NewRankingService(postRepo repository.PostRepo, userRepo repository.UserRepo, cfg config.EngagementConfig) RankingService {
	return &rankingServiceImpl{
		postRepo: postRepo,
		userRepo: userRepo,
		cfg:      cfg,
		now:      time.Now,
	}
}

// trendingScore 浏览 1 分，点赞 2 分，评论 3 分
func trendingScore(post *model.Post) int64 {
	return post.Views + 2*post.LikesCount + 3*post.CommentsCount
}

func (s *rankingServiceImpl) trendingCutoff() time.Time {
	return s.now().AddDate(0, 0, -s.cfg.TrendingWindowDays)
}

func (s *rankingServiceImpl) GetTrending(ctx context.Context) ([]*dto.TrendingPostDTO, error) {
	var cached []*dto.TrendingPostDTO
	hit, err := redis.GetJSON(ctx, consts.TrendingKey, &cached)
	if err != nil {
		log.WarnContext(ctx, "read trending cache failed", "err", err)
	}
	if hit {
		// 缓存可能跨过窗口边界，读取时再按截止时间过滤一次
		cutoff := s.trendingCutoff().UnixMilli()
		out := make([]*dto.TrendingPostDTO, 0, len(cached))
		for _, item := range cached {
			if item.CreatedAt >= cutoff {
				out = append(out, item)
			}
		}
		return out, nil
	}
	return s.RebuildTrending(ctx)
}

func (s *rankingServiceImpl) RebuildTrending(ctx context.Context) ([]*dto.TrendingPostDTO, error) {
	defer metrics.ObserveRanking("trending", time.Now())

	posts, err := s.postRepo.ListCreatedAfter(ctx, s.trendingCutoff())
	if err != nil {
		return nil, err
	}

	// 稳定排序，同分时保持 created_at DESC, id DESC 的原始顺序
	sort.SliceStable(posts, func(i, j int) bool {
		return trendingScore(posts[i]) > trendingScore(posts[j])
	})
	if len(posts) > s.cfg.TrendingLimit {
		posts = posts[:s.cfg.TrendingLimit]
	}

	out := make([]*dto.TrendingPostDTO, 0, len(posts))
	for _, post := range posts {
		out = append(out, &dto.TrendingPostDTO{
			PostDTO: *toPostDTO(post, false),
			Score:   trendingScore(post),
		})
	}

	if err = redis.SetJSON(ctx, consts.TrendingKey, out, trendingCacheTTL); err != nil {
		log.WarnContext(ctx, "write trending cache failed", "err", err)
	}
	return out, nil
}

func (s *rankingServiceImpl) GetPopular(ctx context.Context, limit int) ([]*dto.PostDTO, error) {
	if limit <= 0 {
		limit = popularDefault
	}
	if limit > popularMax {
		limit = popularMax
	}
	posts, err := s.postRepo.ListPopular(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toPostDTOs(posts), nil
}

type writerTally struct {
	userID   uint64
	posts    int64
	views    int64
	comments int64
}

func (s *rankingServiceImpl) GetTopWriters(ctx context.Context) ([]*dto.TopWriterDTO, error) {
	var cached []*dto.TopWriterDTO
	if hit, err := redis.GetJSON(ctx, consts.TopWritersKey, &cached); err == nil && hit {
		return cached, nil
	}

	defer metrics.ObserveRanking("top_writers", time.Now())

	// 只看最近的一批帖子，更早的帖子不计入
	posts, err := s.postRepo.ListRecent(ctx, s.cfg.TopWritersScan)
	if err != nil {
		return nil, err
	}

	tallies := make([]*writerTally, 0)
	index := make(map[uint64]*writerTally)
	for _, post := range posts {
		tally, ok := index[post.UserID]
		if !ok {
			tally = &writerTally{userID: post.UserID}
			index[post.UserID] = tally
			tallies = append(tallies, tally)
		}
		tally.posts++
		tally.views += post.Views
		tally.comments += post.CommentsCount
	}

	sort.SliceStable(tallies, func(i, j int) bool {
		return tallies[i].posts > tallies[j].posts
	})
	if len(tallies) > s.cfg.TopWritersLimit {
		tallies = tallies[:s.cfg.TopWritersLimit]
	}

	ids := make([]uint64, 0, len(tallies))
	for _, tally := range tallies {
		ids = append(ids, tally.userID)
	}
	users, err := s.userRepo.GetUserByIds(ctx, ids)
	if err != nil {
		return nil, err
	}
	userMap := make(map[uint64]*model.User, len(users))
	for _, user := range users {
		userMap[user.ID] = user
	}

	out := make([]*dto.TopWriterDTO, 0, len(tallies))
	for _, tally := range tallies {
		user, ok := userMap[tally.userID]
		if !ok {
			continue
		}
		out = append(out, &dto.TopWriterDTO{
			Author:       toAuthorDTO(user),
			Passion:      user.Passion,
			Organization: user.Organization,
			Posts:        tally.posts,
			Views:        tally.views,
			Comments:     tally.comments,
		})
	}

	if err = redis.SetJSON(ctx, consts.TopWritersKey, out, topWritersCacheTTL); err != nil {
		log.WarnContext(ctx, "write top writers cache failed", "err", err)
	}
	return out, nil
}

func (s *rankingServiceImpl) GetAdminStats(ctx context.Context, callerID uint64) (*dto.AdminStatsDTO, error) {
	if _, err := requireRole(ctx, s.userRepo, callerID, consts.RoleAdmin); err != nil {
		return nil, err
	}

	totalUsers, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	adminUsers, err := s.userRepo.CountUsersByRole(ctx, consts.RoleAdmin)
	if err != nil {
		return nil, err
	}
	totalPosts, err := s.postRepo.CountPosts(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.AdminStatsDTO{
		TotalUsers:   totalUsers,
		AdminUsers:   adminUsers,
		RegularUsers: totalUsers - adminUsers,
		TotalPosts:   totalPosts,
	}, nil
}

// GetMyStats 未登录时返回 nil，由调用方决定如何展示
func (s *rankingServiceImpl) GetMyStats(ctx context.Context, callerID uint64) (*dto.AuthorStatsDTO, error) {
	if callerID == 0 {
		return nil, nil
	}
	totals, err := s.postRepo.SumByAuthor(ctx, callerID, false)
	if err != nil {
		return nil, err
	}
	return toAuthorStatsDTO(totals.Posts, totals.Views, totals.Likes, totals.Comments, totals.Saves, totals.ReadTimeMs), nil
}

func (s *rankingServiceImpl) GetPublicProfile(ctx context.Context, userID uint64) (*dto.PublicProfileDTO, error) {
	user, err := s.userRepo.GetUserById(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	totals, err := s.postRepo.SumByAuthor(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.ListByAuthor(ctx, userID, true, profileRecentPosts)
	if err != nil {
		return nil, err
	}
	recent := make([]*dto.PostDTO, 0, len(posts))
	for _, post := range posts {
		item := toPostDTO(post, false)
		item.Author = toAuthorDTO(user)
		recent = append(recent, item)
	}

	return &dto.PublicProfileDTO{
		User:        toUserDTO(user, false),
		Stats:       toAuthorStatsDTO(totals.Posts, totals.Views, totals.Likes, totals.Comments, totals.Saves, totals.ReadTimeMs),
		RecentPosts: recent,
	}, nil
}

func (s *rankingServiceImpl) GetLikeCount(ctx context.Context, postID uint64) (int64, error) {
	return s.cachedCount(ctx, consts.PostLikeKey, postID, func(p *model.Post) int64 { return p.LikesCount })
}

func (s *rankingServiceImpl) GetCommentCount(ctx context.Context, postID uint64) (int64, error) {
	return s.cachedCount(ctx, consts.PostCommentKey, postID, func(p *model.Post) int64 { return p.CommentsCount })
}

func (s *rankingServiceImpl) GetSaveCount(ctx context.Context, postID uint64) (int64, error) {
	return s.cachedCount(ctx, consts.PostSaveKey, postID, func(p *model.Post) int64 { return p.SavesCount })
}

// cachedCount 先读缓存，未命中回源 posts 行的反范式计数
// 回填只用 SetNX：读到行之后若有写路径已经写入新值，旧值不会覆盖它
func (s *rankingServiceImpl) cachedCount(ctx context.Context, prefix string, postID uint64, pick func(*model.Post) int64) (int64, error) {
	key := prefix + strconv.FormatUint(postID, 10)
	count, err := redis.GetInt64(ctx, key)
	if err == nil {
		return count, nil
	}
	if !redis.IsNil(err) {
		log.WarnContext(ctx, "read count cache failed", "key", key, "err", err)
	}

	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return 0, err
	}
	if post == nil {
		return 0, ErrPostNotFound
	}
	count = pick(post)
	if _, err = redis.SetNX(ctx, key, count, countCacheTTL); err != nil {
		log.WarnContext(ctx, "fill count cache failed", "key", key, "err", err)
	}
	return count, nil
}
