package handler

import (
	"BrainScript/internal/api/dto"
	"BrainScript/internal/pkg/response"
	"BrainScript/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type PostHandler struct {
	postSvc       service.PostService
	rankingSvc    service.RankingService
	engagementSvc service.EngagementService
	presenceSvc   service.PresenceService
}

func NewPostHandler(
	postSvc service.PostService,
	rankingSvc service.RankingService,
	engagementSvc service.EngagementService,
	presenceSvc service.PresenceService,
) *PostHandler {
	return &PostHandler{
		postSvc:       postSvc,
		rankingSvc:    rankingSvc,
		engagementSvc: engagementSvc,
		presenceSvc:   presenceSvc,
	}
}

func (s *PostHandler) GetRecent(c *gin.Context) {
	posts, err := s.postSvc.GetRecent(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, posts)
}

func (s *PostHandler) GetTrending(c *gin.Context) {
	posts, err := s.rankingSvc.GetTrending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, posts)
}

func (s *PostHandler) GetPopular(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, service.ErrParamInvalid)
			return
		}
		limit = n
	}

	posts, err := s.rankingSvc.GetPopular(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, posts)
}

func (s *PostHandler) ListCategories(c *gin.Context) {
	categories, err := s.postSvc.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, categories)
}

// CheckTitle 标题生成的 slug 是否已被占用
func (s *PostHandler) CheckTitle(c *gin.Context) {
	title := c.Query("title")
	if title == "" {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	result, err := s.postSvc.CheckTitle(c.Request.Context(), title)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *PostHandler) GetBySlug(c *gin.Context) {
	post, err := s.postSvc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

func (s *PostHandler) GetPost(c *gin.Context) {
	postID, err := uintParam(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	post, err := s.postSvc.GetByID(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

// GetPostState 详情页侧栏：计数、在线人数与当前用户的点赞收藏状态
func (s *PostHandler) GetPostState(c *gin.Context) {
	userID := c.GetUint64("user_id")
	postID, err := uintParam(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	post, err := s.postSvc.GetByID(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, err)
		return
	}

	state := &dto.PostStateDTO{ViewCount: post.Views}
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		state.LikeCount, err = s.rankingSvc.GetLikeCount(ctx, postID)
		return
	})
	g.Go(func() (err error) {
		state.CommentCount, err = s.rankingSvc.GetCommentCount(ctx, postID)
		return
	})
	g.Go(func() (err error) {
		state.SaveCount, err = s.rankingSvc.GetSaveCount(ctx, postID)
		return
	})
	g.Go(func() (err error) {
		state.ViewerCount, err = s.presenceSvc.GetViewerCount(ctx, postID)
		return
	})
	if userID != 0 {
		g.Go(func() (err error) {
			state.IsLiked, err = s.engagementSvc.HasLiked(ctx, userID, postID)
			return
		})
		g.Go(func() (err error) {
			state.IsSaved, err = s.engagementSvc.HasSaved(ctx, userID, postID)
			return
		})
	}
	if err = g.Wait(); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, state)
}

func (s *PostHandler) IncrementView(c *gin.Context) {
	postID, err := uintParam(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err = s.postSvc.IncrementView(c.Request.Context(), postID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// TrackReadTime 客户端自行累计的阅读时长
func (s *PostHandler) TrackReadTime(c *gin.Context) {
	postID, err := uintParam(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.ReadTimeDTO
	if err = c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	if err = s.postSvc.TrackReadTime(c.Request.Context(), postID, req.DurationMs); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *PostHandler) CreatePost(c *gin.Context) {
	userID := c.GetUint64("user_id")

	var req dto.CreatePostDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	post, err := s.postSvc.CreatePost(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

func (s *PostHandler) UpdatePost(c *gin.Context) {
	userID := c.GetUint64("user_id")
	postID, err := uintParam(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdatePostDTO
	if err = c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	post, err := s.postSvc.UpdatePost(c.Request.Context(), userID, postID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

func (s *PostHandler) DeletePost(c *gin.Context) {
	userID := c.GetUint64("user_id")
	postID, err := uintParam(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err = s.postSvc.DeletePost(c.Request.Context(), userID, postID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *PostHandler) GetMyPosts(c *gin.Context) {
	userID := c.GetUint64("user_id")

	posts, err := s.postSvc.GetMyPosts(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, posts)
}

// GetMyStats 未登录时返回 data:null
func (s *PostHandler) GetMyStats(c *gin.Context) {
	userID := c.GetUint64("user_id")

	stats, err := s.rankingSvc.GetMyStats(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}
