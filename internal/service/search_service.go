package service

import (
	"BrainScript/internal/api/dto"
	"BrainScript/internal/pkg/es"
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
)

const (
	searchPostSize = 5
	searchUserSize = 3
)

type SearchService interface {
	SearchAll(ctx context.Context, query string) (*dto.SearchResultDTO, error)
}

type searchServiceImpl struct {
	searchRepo es.SearchRepo
}

func NewSearchService(searchRepo es.SearchRepo) SearchService {
	return &searchServiceImpl{searchRepo: searchRepo}
}

// SearchAll 帖子与用户并发检索
func (s *searchServiceImpl) SearchAll(ctx context.Context, query string) (*dto.SearchResultDTO, error) {
	res := &dto.SearchResultDTO{
		Posts: make([]*dto.SearchPostDTO, 0),
		Users: make([]*dto.SearchUserDTO, 0),
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return res, nil
	}

	var posts []*es.PostES
	var users []*es.UserES
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		posts, err = s.searchRepo.SearchPosts(gCtx, query, searchPostSize)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = s.searchRepo.SearchUsers(gCtx, query, searchUserSize)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, p := range posts {
		res.Posts = append(res.Posts, &dto.SearchPostDTO{
			ID:       p.ID,
			Title:    p.Title,
			Slug:     p.Slug,
			Excerpt:  p.Excerpt,
			Category: p.Category,
		})
	}
	for _, u := range users {
		res.Users = append(res.Users, &dto.SearchUserDTO{
			ID:    u.ID,
			Name:  u.Name,
			Image: u.Image,
		})
	}
	return res, nil
}
