package service

import (
	"BrainScript/internal/pkg/es"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearchRepo struct {
	es.SearchRepo
	queries []string
	err     error
}

func (s *stubSearchRepo) SearchPosts(_ context.Context, query string, size int) ([]*es.PostES, error) {
	s.queries = append(s.queries, "posts:"+query)
	if s.err != nil {
		return nil, s.err
	}
	return []*es.PostES{{ID: 1, Title: "Two Sum", Slug: "two-sum"}}, nil
}

func (s *stubSearchRepo) SearchUsers(_ context.Context, query string, size int) ([]*es.UserES, error) {
	return []*es.UserES{{ID: 2, Name: "Ada", Email: "ada@example.com"}}, nil
}

func TestSearchAll(t *testing.T) {
	ctx := context.Background()
	repo := &stubSearchRepo{}
	svc := NewSearchService(repo)

	res, err := svc.SearchAll(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, res.Posts)
	assert.Empty(t, res.Users)
	assert.Empty(t, repo.queries)

	res, err = svc.SearchAll(ctx, " sum ")
	require.NoError(t, err)
	require.Len(t, res.Posts, 1)
	require.Len(t, res.Users, 1)
	assert.Equal(t, "two-sum", res.Posts[0].Slug)
	assert.Equal(t, "Ada", res.Users[0].Name)
	assert.Equal(t, []string{"posts:sum"}, repo.queries)

	repo.err = errors.New("es down")
	_, err = svc.SearchAll(ctx, "sum")
	assert.Error(t, err)
}
