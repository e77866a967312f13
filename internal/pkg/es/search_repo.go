package es

import (
	"context"
	"errors"
	log "log/slog"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/versiontype"
	"github.com/goccy/go-json"
)

// SearchRepo 帖子与用户两个索引的写入与检索
type SearchRepo interface {
	IndexPost(ctx context.Context, post *PostES, version int64) error
	DeletePost(ctx context.Context, id uint64) error
	SearchPosts(ctx context.Context, query string, size int) ([]*PostES, error)

	IndexUser(ctx context.Context, user *UserES, version int64) error
	DeleteUser(ctx context.Context, id uint64) error
	SearchUsers(ctx context.Context, query string, size int) ([]*UserES, error)
}

type SearchRepoImpl struct {
	client *elasticsearch.TypedClient
}

func NewSearchRepo(client *elasticsearch.TypedClient) SearchRepo {
	return &SearchRepoImpl{client: client}
}

func (s *SearchRepoImpl) IndexPost(ctx context.Context, post *PostES, version int64) error {
	return s.index(ctx, PostIndex, post.ID, post, version)
}

func (s *SearchRepoImpl) DeletePost(ctx context.Context, id uint64) error {
	return s.delete(ctx, PostIndex, id)
}

// SearchPosts 标题权重加倍，只检索已发布的帖子
func (s *SearchRepoImpl) SearchPosts(ctx context.Context, query string, size int) ([]*PostES, error) {
	resp, err := s.client.Search().
		Index(PostIndex).
		Query(&types.Query{
			Bool: &types.BoolQuery{
				Must: []types.Query{
					{MultiMatch: &types.MultiMatchQuery{
						Query:  query,
						Fields: []string{"title^2", "content", "excerpt"},
					}},
				},
				Filter: []types.Query{
					{Term: map[string]types.TermQuery{"published": {Value: true}}},
				},
			},
		}).
		Source_(&types.SourceFilter{Excludes: []string{"content"}}).
		Size(size).
		Do(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*PostES, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		if hit.Source_ == nil {
			continue
		}
		var post PostES
		if err = json.Unmarshal(hit.Source_, &post); err != nil {
			continue
		}
		results = append(results, &post)
	}
	return results, nil
}

func (s *SearchRepoImpl) IndexUser(ctx context.Context, user *UserES, version int64) error {
	return s.index(ctx, UserIndex, user.ID, user, version)
}

func (s *SearchRepoImpl) DeleteUser(ctx context.Context, id uint64) error {
	return s.delete(ctx, UserIndex, id)
}

func (s *SearchRepoImpl) SearchUsers(ctx context.Context, query string, size int) ([]*UserES, error) {
	resp, err := s.client.Search().
		Index(UserIndex).
		Query(&types.Query{
			MultiMatch: &types.MultiMatchQuery{
				Query:  query,
				Fields: []string{"name^2", "email"},
			},
		}).
		Size(size).
		Do(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*UserES, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		if hit.Source_ == nil {
			continue
		}
		var user UserES
		if err = json.Unmarshal(hit.Source_, &user); err != nil {
			continue
		}
		results = append(results, &user)
	}
	return results, nil
}

// index 使用外部版本号写入，旧版本的 binlog 会被 ES 以 409 拒绝
func (s *SearchRepoImpl) index(ctx context.Context, index string, id uint64, doc interface{}, version int64) error {
	_, err := s.client.Index(index).
		Id(strconv.FormatUint(id, 10)).
		Document(doc).
		Version(strconv.FormatInt(version, 10)).
		VersionType(versiontype.External).
		Do(ctx)

	if err != nil {
		var e *types.ElasticsearchError
		if errors.As(err, &e) && e.Status == ConflictCode {
			log.WarnContext(ctx, "Version conflict detected, skipping old data",
				"index", index,
				"id", id,
				"version", version)
			return nil
		}
		return err
	}
	return nil
}

func (s *SearchRepoImpl) delete(ctx context.Context, index string, id uint64) error {
	_, err := s.client.Delete(index, strconv.FormatUint(id, 10)).Do(ctx)
	if err != nil {
		var e *types.ElasticsearchError
		if errors.As(err, &e) && e.Status == NotFoundCode {
			log.WarnContext(ctx, "Document already deleted or not found in ES", "index", index, "id", id)
			return nil
		}
		return err
	}
	return nil
}
