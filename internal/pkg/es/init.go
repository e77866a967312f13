package es

import (
	"BrainScript/internal/api/config"
	"BrainScript/internal/pkg/logger"
	"context"
	log "log/slog"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/indices/create"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/pkg/errors"
)

var Client *elasticsearch.TypedClient

var (
	UserIndex string
	PostIndex string
)

const (
	NotFoundCode = 404
	ConflictCode = 409
)

// InitClient 连接集群并确保帖子与用户索引存在
func InitClient(cfg config.ElasticConfig) error {
	UserIndex = cfg.Indices.UserIndex
	PostIndex = cfg.Indices.PostIndex

	var err error
	Client, err = elasticsearch.NewTypedClient(elasticsearch.Config{
		Addresses: []string{cfg.Address},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: &logger.ESTransport{Transport: http.DefaultTransport},
	})
	if err != nil {
		return errors.Wrap(err, "create elasticsearch client")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	info, err := Client.Info().Do(ctx)
	if err != nil {
		return errors.Wrap(err, "elasticsearch info")
	}
	log.Info("connected to elasticsearch", "version", info.Version.Int)

	if err = ensureIndex(ctx, PostIndex, postMapping()); err != nil {
		return err
	}
	return ensureIndex(ctx, UserIndex, userMapping())
}

// ensureIndex 索引已存在时不改动映射
func ensureIndex(ctx context.Context, name string, mapping *types.TypeMapping) error {
	exists, err := Client.Indices.Exists(name).Do(ctx)
	if err != nil {
		return errors.Wrapf(err, "check index %s", name)
	}
	if exists {
		return nil
	}
	if _, err = Client.Indices.Create(name).Request(&create.Request{Mappings: mapping}).Do(ctx); err != nil {
		return errors.Wrapf(err, "create index %s", name)
	}
	log.Info("elasticsearch index created", "index", name)
	return nil
}

func postMapping() *types.TypeMapping {
	return &types.TypeMapping{
		Properties: map[string]types.Property{
			"id":          types.NewUnsignedLongNumberProperty(),
			"user_id":     types.NewUnsignedLongNumberProperty(),
			"title":       types.NewTextProperty(),
			"slug":        types.NewKeywordProperty(),
			"content":     types.NewTextProperty(),
			"excerpt":     types.NewTextProperty(),
			"cover_image": types.NewKeywordProperty(),
			"category":    types.NewKeywordProperty(),
			"tags":        types.NewKeywordProperty(),
			"post_type":   types.NewKeywordProperty(),
			"published":   types.NewBooleanProperty(),
			"created_at":  types.NewDateProperty(),
		},
	}
}

func userMapping() *types.TypeMapping {
	return &types.TypeMapping{
		Properties: map[string]types.Property{
			"id":    types.NewUnsignedLongNumberProperty(),
			"name":  types.NewTextProperty(),
			"email": types.NewTextProperty(),
			"image": types.NewKeywordProperty(),
		},
	}
}
