package kafka

import (
	"BrainScript/internal/pkg/es"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

const postsTable = "posts"

// PostsHandler 将 posts 表的 binlog 同步到帖子索引
type PostsHandler struct {
	searchRepo es.SearchRepo
}

func NewPostsHandler(searchRepo es.SearchRepo) *PostsHandler {
	return &PostsHandler{
		searchRepo: searchRepo,
	}
}

func (s *PostsHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("post consumer setup")
	return nil
}

func (s *PostsHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("post consumer cleanup")
	return nil
}

func (s *PostsHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-post consume claim")
	err := pullMessageBatch(session, claim, postsTable, s.logic)
	if err != nil {
		log.Error("topic-post process batch error", "err", err)
		return err
	}
	log.Info("topic-post consume claim end")
	return nil
}

func (s *PostsHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, postsTable)
	if err != nil {
		return err
	}

	for _, row := range canalMsg.Data {
		id := StrToUint64(row["id"])
		if id == 0 {
			continue
		}
		if canalMsg.Type == DELETE {
			if err = s.searchRepo.DeletePost(ctx, id); err != nil {
				return err
			}
			continue
		}
		// 只有正文相关字段变化才需要重建，计数列的更新直接跳过
		if canalMsg.Type == UPDATE && !searchableChanged(canalMsg) {
			continue
		}
		if err = s.searchRepo.IndexPost(ctx, toPostES(row), canalMsg.TS); err != nil {
			return err
		}
	}
	return nil
}

func toPostES(row map[string]interface{}) *es.PostES {
	return &es.PostES{
		ID:         StrToUint64(row["id"]),
		UserID:     StrToUint64(row["user_id"]),
		Title:      StrToString(row["title"]),
		Slug:       StrToString(row["slug"]),
		Content:    StrToString(row["content"]),
		Excerpt:    StrToString(row["excerpt"]),
		CoverImage: StrToString(row["cover_image"]),
		Category:   StrToString(row["category"]),
		Tags:       StrToStringSlice(row["tags"]),
		PostType:   StrToString(row["post_type"]),
		Published:  StrToBool(row["published"]),
		CreatedAt:  StrToDateTime(row["created_at"]),
	}
}

var postSearchColumns = []string{"title", "slug", "content", "excerpt", "cover_image", "category", "tags", "post_type", "published"}

func searchableChanged(message *CanalMessage) bool {
	if len(message.Old) == 0 {
		return true
	}
	for _, old := range message.Old {
		for _, col := range postSearchColumns {
			if _, ok := old[col]; ok {
				return true
			}
		}
	}
	return false
}
