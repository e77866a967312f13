package kafka

import (
	"BrainScript/internal/pkg/es"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

const usersTable = "users"

// UsersHandler 将 users 表的 binlog 同步到用户索引
type UsersHandler struct {
	searchRepo es.SearchRepo
}

func NewUsersHandler(searchRepo es.SearchRepo) *UsersHandler {
	return &UsersHandler{
		searchRepo: searchRepo,
	}
}

func (s *UsersHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("user consumer setup")
	return nil
}

func (s *UsersHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("user consumer cleanup")
	return nil
}

func (s *UsersHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-user consume claim")
	err := pullMessageBatch(session, claim, usersTable, s.logic)
	if err != nil {
		log.Error("topic-user process batch error", "err", err)
		return err
	}
	log.Info("topic-user consume claim end")
	return nil
}

func (s *UsersHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, usersTable)
	if err != nil {
		return err
	}

	for _, row := range canalMsg.Data {
		id := StrToUint64(row["id"])
		if id == 0 {
			continue
		}
		if canalMsg.Type == DELETE {
			err = s.searchRepo.DeleteUser(ctx, id)
		} else {
			err = s.searchRepo.IndexUser(ctx, &es.UserES{
				ID:    id,
				Name:  StrToString(row["name"]),
				Email: StrToString(row["email"]),
				Image: StrToString(row["image"]),
			}, canalMsg.TS)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
