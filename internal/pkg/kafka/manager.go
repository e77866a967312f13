package kafka

import (
	"BrainScript/internal/api/config"
	"BrainScript/internal/pkg/es"
	"context"
	log "log/slog"
	"sync"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	usersConsumer sarama.ConsumerGroup
	usersHandler  sarama.ConsumerGroupHandler

	postsConsumer sarama.ConsumerGroup
	postsHandler  sarama.ConsumerGroupHandler
}

// NewConsumerManager 构造函数
func NewConsumerManager(cfg *config.Config, searchRepo es.SearchRepo) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	usersConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaUserConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}

	postsConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaPostConsumer.GroupID, saramaCfg)
	if err != nil {
		_ = usersConsumer.Close()
		return nil, err
	}

	return &ConsumerManager{
		usersConsumer: usersConsumer,
		usersHandler:  NewUsersHandler(searchRepo),
		postsConsumer: postsConsumer,
		postsHandler:  NewPostsHandler(searchRepo),
	}, nil
}

// Start 启动所有消费者，阻塞到 ctx 结束
func (m *ConsumerManager) Start(ctx context.Context, cfg *config.Config) error {
	var wg sync.WaitGroup
	run := func(name string, group sarama.ConsumerGroup, topic string, handler sarama.ConsumerGroupHandler) {
		defer wg.Done()
		log.Info(name+" consumer started", "topic", topic)
		go func() {
			for err := range group.Errors() {
				log.Error("consumer group error", "consumer", name, "err", err)
			}
		}()
		for {
			if err := group.Consume(ctx, []string{topic}, handler); err != nil {
				log.Error("Error from consumer", "consumer", name, "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}

	wg.Add(2)
	go run("users", m.usersConsumer, cfg.KafkaUserConsumer.Topic, m.usersHandler)
	go run("posts", m.postsConsumer, cfg.KafkaPostConsumer.Topic, m.postsHandler)

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")
	wg.Wait()

	if err := m.usersConsumer.Close(); err != nil {
		log.Error("Failed to close users consumer", "err", err)
	}
	if err := m.postsConsumer.Close(); err != nil {
		log.Error("Failed to close posts consumer", "err", err)
	}

	return nil
}
