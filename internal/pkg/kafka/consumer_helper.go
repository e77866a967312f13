package kafka

import (
	"BrainScript/internal/pkg/logger"
	"BrainScript/internal/pkg/metrics"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

const (
	batchSize    = 32
	batchTimeout = 1 * time.Second
)

// ErrSkipMessage 无法处理且重试无意义的消息，记录后直接提交位点
var ErrSkipMessage = errors.New("skip message")

type LogicFunc func(ctx context.Context, msg *sarama.ConsumerMessage) error

// pullMessageBatch 拉取一批消息并执行业务逻辑
func pullMessageBatch(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim, table string, logic LogicFunc) error {
	batch := make([]*sarama.ConsumerMessage, 0, batchSize)
	ticker := time.NewTicker(batchTimeout)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				if len(batch) > 0 {
					processBatch(session, batch, table, logic)
				}
				return nil
			}
			batch = append(batch, msg)
			if len(batch) >= batchSize {
				processBatch(session, batch, table, logic)
				// 清空缓冲区 & 重置定时器
				batch = make([]*sarama.ConsumerMessage, 0, batchSize)
				ticker.Reset(batchTimeout)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				processBatch(session, batch, table, logic)
				batch = make([]*sarama.ConsumerMessage, 0, batchSize)
			}
		case <-session.Context().Done():
			return nil
		}
	}
}

// processBatch 并发处理一批消息，全部完成后提交最后一条的位点
func processBatch(session sarama.ConsumerGroupSession, messages []*sarama.ConsumerMessage, table string, logic LogicFunc) {
	var wg sync.WaitGroup

	for _, msg := range messages {
		wg.Add(1)

		go func(m *sarama.ConsumerMessage) {
			defer wg.Done()
			handleWithRetry(session.Context(), m, table, logic)
		}(msg)
	}

	wg.Wait()

	if len(messages) > 0 {
		lastMsg := messages[len(messages)-1]
		session.MarkMessage(lastMsg, "")
	}
}

// handleWithRetry 指数退避直到成功、被跳过或会话结束
func handleWithRetry(sessionCtx context.Context, m *sarama.ConsumerMessage, table string, logic LogicFunc) {
	ctx := logger.WithTraceID(sessionCtx, "kafka-"+table+"-")
	retryInterval := 100 * time.Millisecond

	for {
		err := logic(ctx, m)
		if err == nil || errors.Is(err, ErrSkipMessage) {
			if err != nil {
				log.WarnContext(ctx, "skip message", "partition", m.Partition, "offset", m.Offset, "err", err)
			}
			metrics.ObserveConsumerMessage(table, nil)
			return
		}
		metrics.ObserveConsumerMessage(table, err)

		select {
		case <-sessionCtx.Done():
			return
		default:
		}

		log.ErrorContext(ctx, "process message error", "offset", m.Offset, "err", err)
		time.Sleep(retryInterval)

		retryInterval *= 2
		if retryInterval > 5*time.Second {
			retryInterval = 5 * time.Second
		}
	}
}

// ToCanalMessage 将kafka消息转换为canal消息结构体
func ToCanalMessage(msg *sarama.ConsumerMessage, tableName string) (*CanalMessage, error) {
	var canalMsg CanalMessage
	if err := json.Unmarshal(msg.Value, &canalMsg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal canal message: %v", ErrSkipMessage, err)
	}

	if canalMsg.IsDDL {
		return nil, fmt.Errorf("%w: ddl on %s", ErrSkipMessage, canalMsg.Table)
	}

	if canalMsg.Table != tableName {
		return nil, fmt.Errorf("%w: table name not match: %s", ErrSkipMessage, canalMsg.Table)
	}

	if len(canalMsg.Data) == 0 {
		return nil, fmt.Errorf("%w: data is empty", ErrSkipMessage)
	}

	return &canalMsg, nil
}
