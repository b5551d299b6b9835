package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// ErrBusClosed 事件总线已关闭
var ErrBusClosed = errors.New("event bus closed")

// Publisher 事件发布接口，引擎只依赖它
type Publisher interface {
	Publish(ctx context.Context, event *JobEvent) error
}

// Bus 基于 watermill gochannel 的进程内事件总线
// 非持久化：订阅之前发布的事件不会被投递
type Bus struct {
	pubsub    *gochannel.GoChannel
	logger    *slog.Logger
	published atomic.Int64
	closed    atomic.Bool
}

// NewBus 创建事件总线
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            64,
			Persistent:                     false,
			BlockPublishUntilSubscriberAck: false,
		},
		watermill.NewSlogLogger(logger.With("component", "event-bus")),
	)
	return &Bus{pubsub: pubsub, logger: logger}
}

// Publish 发布事件
func (b *Bus) Publish(ctx context.Context, event *JobEvent) error {
	if b.closed.Load() {
		return ErrBusClosed
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	// 序列化事件
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	// 创建 Watermill 消息
	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("job_name", event.JobName)
	msg.Metadata.Set("correlation_id", event.CorrelationID)
	msg.Metadata.Set("timestamp", event.Timestamp.Format(time.RFC3339Nano))

	if err := b.pubsub.Publish(string(event.Type), msg); err != nil {
		return fmt.Errorf("发布事件失败: %w", err)
	}
	b.published.Add(1)
	return nil
}

// Subscribe 订阅某类事件，ctx结束或总线关闭时返回的channel被关闭
func (b *Bus) Subscribe(ctx context.Context, eventType EventType) (<-chan *JobEvent, error) {
	if b.closed.Load() {
		return nil, ErrBusClosed
	}
	messages, err := b.pubsub.Subscribe(ctx, string(eventType))
	if err != nil {
		return nil, fmt.Errorf("订阅事件失败: %w", err)
	}

	out := make(chan *JobEvent)
	go func() {
		defer close(out)
		for msg := range messages {
			var event JobEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				b.logger.Warn("丢弃无法解析的事件", "message_id", msg.UUID, "error", err)
				msg.Ack()
				continue
			}
			msg.Ack()

			select {
			case out <- &event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// StartAuditLog 订阅所有事件并写入日志，ctx结束时停止
func (b *Bus) StartAuditLog(ctx context.Context) error {
	for _, eventType := range AllEventTypes {
		ch, err := b.Subscribe(ctx, eventType)
		if err != nil {
			return err
		}
		go func() {
			for event := range ch {
				attrs := []any{
					"event_id", event.ID,
					"event_type", event.Type,
					"job_name", event.JobName,
					"task_count", event.TaskCount,
					"cache_hit", event.CacheHit,
					"correlation_id", event.CorrelationID,
				}
				if event.Type == EventJobFailed {
					b.logger.Warn("Job ordering failed", append(attrs, "error", event.Error, "cycle", event.Cycle)...)
					continue
				}
				b.logger.Info("Job ordered", append(attrs, "order", event.Order)...)
			}
		}()
	}
	return nil
}

// Published 已发布的事件数
func (b *Bus) Published() int64 {
	return b.published.Load()
}

// Close 关闭事件总线，可重复调用
func (b *Bus) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	return b.pubsub.Close()
}
