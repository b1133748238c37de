package mq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"plural_proxy_server/internal/config"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaBus 分布式模式：事件写入 Kafka，本实例的订阅者从消费组读取
type KafkaBus struct {
	producer *kafka.Writer
	consumer *kafka.Reader
	handlers []Handler
	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	once     sync.Once
}

// NewKafkaBus 按配置创建 Kafka 生产者与消费者
func NewKafkaBus(conf *config.KafkaConfig) *KafkaBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &KafkaBus{
		producer: &kafka.Writer{
			Addr:                   kafka.TCP(conf.HostPort),
			Topic:                  conf.EventTopic,
			Balancer:               &kafka.Hash{},
			WriteTimeout:           conf.Timeout * time.Second,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: false,
		},
		consumer: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        []string{conf.HostPort},
			Topic:          conf.EventTopic,
			CommitInterval: conf.Timeout * time.Second,
			GroupID:        conf.GroupID,
			StartOffset:    kafka.LastOffset,
		}),
		ctx:    ctx,
		cancel: cancel,
	}
}

// CreateTopic 创建事件主题（已存在时 broker 返回错误，仅记录）
func CreateTopic(conf *config.KafkaConfig) error {
	conn, err := kafka.Dial("tcp", conf.HostPort)
	if err != nil {
		return err
	}
	defer conn.Close()

	partitions := conf.Partition
	if partitions <= 0 {
		partitions = 1
	}
	return conn.CreateTopics(kafka.TopicConfig{
		Topic:             conf.EventTopic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	})
}

// Publish 序列化事件并写入 Kafka
func (b *KafkaBus) Publish(ctx context.Context, evt Event) error {
	msg, err := encodeMessage(evt)
	if err != nil {
		return err
	}
	return b.producer.WriteMessages(ctx, msg)
}

// Subscribe 注册处理函数
func (b *KafkaBus) Subscribe(h Handler) {
	b.mu.Lock()
	b.handlers = append(b.handlers, h)
	b.mu.Unlock()
}

// Start 启动消费协程
func (b *KafkaBus) Start() {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			kafkaMessage, err := b.consumer.ReadMessage(b.ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || b.ctx.Err() != nil {
					return
				}
				zap.L().Error("read kafka event failed", zap.Error(err))
				continue
			}

			evt, err := decodeMessage(kafkaMessage)
			if err != nil {
				zap.L().Error("decode kafka event failed",
					zap.Int("partition", kafkaMessage.Partition),
					zap.Int64("offset", kafkaMessage.Offset),
					zap.Error(err))
				continue
			}

			b.mu.RLock()
			handlers := b.handlers
			b.mu.RUnlock()
			for _, h := range handlers {
				safeHandle(h, evt)
			}
		}
	}()
}

// Close 停止消费并关闭连接
func (b *KafkaBus) Close() {
	b.once.Do(func() {
		b.cancel()
		b.wg.Wait()
		if err := b.producer.Close(); err != nil {
			zap.L().Error("close kafka producer failed", zap.Error(err))
		}
		if err := b.consumer.Close(); err != nil {
			zap.L().Error("close kafka consumer failed", zap.Error(err))
		}
	})
}

// encodeMessage 以事件 id 作为 key
func encodeMessage(evt Event) (kafka.Message, error) {
	value, err := json.Marshal(evt)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(evt.ID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(evt.Type)},
		},
	}, nil
}

func decodeMessage(msg kafka.Message) (Event, error) {
	var evt Event
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		return Event{}, err
	}
	return evt, nil
}

var _ EventBus = (*KafkaBus)(nil)
