package mq

import (
	"plural_proxy_server/internal/config"

	"go.uber.org/zap"
)

// NewEventBus 根据 messageMode 选择事件总线实现
func NewEventBus(conf *config.KafkaConfig) EventBus {
	if conf.MessageMode == "kafka" {
		if err := CreateTopic(conf); err != nil {
			zap.L().Warn("create kafka topic failed", zap.String("topic", conf.EventTopic), zap.Error(err))
		}
		zap.L().Info("event bus mode: kafka", zap.String("topic", conf.EventTopic))
		return NewKafkaBus(conf)
	}
	zap.L().Info("event bus mode: channel")
	return NewChannelBus()
}
