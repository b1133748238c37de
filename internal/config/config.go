// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml" // TOML 配置文件解析库

	"plural_proxy_server/pkg/constants"
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName string `toml:"appName"` // 应用名称，用于日志标识等
	Host    string `toml:"host"`    // HTTP 服务监听地址，如 "0.0.0.0"
	Port    int    `toml:"port"`    // HTTP 服务监听端口，如 8000
	Mode    string `toml:"mode"`    // 运行模式："dev" 或 "release"
}

// MysqlConfig MySQL 数据库连接配置
type MysqlConfig struct {
	Host         string `toml:"host"`         // MySQL 服务器地址
	Port         int    `toml:"port"`         // MySQL 端口，默认 3306
	User         string `toml:"user"`         // 数据库用户名
	Password     string `toml:"password"`     // 数据库密码
	DatabaseName string `toml:"databaseName"` // 数据库名称
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Host     string `toml:"host"`     // Redis 服务器地址
	Port     int    `toml:"port"`     // Redis 端口，默认 6379
	Password string `toml:"password"` // Redis 密码，无密码留空
	Db       int    `toml:"db"`       // Redis 数据库编号，默认 0
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// KafkaConfig 事件总线配置
// messageMode 为 "kafka" 时事件写入 Kafka，否则走进程内 channel
type KafkaConfig struct {
	MessageMode string        `toml:"messageMode"` // 事件模式："channel" 或 "kafka"
	HostPort    string        `toml:"hostPort"`    // Kafka 服务器地址，如 "localhost:9092"
	EventTopic  string        `toml:"eventTopic"`  // 代理事件主题
	GroupID     string        `toml:"groupId"`     // 消费组
	Partition   int           `toml:"partition"`   // 分区数
	Timeout     time.Duration `toml:"timeout"`     // 超时时间（秒）
}

// PlatformConfig 聊天平台连接配置
type PlatformConfig struct {
	Token   string `toml:"token"`   // Bot Token
	Intents int    `toml:"intents"` // 订阅的事件类型位掩码
	Workers int    `toml:"workers"` // 事件处理协程数

	// MessageLinkBase 消息跳转链接前缀，拼接为 <base>/<guild>/<channel>/<message>
	MessageLinkBase string `toml:"messageLinkBase"`
}

// ProxyConfig 代理行为配置
type ProxyConfig struct {
	WebhookName          string `toml:"webhookName"`          // 自动创建的 webhook 名称，也用于认领已有 webhook
	CancelEmoji          string `toml:"cancelEmoji"`          // 撤回代理消息使用的表情
	TriggerDeleteReason  string `toml:"triggerDeleteReason"`  // 删除触发消息时的审计日志原因
	ReactionDeleteReason string `toml:"reactionDeleteReason"` // 表情撤回时的审计日志原因
}

// JWTConfig JWT 认证配置
type JWTConfig struct {
	Secret            string `toml:"secret"`            // JWT 签名密钥，建议 32 字符以上
	AccessTokenExpiry int    `toml:"accessTokenExpiry"` // Access Token 有效期（分钟）
}

// SnowflakeConfig 平台雪花 ID 配置
type SnowflakeConfig struct {
	Epoch int64 `toml:"epoch"` // 平台纪元（毫秒）
}

// SecurityConfig 安全相关配置
type SecurityConfig struct {
	TokenSealKey string `toml:"tokenSealKey"` // webhook token 落库加密密钥，留空则明文
	TLSRedirect  bool   `toml:"tlsRedirect"`  // 是否启用 HTTPS 重定向（由 Nginx 终结 TLS 时关闭）
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig      `toml:"mainConfig"`      // 主配置
	MysqlConfig     `toml:"mysqlConfig"`     // MySQL 配置
	RedisConfig     `toml:"redisConfig"`     // Redis 配置
	LogConfig       `toml:"logConfig"`       // 日志配置
	KafkaConfig     `toml:"kafkaConfig"`     // 事件总线配置
	PlatformConfig  `toml:"platformConfig"`  // 聊天平台配置
	ProxyConfig     `toml:"proxyConfig"`     // 代理配置
	JWTConfig       `toml:"jwtConfig"`       // JWT 配置
	SnowflakeConfig `toml:"snowflakeConfig"` // 雪花 ID 配置
	SecurityConfig  `toml:"securityConfig"`  // 安全配置
}

// config 全局配置单例，延迟加载
var config *Config

// configPath 显式指定的配置文件路径（命令行 --config）
var configPath string

// SetConfigPath 指定配置文件路径，需在 GetConfig 之前调用
func SetConfigPath(path string) {
	configPath = path
	config = nil
}

// LoadConfig 从多个候选路径加载配置文件
// 按顺序尝试加载，找到第一个可用的配置文件即停止
func LoadConfig() error {
	// 候选配置文件路径（优先加载本地配置）
	paths := []string{
		"configs/config_local.toml",       // 本地开发配置（优先）
		"configs/config.toml",             // 默认配置
		"../../configs/config_local.toml", // 从子目录运行时的路径
		"../../configs/config.toml",       // 从子目录运行时的路径
	}
	if configPath != "" {
		paths = []string{configPath}
	}

	// 依次尝试加载配置文件
	for _, path := range paths {
		if _, err := toml.DecodeFile(path, config); err == nil {
			return nil // 加载成功
		}
	}

	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// applyDefaults 为未配置的字段填充默认值
func (c *Config) applyDefaults() {
	if c.MainConfig.AppName == "" {
		c.MainConfig.AppName = "plural_proxy_server"
	}
	if c.MainConfig.Mode == "" {
		c.MainConfig.Mode = "dev"
	}
	if c.KafkaConfig.MessageMode == "" {
		c.KafkaConfig.MessageMode = "channel"
	}
	if c.KafkaConfig.EventTopic == "" {
		c.KafkaConfig.EventTopic = "proxy_events"
	}
	if c.KafkaConfig.GroupID == "" {
		c.KafkaConfig.GroupID = "proxy_observers"
	}
	if c.KafkaConfig.Timeout == 0 {
		c.KafkaConfig.Timeout = 1
	}
	if c.PlatformConfig.Workers <= 0 {
		c.PlatformConfig.Workers = constants.DISPATCH_WORKERS
	}
	if c.ProxyConfig.WebhookName == "" {
		c.ProxyConfig.WebhookName = constants.DefaultWebhookName
	}
	if c.ProxyConfig.CancelEmoji == "" {
		c.ProxyConfig.CancelEmoji = constants.DefaultCancelEmoji
	}
	if c.ProxyConfig.TriggerDeleteReason == "" {
		c.ProxyConfig.TriggerDeleteReason = constants.DefaultTriggerDeleteReason
	}
	if c.ProxyConfig.ReactionDeleteReason == "" {
		c.ProxyConfig.ReactionDeleteReason = constants.DefaultReactionDeleteReason
	}
	if c.JWTConfig.AccessTokenExpiry == 0 {
		c.JWTConfig.AccessTokenExpiry = 60 * 24
	}
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件
func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig() // 忽略加载错误，使用默认值
		config.applyDefaults()
	}
	return config
}
