package constants

const (
	CHANNEL_SIZE          = 100     // 通道大小
	REDIS_TIMEOUT         = 60      // redis 缓存过期时间（分钟）
	DISPATCH_WORKERS      = 16      // 网关事件处理协程数
	DEFAULT_HISTORY_LIMIT = 10      // 前台历史默认条数
	MAX_HISTORY_LIMIT     = 100     // 前台历史最大条数
	MAX_WEBHOOK_NAME_LEN  = 32      // webhook 显示名最大长度
	ATTACHMENT_MAX_SIZE   = 8 << 20 // 可转存附件的最大字节数
)

// 默认的代理配置
const (
	DefaultWebhookName          = "Plural Proxy Webhook"
	DefaultCancelEmoji          = "❌"
	DefaultTriggerDeleteReason  = "Plural proxy: deleted trigger message"
	DefaultReactionDeleteReason = "Plural proxy: deleted by reaction"
)

// 缓存 key 前缀
const (
	WebhookCacheKeyPrefix      = "webhook_"
	ProxyMembersCacheKeyPrefix = "proxy_members_"
)
