// Package snowflake 解析聊天平台的雪花 ID
// 平台消息 ID 内嵌毫秒时间戳，使用 bwmarrin/snowflake 按平台纪元解析
package snowflake

import (
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

// DefaultEpoch 平台纪元（2015-01-01T00:00:00Z，毫秒）
const DefaultEpoch int64 = 1420070400000

var epochOnce sync.Once

// Init 设置平台纪元
// 应在程序启动时调用一次；epoch<=0 时使用默认值
func Init(epoch int64) {
	epochOnce.Do(func() {
		if epoch <= 0 {
			epoch = DefaultEpoch
		}
		snowflake.Epoch = epoch
		zap.L().Info("Snowflake epoch initialized", zap.Int64("epoch", epoch))
	})
}

// Time 返回雪花 ID 中的创建时间（UTC）
func Time(id int64) time.Time {
	epochOnce.Do(func() { snowflake.Epoch = DefaultEpoch })
	return time.UnixMilli(snowflake.ID(id).Time()).UTC()
}
