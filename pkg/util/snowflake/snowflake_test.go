package snowflake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeFromPlatformID(t *testing.T) {
	Init(DefaultEpoch)

	// 175928847299117063 是平台文档中的示例 ID，对应 2016-04-30T11:18:25.796Z
	got := Time(175928847299117063)
	want := time.Date(2016, 4, 30, 11, 18, 25, 796*int(time.Millisecond), time.UTC)
	assert.True(t, got.Equal(want), "got %s", got)
}
