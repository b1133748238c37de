package request

// MessageIDUri 路径中的消息 id
type MessageIDUri struct {
	ID int64 `uri:"id" binding:"required"`
}
