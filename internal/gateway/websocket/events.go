package websocket

import (
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// ID 平台雪花 id
type ID int64

// parseID 平台 id 以十进制字符串传输，空串或非法值视为 0
func parseID(s string) ID {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return ID(v)
}

// User 消息作者
type User struct {
	ID  ID
	Bot bool
}

// Attachment 消息附件
type Attachment struct {
	URL      string
	Filename string
}

// MessageCreate 新消息
type MessageCreate struct {
	ID          ID
	ChannelID   ID
	GuildID     ID
	Content     string
	Author      User
	WebhookID   ID
	Attachments []Attachment
}

// MessageDelete 单条消息被删除
type MessageDelete struct {
	ID        ID
	ChannelID ID
}

// MessageDeleteBulk 批量删除
type MessageDeleteBulk struct {
	IDs       []ID
	ChannelID ID
}

// Emoji 表情，自定义表情带 id
type Emoji struct {
	ID   ID
	Name string
}

// ReactionAdd 添加表情回应
type ReactionAdd struct {
	UserID    ID
	ChannelID ID
	MessageID ID
	GuildID   ID
	Emoji     Emoji
}

func toMessageCreate(m *discordgo.Message) MessageCreate {
	evt := MessageCreate{
		ID:        parseID(m.ID),
		ChannelID: parseID(m.ChannelID),
		GuildID:   parseID(m.GuildID),
		Content:   m.Content,
		WebhookID: parseID(m.WebhookID),
	}
	if m.Author != nil {
		evt.Author = User{ID: parseID(m.Author.ID), Bot: m.Author.Bot}
	}
	for _, a := range m.Attachments {
		if a == nil {
			continue
		}
		evt.Attachments = append(evt.Attachments, Attachment{URL: a.URL, Filename: a.Filename})
	}
	return evt
}

func toMessageDelete(m *discordgo.Message) MessageDelete {
	return MessageDelete{ID: parseID(m.ID), ChannelID: parseID(m.ChannelID)}
}

func toMessageDeleteBulk(d *discordgo.MessageDeleteBulk) MessageDeleteBulk {
	evt := MessageDeleteBulk{ChannelID: parseID(d.ChannelID), IDs: make([]ID, 0, len(d.Messages))}
	for _, id := range d.Messages {
		evt.IDs = append(evt.IDs, parseID(id))
	}
	return evt
}

func toReactionAdd(r *discordgo.MessageReaction) ReactionAdd {
	return ReactionAdd{
		UserID:    parseID(r.UserID),
		ChannelID: parseID(r.ChannelID),
		MessageID: parseID(r.MessageID),
		GuildID:   parseID(r.GuildID),
		Emoji:     Emoji{ID: parseID(r.Emoji.ID), Name: r.Emoji.Name},
	}
}
