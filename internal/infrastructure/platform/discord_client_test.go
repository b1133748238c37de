package platform

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rewriteTransport 把所有请求转发到测试服务器，保留原始路径
type rewriteTransport struct {
	target *url.URL
}

func (rt rewriteTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.URL.Scheme = rt.target.Scheme
	r.URL.Host = rt.target.Host
	r.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *DiscordClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	target, err := url.Parse(srv.URL)
	require.NoError(t, err)

	session, err := NewSession("secret")
	require.NoError(t, err)
	session.Client = &http.Client{Transport: rewriteTransport{target: target}}
	return NewDiscordClient(session)
}

func apiPath(p string) string {
	return "/api/v" + discordgo.APIVersion + p
}

func TestChannelWebhooks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, apiPath("/channels/10/webhooks"), r.URL.Path)
		assert.Equal(t, "Bot secret", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[{"id":"1","token":"tok","name":"hook","user":{"id":"99"}},{"id":"2","name":"other"}]`)
	})

	hooks, err := c.ChannelWebhooks(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, hooks, 2)
	assert.Equal(t, Webhook{ID: 1, Token: "tok", Name: "hook", UserID: 99}, hooks[0])
	assert.Equal(t, int64(0), hooks[1].UserID)
}

func TestCreateWebhookForbidden(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"message":"Missing Permissions","code":50013}`)
	})

	_, err := c.CreateWebhook(context.Background(), 10, "hook")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestExecuteWebhookJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, apiPath("/webhooks/5/tok"), r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("wait"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["content"])
		assert.Equal(t, "Alice | sys", body["username"])
		_, _ = io.WriteString(w, `{"id":"777"}`)
	})

	id, err := c.ExecuteWebhook(context.Background(), Webhook{ID: 5, Token: "tok"}, WebhookMessage{
		Username: "Alice | sys",
		Content:  "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(777), id)
}

func TestExecuteWebhookMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		var body map[string]any
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("payload_json")), &body))
		assert.Equal(t, "with file", body["content"])

		f, header, err := r.FormFile("files[0]")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "cat.png", header.Filename)
		assert.Equal(t, []byte{1, 2, 3}, data)
		_, _ = io.WriteString(w, `{"id":"8"}`)
	})

	id, err := c.ExecuteWebhook(context.Background(), Webhook{ID: 5, Token: "tok"}, WebhookMessage{
		Username: "Alice",
		Content:  "with file",
		File:     &File{Name: "cat.png", Data: []byte{1, 2, 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8), id)
}

func TestDeleteMessageSendsAuditReason(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, apiPath("/channels/1/messages/2"), r.URL.Path)
		reason, err := url.PathUnescape(r.Header.Get("X-Audit-Log-Reason"))
		require.NoError(t, err)
		assert.Equal(t, "Deleted proxy trigger", reason)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.DeleteMessage(context.Background(), 1, 2, "Deleted proxy trigger"))
}

func TestDeleteMessageNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Unknown Message","code":10008}`)
	})

	assert.ErrorIs(t, c.DeleteMessage(context.Background(), 1, 2, ""), ErrNotFound)
}

func TestRateLimitRetried(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = io.WriteString(w, `{"message":"You are being rate limited.","retry_after":0.01,"global":false}`)
			return
		}
		_, _ = io.WriteString(w, `{"id":"3"}`)
	})

	id, err := c.SendMessage(context.Background(), 1, "hi")
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	assert.Equal(t, 2, calls)
}

func TestFetchBotUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, apiPath("/users/@me"), r.URL.Path)
		_, _ = io.WriteString(w, `{"id":"4242","username":"plural"}`)
	})

	id, err := c.FetchBotUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4242), id)
	assert.Equal(t, int64(4242), c.BotUserID())
}

func TestDownloadAttachment(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/attachments/1/2/cat.png":
			_, _ = w.Write([]byte{9, 8, 7})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	data, err := c.DownloadAttachment(context.Background(), "https://cdn.example/attachments/1/2/cat.png")
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 8, 7}, data)

	_, err = c.DownloadAttachment(context.Background(), "https://cdn.example/attachments/1/2/gone.png")
	assert.ErrorIs(t, err, ErrNotFound)
}
