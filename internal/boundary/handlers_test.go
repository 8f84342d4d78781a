// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package boundary

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedpig/workerbridge/internal/admin"
	"github.com/wingedpig/workerbridge/internal/chat"
	"github.com/wingedpig/workerbridge/internal/response"
)

type fakePersister struct{ chatID string }

func (f *fakePersister) GetAdminChatID() string { return f.chatID }
func (f *fakePersister) SetAdminChatID(id string) error {
	f.chatID = id
	return nil
}

type fakeRouter struct {
	events []chat.Event
}

func (f *fakeRouter) Handle(ctx context.Context, ev chat.Event) {
	f.events = append(f.events, ev)
}

type fakeDeliverer struct {
	err       error
	worker    string
	text      string
	delivered bool
}

func (f *fakeDeliverer) Deliver(ctx context.Context, worker, text string) error {
	f.delivered = true
	f.worker, f.text = worker, text
	return f.err
}

type fakeChatIDLister struct{ ids []string }

func (f *fakeChatIDLister) KnownChatIDs(ctx context.Context) []string { return f.ids }

type fakeChat struct {
	chat.Client
	sent []string
}

func (f *fakeChat) SendText(ctx context.Context, chatID, text, replyTo string) (chat.SentMessage, error) {
	f.sent = append(f.sent, chatID+":"+text)
	return chat.SentMessage{ChatID: chatID}, nil
}

func newTestServer(cfg Config, rt Router, gate *admin.Gate, del Deliverer, ids ChatIDLister, c chat.Client) *Server {
	return New(cfg, rt, gate, del, ids, c)
}

func TestHandleHealthReturnsFixedBody(t *testing.T) {
	gate := admin.New(&fakePersister{}, "")
	s := newTestServer(Config{}, &fakeRouter{}, gate, &fakeDeliverer{}, &fakeChatIDLister{}, &fakeChat{})

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, healthBody, rec.Body.String())
}

func TestHandleWebhookRejectsSecretMismatch(t *testing.T) {
	gate := admin.New(&fakePersister{}, "")
	rt := &fakeRouter{}
	s := newTestServer(Config{WebhookSecret: "shh"}, rt, gate, &fakeDeliverer{}, &fakeChatIDLister{}, &fakeChat{})

	body, _ := json.Marshal(map[string]interface{}{"update_id": 1, "message": map[string]interface{}{"message_id": 1, "chat": map[string]int64{"id": 42}, "text": "hi"}})
	req := httptest.NewRequest("POST", "/", bytes.NewReader(body))
	req.Header.Set("X-Bot-Webhook-Secret", "wrong")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, 403, rec.Code)
	assert.Empty(t, rt.events)
}

func TestHandleWebhookAcceptsCorrectSecretAndRoutes(t *testing.T) {
	gate := admin.New(&fakePersister{}, "")
	rt := &fakeRouter{}
	s := newTestServer(Config{WebhookSecret: "shh"}, rt, gate, &fakeDeliverer{}, &fakeChatIDLister{}, &fakeChat{})

	body, _ := json.Marshal(map[string]interface{}{"update_id": 1, "message": map[string]interface{}{"message_id": 1, "chat": map[string]int64{"id": 42}, "text": "hi"}})
	req := httptest.NewRequest("POST", "/", bytes.NewReader(body))
	req.Header.Set("X-Bot-Webhook-Secret", "shh")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	require.Len(t, rt.events, 1)
	assert.Equal(t, "42", rt.events[0].ChatID)
}

func TestHandleWebhookDropsNonAdminSender(t *testing.T) {
	gate := admin.New(&fakePersister{chatID: "1"}, "")
	rt := &fakeRouter{}
	s := newTestServer(Config{}, rt, gate, &fakeDeliverer{}, &fakeChatIDLister{}, &fakeChat{})

	body, _ := json.Marshal(map[string]interface{}{"update_id": 1, "message": map[string]interface{}{"message_id": 1, "chat": map[string]int64{"id": 999}, "text": "hi"}})
	req := httptest.NewRequest("POST", "/", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Empty(t, rt.events)
}

func TestHandleResponseRejectsEmptyFields(t *testing.T) {
	gate := admin.New(&fakePersister{}, "")
	del := &fakeDeliverer{}
	s := newTestServer(Config{}, &fakeRouter{}, gate, del, &fakeChatIDLister{}, &fakeChat{})

	req := httptest.NewRequest("POST", "/response", bytes.NewReader([]byte(`{"session":"","text":""}`)))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, 400, rec.Code)
	assert.False(t, del.delivered)
}

func TestHandleResponseReturns404WhenNoChatID(t *testing.T) {
	gate := admin.New(&fakePersister{}, "")
	del := &fakeDeliverer{err: response.ErrNoChatID}
	s := newTestServer(Config{}, &fakeRouter{}, gate, del, &fakeChatIDLister{}, &fakeChat{})

	req := httptest.NewRequest("POST", "/response", bytes.NewReader([]byte(`{"session":"alice","text":"hi"}`)))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, 404, rec.Code)
}

func TestHandleResponseAcceptsValidPayload(t *testing.T) {
	gate := admin.New(&fakePersister{}, "")
	del := &fakeDeliverer{}
	s := newTestServer(Config{}, &fakeRouter{}, gate, del, &fakeChatIDLister{}, &fakeChat{})

	req := httptest.NewRequest("POST", "/response", bytes.NewReader([]byte(`{"session":"alice","text":"done"}`)))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.True(t, del.delivered)
	assert.Equal(t, "alice", del.worker)
	assert.Equal(t, "done", del.text)
}

func TestHandleNotifyFansOutToKnownChatIDs(t *testing.T) {
	gate := admin.New(&fakePersister{}, "")
	fc := &fakeChat{}
	s := newTestServer(Config{}, &fakeRouter{}, gate, &fakeDeliverer{}, &fakeChatIDLister{ids: []string{"1", "2"}}, fc)

	req := httptest.NewRequest("POST", "/notify", bytes.NewReader([]byte(`{"text":"tunnel down"}`)))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	require.Len(t, fc.sent, 2)
	assert.Contains(t, fc.sent, "1:tunnel down")
	assert.Contains(t, fc.sent, "2:tunnel down")
}

func TestHandleNotifyRejectsEmptyText(t *testing.T) {
	gate := admin.New(&fakePersister{}, "")
	fc := &fakeChat{}
	s := newTestServer(Config{}, &fakeRouter{}, gate, &fakeDeliverer{}, &fakeChatIDLister{}, fc)

	req := httptest.NewRequest("POST", "/notify", bytes.NewReader([]byte(`{"text":""}`)))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, 400, rec.Code)
	assert.Empty(t, fc.sent)
}

func TestHandleNotifyStreamRejectsMissingChatID(t *testing.T) {
	gate := admin.New(&fakePersister{}, "")
	s := newTestServer(Config{}, &fakeRouter{}, gate, &fakeDeliverer{}, &fakeChatIDLister{}, &fakeChat{})

	req := httptest.NewRequest("GET", "/notify/stream", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, 403, rec.Code)
}
