// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package response

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedpig/workerbridge/internal/chat"
)

type fakeChatSink struct {
	htmlSent  []string
	textSent  []string
	photos    []string
	documents []string
	nextID    int
}

func (f *fakeChatSink) SendHTML(ctx context.Context, chatID, html string, replyTo string) (chat.SentMessage, error) {
	f.htmlSent = append(f.htmlSent, html)
	f.nextID++
	return chat.SentMessage{MessageID: itoa(f.nextID), ChatID: chatID}, nil
}

func (f *fakeChatSink) SendText(ctx context.Context, chatID, text string, replyTo string) (chat.SentMessage, error) {
	f.textSent = append(f.textSent, text)
	f.nextID++
	return chat.SentMessage{MessageID: itoa(f.nextID), ChatID: chatID}, nil
}

func (f *fakeChatSink) SendPhoto(ctx context.Context, chatID, path, caption string) error {
	f.photos = append(f.photos, path)
	return nil
}

func (f *fakeChatSink) SendDocument(ctx context.Context, chatID, path, caption string) error {
	f.documents = append(f.documents, path)
	return nil
}

type fakeChatIDs struct {
	ids map[string]string
}

func (f *fakeChatIDs) GetChatID(worker string) string { return f.ids[worker] }

type fakePending struct {
	cleared []string
}

func (f *fakePending) ClearPending(worker string) error {
	f.cleared = append(f.cleared, worker)
	return nil
}

func TestPipelineDeliverRejectsEmptyFields(t *testing.T) {
	p := &Pipeline{}
	err := p.Deliver(context.Background(), "", "text")
	assert.ErrorIs(t, err, ErrEmptyPayload)

	err = p.Deliver(context.Background(), "alice", "")
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestPipelineDeliverNoChatID(t *testing.T) {
	p := &Pipeline{ChatIDs: &fakeChatIDs{ids: map[string]string{}}}
	err := p.Deliver(context.Background(), "alice", "hello")
	assert.ErrorIs(t, err, ErrNoChatID)
}

func TestPipelineDeliverSendsFormattedTextAndClearsPending(t *testing.T) {
	sink := &fakeChatSink{}
	pending := &fakePending{}
	stopped := ""

	p := &Pipeline{
		Chat:    sink,
		ChatIDs: &fakeChatIDs{ids: map[string]string{"alice": "42"}},
		Pending: pending,
		StopTyping: func(worker string) {
			stopped = worker
		},
	}

	err := p.Deliver(context.Background(), "alice", "**done** with the task")
	require.NoError(t, err)

	require.Len(t, sink.htmlSent, 1)
	assert.Contains(t, sink.htmlSent[0], "<b>alice:</b>")
	assert.Contains(t, sink.htmlSent[0], "<b>done</b>")
	assert.Equal(t, []string{"alice"}, pending.cleared)
	assert.Equal(t, "alice", stopped)
}

func TestPipelineDeliverSendsMediaAndNoticesOnFailure(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "out.png")
	require.NoError(t, os.WriteFile(imgPath, make([]byte, 10), 0600))

	sink := &fakeChatSink{}
	pending := &fakePending{}

	p := &Pipeline{
		Chat:    sink,
		ChatIDs: &fakeChatIDs{ids: map[string]string{"alice": "42"}},
		Pending: pending,
		Media: MediaPolicy{
			ImageAllowlist:   []string{dir},
			ImageExtensions:  []string{".png"},
			MaxFileSizeBytes: 1 << 20,
		},
	}

	text := "see [[image:" + imgPath + "|result]] and [[image:/not/allowed.png]]"
	err := p.Deliver(context.Background(), "alice", text)
	require.NoError(t, err)

	assert.Equal(t, []string{imgPath}, sink.photos)
	require.Len(t, sink.textSent, 1)
	assert.Contains(t, sink.textSent[0], "/not/allowed.png")
}
