// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Telegram-shaped webhook payload types (spec §6 "Webhook ingress").
// Grounded on the reference claudecode-telegram handler's Update/Message
// types — the one complete prior implementation of this transport in the
// retrieved pack.

type Update struct {
	UpdateID int      `json:"update_id"`
	Message  *Message `json:"message"`
}

type Message struct {
	MessageID      int          `json:"message_id"`
	Chat           Chat         `json:"chat"`
	From           *User        `json:"from"`
	Text           string       `json:"text"`
	Caption        string       `json:"caption"`
	Photo          []PhotoSize  `json:"photo"`
	Document       *Document    `json:"document"`
	ReplyToMessage *Message     `json:"reply_to_message"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type User struct {
	ID int64 `json:"id"`
}

type PhotoSize struct {
	FileID string `json:"file_id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"file_size"`
}

type Document struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
}

// ParseWebhook decodes a Telegram-shaped update body into the transport
// neutral Event shape the routing engine consumes. Returns (nil, nil) for
// updates with no message (e.g. edited_message, channel_post) — those are
// silently ignored.
func ParseWebhook(body []byte) (*Event, error) {
	var upd Update
	if err := json.Unmarshal(body, &upd); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}
	if upd.Message == nil {
		return nil, nil
	}
	m := upd.Message

	ev := &Event{
		ChatID:    strconv.FormatInt(m.Chat.ID, 10),
		Text:      m.Text,
		MessageID: strconv.Itoa(m.MessageID),
	}

	switch {
	case len(m.Photo) > 0:
		best := m.Photo[len(m.Photo)-1] // Telegram lists sizes smallest-first
		ev.Attachments = append(ev.Attachments, Attachment{
			Kind: "photo", FileID: best.FileID, Size: best.Size, Caption: m.Caption,
		})
	case m.Document != nil:
		kind := "document"
		if strings.HasPrefix(m.Document.MimeType, "image/") {
			kind = "image-doc"
		}
		ev.Attachments = append(ev.Attachments, Attachment{
			Kind: kind, FileID: m.Document.FileID, Filename: m.Document.FileName,
			MIME: m.Document.MimeType, Size: m.Document.FileSize, Caption: m.Caption,
		})
	}

	if m.ReplyToMessage != nil {
		ev.ReplyTo = &ReplyTo{Text: m.ReplyToMessage.Text}
	}

	return ev, nil
}

// TelegramClient is a Telegram Bot API backed implementation of chat.Client.
type TelegramClient struct {
	token       string
	apiBase     string
	adminChatID string
	http        *http.Client
}

// NewClient returns a TelegramClient. apiBase defaults to the real Bot
// API host when empty; tests override it to point at a fake server.
func NewClient(token, apiBase, adminChatID string) *TelegramClient {
	if apiBase == "" {
		apiBase = "https://api.telegram.org"
	}
	return &TelegramClient{
		token:       token,
		apiBase:     apiBase,
		adminChatID: adminChatID,
		http:        &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *TelegramClient) method(name string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, name)
}

func (c *TelegramClient) AdminChatID() string { return c.adminChatID }

type sendMessageResp struct {
	OK     bool `json:"ok"`
	Result struct {
		MessageID int `json:"message_id"`
	} `json:"result"`
}

func (c *TelegramClient) postJSON(ctx context.Context, method string, payload map[string]interface{}) (*sendMessageResp, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.method(method), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var out sendMessageResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if !out.OK {
		return nil, fmt.Errorf("telegram: %s rejected", method)
	}
	return &out, nil
}

func (c *TelegramClient) SendText(ctx context.Context, chatID, text string, replyTo string) (SentMessage, error) {
	return c.send(ctx, chatID, text, "", replyTo)
}

func (c *TelegramClient) SendHTML(ctx context.Context, chatID, html string, replyTo string) (SentMessage, error) {
	return c.send(ctx, chatID, html, "HTML", replyTo)
}

func (c *TelegramClient) send(ctx context.Context, chatID, text, parseMode, replyTo string) (SentMessage, error) {
	payload := map[string]interface{}{"chat_id": chatID, "text": text}
	if parseMode != "" {
		payload["parse_mode"] = parseMode
	}
	if replyTo != "" {
		payload["reply_to_message_id"] = replyTo
	}
	resp, err := c.postJSON(ctx, "sendMessage", payload)
	if err != nil {
		return SentMessage{}, err
	}
	return SentMessage{ChatID: chatID, MessageID: strconv.Itoa(resp.Result.MessageID)}, nil
}

func (c *TelegramClient) SendChatAction(ctx context.Context, chatID, action string) error {
	_, err := c.postJSON(ctx, "sendChatAction", map[string]interface{}{"chat_id": chatID, "action": action})
	return err
}

func (c *TelegramClient) SendPhoto(ctx context.Context, chatID, path, caption string) error {
	return c.sendFile(ctx, "sendPhoto", "photo", chatID, path, caption)
}

func (c *TelegramClient) SendDocument(ctx context.Context, chatID, path, caption string) error {
	return c.sendFile(ctx, "sendDocument", "document", chatID, path, caption)
}

func (c *TelegramClient) sendFile(ctx context.Context, method, field, chatID, path, caption string) error {
	f, err := openFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("chat_id", chatID); err != nil {
		return err
	}
	if caption != "" {
		if err := w.WriteField("caption", caption); err != nil {
			return err
		}
	}
	part, err := w.CreateFormFile(field, fileBaseName(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.method(method), &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	var out sendMessageResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	if !out.OK {
		return fmt.Errorf("telegram: %s rejected", method)
	}
	return nil
}

// DownloadFile's wire protocol (the two-step getFile + CDN fetch dance)
// belongs to "the chat transport itself ... media download/upload",
// which spec.md §1 places out of scope as an external collaborator. The
// capability stays on the Client interface so the router can depend on
// it; this transport fills it in only far enough to exercise the
// interface boundary.
func (c *TelegramClient) DownloadFile(ctx context.Context, fileID string, w io.Writer) (string, string, int64, error) {
	return "", "", 0, fmt.Errorf("chat: file download is an external collaborator, not implemented here")
}

func (c *TelegramClient) SetReaction(ctx context.Context, chatID, messageID, emoji string) error {
	_, err := c.postJSON(ctx, "setMessageReaction", map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
		"reaction":   []map[string]string{{"type": "emoji", "emoji": emoji}},
	})
	return err
}

func (c *TelegramClient) RegisterCommands(ctx context.Context, commands []Command) error {
	type botCommand struct {
		Command     string `json:"command"`
		Description string `json:"description"`
	}
	cmds := make([]botCommand, 0, len(commands))
	for _, cmd := range commands {
		cmds = append(cmds, botCommand{Command: cmd.Name, Description: cmd.Description})
	}
	_, err := c.postJSON(ctx, "setMyCommands", map[string]interface{}{"commands": cmds})
	return err
}
