// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package boundary

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wingedpig/workerbridge/internal/chat"
	"github.com/wingedpig/workerbridge/internal/response"
)

const healthBody = "workerbridge ok\n"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(healthBody))
}

// handleWebhook is the chat transport's delivery endpoint (spec §4.J,
// §6 "Webhook ingress"). A configured secret mismatch is 403; an
// unreadable or malformed body is 400; a well-formed update that carries
// no message is accepted with 200 and dropped.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if secret := s.cfg.WebhookSecret; secret != "" {
		if r.Header.Get("X-Bot-Webhook-Secret") != secret {
			w.WriteHeader(http.StatusForbidden)
			return
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 4<<20))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "cannot read body")
		return
	}

	ev, err := chat.ParseWebhook(body)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed webhook payload")
		return
	}
	if ev == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	if !s.gate.Allow(ev.ChatID) {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.router.Handle(r.Context(), *ev)
	w.WriteHeader(http.StatusOK)
}

type responsePayload struct {
	Session string `json:"session"`
	Text    string `json:"text"`
}

// handleResponse is the hook's ingest endpoint (spec §4.H / §6 "Hook
// ingest").
func (s *Server) handleResponse(w http.ResponseWriter, r *http.Request) {
	var payload responsePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if payload.Session == "" || payload.Text == "" {
		writeJSONError(w, http.StatusBadRequest, "session and text are required")
		return
	}

	err := s.pipeline.Deliver(r.Context(), payload.Session, payload.Text)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, response.ErrNoChatID):
		writeJSONError(w, http.StatusNotFound, "worker has no chat_id on record")
	default:
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

type notifyPayload struct {
	Text string `json:"text"`
}

// handleNotify fans a short operational message out to every chat
// identity the bridge has ever talked to (spec §4.J / §6 "Internal
// notify") — watchdogs and the reverse-tunnel process use this to page
// the admin without going through the worker routing path.
func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	var payload notifyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if payload.Text == "" {
		writeJSONError(w, http.StatusBadRequest, "text is required")
		return
	}

	ctx := r.Context()
	for _, chatID := range s.chatIDs.KnownChatIDs(ctx) {
		_, _ = s.chatClient.SendText(ctx, chatID, payload.Text, "")
	}
	s.publishNotify(payload.Text)

	w.WriteHeader(http.StatusOK)
}

// handleNotifyStream lets an admin-facing dashboard watch notify traffic
// live. It is gated by the same admin chat id the webhook path enforces,
// checked here via a query parameter since a websocket upgrade has no
// custom-header channel from a browser.
func (s *Server) handleNotifyStream(w http.ResponseWriter, r *http.Request) {
	if chatID := r.URL.Query().Get("chat_id"); chatID == "" || !s.gate.Allow(chatID) {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch := make(chan string, 16)
	s.notifySubsMu.Lock()
	s.notifySubs[ch] = struct{}{}
	s.notifySubsMu.Unlock()
	defer func() {
		s.notifySubsMu.Lock()
		delete(s.notifySubs, ch)
		s.notifySubsMu.Unlock()
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(54 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case msg := <-ch:
			if err := conn.WriteJSON(map[string]string{"text": msg}); err != nil {
				return
			}
		case <-pingTicker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (s *Server) publishNotify(text string) {
	s.notifySubsMu.Lock()
	defer s.notifySubsMu.Unlock()
	for ch := range s.notifySubs {
		select {
		case ch <- text:
		default:
		}
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
