// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package router

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wingedpig/workerbridge/internal/chat"
)

// handleAttachment implements spec §4.G rule 1: download every attachment
// to the target worker's inbox, then forward a description as a normal
// send. The target worker is resolved the same way reply-to routing is
// (rule 5b): caption-prefixed worker name, then reply-to, then focused.
func (r *Router) handleAttachment(ctx context.Context, chatID string, ev chat.Event) {
	target, content := r.determineAttachmentTarget(ctx, ev)
	if target == "" {
		r.reply(ctx, chatID, "No worker focused. Use /focus <name> first.")
		return
	}
	if err := r.Coord.EnsureInbox(target); err != nil {
		r.reply(ctx, chatID, fmt.Sprintf("Could not prepare inbox for %s: %v", target, err))
		return
	}

	for _, att := range ev.Attachments {
		desc, err := r.downloadAttachment(ctx, target, att)
		if err != nil {
			r.reply(ctx, chatID, fmt.Sprintf("Failed to download attachment: %v", err))
			continue
		}
		message := desc
		if content != "" {
			message = content + "\n" + desc
		}
		r.deliverToWorker(ctx, chatID, ev.MessageID, target, message)
	}
}

func (r *Router) determineAttachmentTarget(ctx context.Context, ev chat.Event) (target, content string) {
	caption := ""
	if len(ev.Attachments) > 0 {
		caption = strings.TrimSpace(ev.Attachments[0].Caption)
	}

	if strings.HasPrefix(caption, "/") {
		fields := strings.Fields(caption)
		name := strings.TrimPrefix(fields[0], "/")
		if exists, err := r.Mux.Exists(ctx, name); err == nil && exists {
			return name, strings.TrimSpace(strings.TrimPrefix(caption, fields[0]))
		}
	}

	if ev.ReplyTo != nil {
		if worker := extractWorkerFromReply(ev.ReplyTo.Text); worker != "" {
			if exists, err := r.Mux.Exists(ctx, worker); err == nil && exists {
				return worker, caption
			}
		}
	}

	return r.Registry.Focused(ctx), caption
}

// downloadAttachment fetches the attachment into the worker's inbox and
// returns a description of where it landed (filename, size, path) for
// forwarding as the send text (spec §4.G rule 1).
func (r *Router) downloadAttachment(ctx context.Context, worker string, att chat.Attachment) (string, error) {
	var buf bytes.Buffer
	filename, mime, size, err := r.Chat.DownloadFile(ctx, att.FileID, &buf)
	if err != nil {
		return "", err
	}
	if r.Media.MaxFileSizeBytes > 0 && size > r.Media.MaxFileSizeBytes {
		return "", fmt.Errorf("attachment too large: %d bytes", size)
	}
	if filename == "" {
		filename = att.Filename
	}
	if filename == "" {
		filename = "attachment"
	}

	path := filepath.Join(r.Coord.InboxDir(worker), filename)
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return "", fmt.Errorf("save attachment: %w", err)
	}

	return fmt.Sprintf("Received attachment %q (%s, %d bytes) saved to %s", filename, mime, size, path), nil
}
