// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// postTimeout bounds the hook's call back to the bridge (spec §5
// timeouts: "hook→bridge POST 5s").
const postTimeout = 5 * time.Second

type responsePayload struct {
	Session string `json:"session"`
	Text    string `json:"text"`
}

// PostResponse delivers the extracted turn to the bridge's response
// ingest endpoint (spec §4.C step 7 / §6 "hook ingest").
func PostResponse(ctx context.Context, baseURL, session, text string) error {
	body, err := json.Marshal(responsePayload{Session: session, Text: text})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, postTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/response", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("bridge responded %s", resp.Status)
	}
	return nil
}
