// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"os"
	"path/filepath"
)

func openFile(path string) (*os.File, error) {
	return os.Open(path)
}

func fileBaseName(path string) string {
	return filepath.Base(path)
}
