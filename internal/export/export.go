// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversation transcripts to files.
package export

import (
	"errors"
	"fmt"
	"time"

	"github.com/morganforge/wirechat/internal/model"
	"github.com/morganforge/wirechat/internal/util"
)

// =============================================================================
// EXPORTER INTERFACE
// =============================================================================

// ErrEmptyConversation is returned when there is nothing to export.
var ErrEmptyConversation = errors.New("export: conversation is empty")

// Exporter converts a conversation transcript to a serialized document.
type Exporter interface {
	// Export renders the turns to the target format.
	Export(turns []model.Turn) ([]byte, error)

	// Extension returns the file extension for the format, without the dot.
	Extension() string
}

// Filename returns the default export filename for the given exporter,
// dated with the current day (wirechat_2025-01-30.txt).
func Filename(e Exporter) string {
	return fmt.Sprintf("wirechat_%s.%s", time.Now().Format("2006-01-02"), e.Extension())
}

// WriteFile exports the turns and writes the document atomically to path.
func WriteFile(e Exporter, turns []model.Turn, path string) error {
	data, err := e.Export(turns)
	if err != nil {
		return err
	}
	if err := util.AtomicWriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export: writing %s: %w", path, err)
	}
	return nil
}
