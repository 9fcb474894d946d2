// Package ops implements whole-list operations that sit beside the command
// interpreter: JSONL export and import, and the Markdown/HTML report.
package ops

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/tally/internal/task"
)

// ExportSchemaVersion is written to, and required in, export headers.
const ExportSchemaVersion = "1.0"

// Saver persists a full task list.
type Saver interface {
	Save(ctx context.Context, tasks []task.Task) error
}

// newExportID generates a ULID for an export header.
func newExportID(now time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}
