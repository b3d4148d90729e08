// Package progress provides phase progress reporting for pipeline commands.
//
// The pipeline runs inside CI, never on an interactive terminal, so each
// update is a plain timestamped line such as:
//
//	[12:34:56] Indexing pipeline-owned permission sets...
//
// A Reporter constructed for the quiet path (JSON / machine-readable output)
// discards all updates.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Reporter emits phase progress lines.
type Reporter struct {
	w io.Writer
}

// New constructs a Reporter writing to w; pass nil to use os.Stderr. When
// quiet is true, all output is discarded.
func New(w io.Writer, quiet bool) *Reporter {
	if quiet {
		return &Reporter{w: io.Discard}
	}
	if w == nil {
		w = os.Stderr
	}
	return &Reporter{w: w}
}

// Step writes one timestamped progress line.
func (r *Reporter) Step(format string, args ...any) {
	fmt.Fprintf(r.w, "[%s] %s\n", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
}
