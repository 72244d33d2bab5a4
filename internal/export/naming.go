package export

import (
	"path/filepath"
	"strings"
	"time"

	"zexport/internal/window"
)

// OutputBase returns the extensionless base name for the run's output files.
// An explicit name wins (its extension, if any, is stripped); otherwise the
// name is a reference-timezone timestamp like "20250615_093000_am".
func OutputBase(explicit string, now time.Time) string {
	if explicit != "" {
		return strings.TrimSuffix(explicit, filepath.Ext(explicit))
	}
	local := now.In(window.Reference())
	return strings.ToLower(local.Format("20060102_030405_PM"))
}
