package svbcam

import (
	"path/filepath"
	"strings"
	"time"
)

// DefaultOutputDir is where the CLI writes frames when no directory is configured.
const DefaultOutputDir = "./output"

// GenerateFilename names an output file after the capture time, e.g.
// output/2024-03-01_21-04-05.000123456_output.png. Names sort by time.
func GenerateFilename(dir, ext string, t time.Time) string {
	if dir == "" {
		dir = DefaultOutputDir
	}
	name := t.Format("2006-01-02_15-04-05.000000000") + "_output." + strings.TrimPrefix(ext, ".")
	return filepath.Join(dir, name)
}
