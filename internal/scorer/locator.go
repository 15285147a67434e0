package scorer

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirLocator finds uploaded performance recordings by convention:
// one file per song id under a flat directory.
type DirLocator struct {
	dir string
}

func NewDirLocator(dir string) *DirLocator {
	return &DirLocator{dir: dir}
}

func (l *DirLocator) Locate(songID int64) (string, bool) {
	path := filepath.Join(l.dir, fmt.Sprintf("song_%d.webm", songID))
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}
