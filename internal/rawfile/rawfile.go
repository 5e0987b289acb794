// Package rawfile loads one tape file fully into memory in a single pass.
// Tapes are small (tens of kilobytes) and the readers never stream, so the
// file handle is released before parsing begins.
package rawfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Info is the file-identity metadata recorded on every header regardless of
// device profile.
type Info struct {
	// Name is the file name without directory or extension.
	Name string
	// Path is the path the file was opened with.
	Path string
	// CreateTime is the best available creation timestamp. Go exposes no
	// portable birth time, so this equals ChangeTime on most platforms;
	// the original system treated the two interchangeably for fallbacks.
	CreateTime time.Time
	// ChangeTime is the file modification time.
	ChangeTime time.Time
	// Size is the file size in bytes.
	Size int64
}

// File is the fully loaded content of one tape.
type File struct {
	Info  Info
	Lines []string
}

// Load reads the whole file, strips embedded NUL bytes, and splits it into
// lines. Device printers pad some tapes with NULs; they must be removed
// before any grammar matching.
func Load(path string) (*File, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat tape file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tape file: %w", err)
	}

	content := strings.ReplaceAll(string(data), "\x00", "")
	content = strings.ReplaceAll(content, "\r\n", "\n")

	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	return &File{
		Info: Info{
			Name:       name,
			Path:       path,
			CreateTime: st.ModTime(),
			ChangeTime: st.ModTime(),
			Size:       st.Size(),
		},
		Lines: strings.Split(content, "\n"),
	}, nil
}
