package registry

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
)

// FileList is a DurableList stored as a JSON string array in one file,
// the sidecar format the registry has always used.
type FileList struct {
	path string
}

func NewFileList(path string) *FileList {
	return &FileList{path: path}
}

// Load reads the title list. A missing file is an empty library.
func (l *FileList) Load(ctx context.Context) ([]string, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var titles []string
	if err := json.Unmarshal(data, &titles); err != nil {
		return nil, err
	}
	return titles, nil
}

// Save writes the title list, replacing the previous content.
func (l *FileList) Save(ctx context.Context, titles []string) error {
	if titles == nil {
		titles = []string{}
	}
	data, err := json.Marshal(titles)
	if err != nil {
		return err
	}
	return os.WriteFile(l.path, data, 0o644)
}
