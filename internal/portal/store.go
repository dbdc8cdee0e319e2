package portal

import (
	"sync"

	"github.com/coreman2200/funtimes-candela/internal/config"
)

// FileStore writes accepted effect settings back into the YAML config file
// so they survive a restart.
type FileStore struct {
	Path string

	mu   sync.Mutex
	file *config.File
}

func NewFileStore(path string, f *config.File) *FileStore {
	return &FileStore{Path: path, file: f}
}

func (fs *FileStore) SaveEffect(r config.Raw) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.file.Effect = r
	return config.Save(fs.Path, fs.file)
}
