package blob

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// LocalStore writes files under a directory served at PublicURL. Used in
// development when no Cloudinary account is configured.
type LocalStore struct {
	dir       string
	publicURL string
}

func NewLocalStore(dir, publicURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (s *LocalStore) Put(ctx context.Context, obj ports.BlobObject) (domain.FileRef, error) {
	if err := ctx.Err(); err != nil {
		return domain.FileRef{}, err
	}
	name := uuid.NewString() + strings.ToLower(path.Ext(obj.Name))
	if err := os.WriteFile(filepath.Join(s.dir, name), obj.Data, 0o644); err != nil {
		return domain.FileRef{}, fmt.Errorf("write %s: %w", name, err)
	}
	return domain.FileRef{
		URL:          s.publicURL + "/" + name,
		OriginalName: obj.Name,
		MimeType:     obj.ContentType,
	}, nil
}

// Dir is the directory files are written to.
func (s *LocalStore) Dir() string { return s.dir }
