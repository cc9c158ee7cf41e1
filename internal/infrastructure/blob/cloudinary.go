package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// CloudinaryConfig holds the account credentials and target folder.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

// CloudinaryStore uploads files to Cloudinary and returns their secure URL.
type CloudinaryStore struct {
	api    uploadAPI
	folder string
}

func NewCloudinaryStore(cfg CloudinaryConfig) (*CloudinaryStore, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("cloudinary: cloud name, api key and api secret are required")
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &CloudinaryStore{api: &cld.Upload, folder: cfg.Folder}, nil
}

func (s *CloudinaryStore) Put(ctx context.Context, obj ports.BlobObject) (domain.FileRef, error) {
	res, err := s.api.Upload(ctx, bytes.NewReader(obj.Data), uploader.UploadParams{
		PublicID:     publicID(obj.Name),
		Folder:       s.folder,
		ResourceType: "auto",
	})
	if err != nil {
		return domain.FileRef{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return domain.FileRef{}, fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	return domain.FileRef{URL: res.SecureURL, OriginalName: obj.Name, MimeType: obj.ContentType}, nil
}

// publicID keeps the original base name readable and makes it unique.
func publicID(name string) string {
	base := strings.TrimSuffix(path.Base(name), path.Ext(name))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, base)
	if base == "" || base == "." {
		base = "file"
	}
	return uuid.NewString() + "-" + base
}
