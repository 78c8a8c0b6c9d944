package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
	"github.com/sbms-academy/server/internal/config"
)

type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

// Cloudinary stores objects under a configured root folder.
type Cloudinary struct {
	api    uploadAPI
	folder string
	logger zerolog.Logger
}

func NewCloudinary(cfg config.MediaConfig, logger zerolog.Logger) (*Cloudinary, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &Cloudinary{
		api:    &cld.Upload,
		folder: strings.Trim(cfg.Folder, "/"),
		logger: logger.With().Str("component", "media").Logger(),
	}, nil
}

func (c *Cloudinary) Put(ctx context.Context, obj Object) (string, error) {
	if len(obj.Data) == 0 {
		return "", errors.New("media: empty object")
	}

	publicID := PublicID(c.folder, obj.Path)
	overwrite := true
	resp, err := c.api.Upload(ctx, bytes.NewReader(obj.Data), uploader.UploadParams{
		PublicID:  publicID,
		Overwrite: &overwrite,
	})
	if err != nil {
		return "", fmt.Errorf("%w: cloudinary upload %s: %w", ErrUpstream, publicID, err)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: cloudinary upload %s: empty response", ErrUpstream, publicID)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("%w: cloudinary upload %s: %s", ErrUpstream, publicID, resp.Error.Message)
	}

	c.logger.Debug().
		Str("public_id", resp.PublicID).
		Int("bytes", resp.Bytes).
		Msg("media stored")
	return resp.SecureURL, nil
}

// PublicID maps an object path onto a Cloudinary public id: the extension is
// dropped (Cloudinary derives it from the content) and the root folder
// prefixed.
func PublicID(folder, objectPath string) string {
	clean := strings.TrimPrefix(path.Clean("/"+objectPath), "/")
	clean = strings.TrimSuffix(clean, path.Ext(clean))
	if folder == "" {
		return clean
	}
	return folder + "/" + clean
}
