package uploads

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sbms-academy/server/internal/auth"
	"github.com/sbms-academy/server/internal/media"
)

// MaxImageBytes is the largest image accepted by either upload path.
const MaxImageBytes = 5 << 20

const DefaultFolder = "uploads"

var (
	ErrInvalidType = errors.New("invalid file type, only jpeg, png and webp images are allowed")
	ErrTooLarge    = errors.New("file too large, images must be 5MB or smaller")
	ErrEmpty       = errors.New("no file provided")
	ErrBadEncoding = errors.New("image is not valid base64")
	ErrBadFolder   = errors.New("invalid folder name")
)

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

var (
	dataURIPrefix = regexp.MustCompile(`^data:image/[a-zA-Z0-9.+-]+;base64,`)
	folderPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,39}(/[a-z0-9][a-z0-9_-]{0,39}){0,2}$`)
)

// ProfileLinker records a freshly uploaded photo on the owner's profile.
type ProfileLinker interface {
	SetPhotoURL(ctx context.Context, userID string, url string) error
}

type Input struct {
	Bytes    []byte
	MimeType string
	Size     int64
	Filename string
}

type Result struct {
	URL      string
	Warnings []string
}

type Pipeline struct {
	store  media.Store
	linker ProfileLinker
	logger zerolog.Logger
	now    func() time.Time
}

func NewPipeline(store media.Store, linker ProfileLinker, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		store:  store,
		linker: linker,
		logger: logger.With().Str("component", "uploads").Logger(),
		now:    time.Now,
	}
}

// Validate applies the type and size rules shared by every image upload.
func Validate(mimeType string, size int64) error {
	if _, ok := extensions[normalizeMime(mimeType)]; !ok {
		return ErrInvalidType
	}
	if size > MaxImageBytes {
		return ErrTooLarge
	}
	return nil
}

// Upload stores a profile photo for identity and links it to their profile.
// The photo is returned even when linking fails.
func (p *Pipeline) Upload(ctx context.Context, identity auth.Identity, in Input) (Result, error) {
	if in.Size == 0 {
		in.Size = int64(len(in.Bytes))
	}
	if len(in.Bytes) == 0 {
		return Result{}, ErrEmpty
	}
	if err := Validate(in.MimeType, in.Size); err != nil {
		return Result{}, err
	}

	mime := normalizeMime(in.MimeType)
	objectPath := fmt.Sprintf("user-photos/%s/profile_%s.%s", identity.ID, strconv.FormatInt(p.now().UnixMilli(), 10), extensions[mime])
	url, err := p.store.Put(ctx, media.Object{Path: objectPath, ContentType: mime, Data: in.Bytes})
	if err != nil {
		return Result{}, fmt.Errorf("store photo: %w", err)
	}

	result := Result{URL: url}
	if p.linker != nil {
		if err := p.linker.SetPhotoURL(ctx, identity.ID, url); err != nil {
			p.logger.Warn().Err(err).Str("user_id", identity.ID).Msg("photo uploaded but profile not updated")
			result.Warnings = append(result.Warnings, "photo uploaded but profile not updated")
		}
	}
	return result, nil
}

// UploadBase64 stores an admin-supplied image sent as base64, optionally as
// a data URI. The content type is sniffed from the decoded bytes.
func (p *Pipeline) UploadBase64(ctx context.Context, encoded string, folder string) (string, error) {
	data, err := DecodeBase64Image(encoded)
	if err != nil {
		return "", err
	}

	folder = strings.Trim(strings.ToLower(strings.TrimSpace(folder)), "/")
	if folder == "" {
		folder = DefaultFolder
	}
	if !folderPattern.MatchString(folder) {
		return "", ErrBadFolder
	}

	mime := http.DetectContentType(data)
	if err := Validate(mime, int64(len(data))); err != nil {
		return "", err
	}

	objectPath := path.Join(folder, strconv.FormatInt(p.now().UnixMilli(), 10)+"."+extensions[normalizeMime(mime)])
	url, err := p.store.Put(ctx, media.Object{Path: objectPath, ContentType: normalizeMime(mime), Data: data})
	if err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return url, nil
}

// DecodeBase64Image strips an optional data URI prefix and decodes the rest.
func DecodeBase64Image(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, ErrEmpty
	}
	encoded = dataURIPrefix.ReplaceAllString(encoded, "")
	if base64.StdEncoding.DecodedLen(len(encoded)) > MaxImageBytes+3 {
		return nil, ErrTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrBadEncoding
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	return data, nil
}

func normalizeMime(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "image/jpg" {
		return "image/jpeg"
	}
	return mimeType
}
