package export

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/sbms-academy/server/internal/domain/registrations"
	"golang.org/x/sync/errgroup"
)

// FetchConcurrency caps parallel downloads from the media CDN.
const FetchConcurrency = 4

const unassignedAcademy = "Unassigned"

// ArchiveSummary reports how many assets made it into an archive.
type ArchiveSummary struct {
	Added   int
	Skipped int
}

// BuildArchive downloads every asset and writes them to a zip laid out as
// Certificates/<academy>/<file> and ID_Cards/<academy>/<file>. An asset that
// fails to download is logged and left out; only a failure writing the zip
// itself aborts the archive.
func BuildArchive(ctx context.Context, w io.Writer, assets []registrations.Asset, fetcher Fetcher, logger zerolog.Logger) (ArchiveSummary, error) {
	files := make([]*File, len(assets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(FetchConcurrency)
	for i := range assets {
		g.Go(func() error {
			asset := assets[i]
			file, err := fetcher.Fetch(gctx, asset.URL)
			if err != nil {
				logger.Warn().
					Err(err).
					Str("url", asset.URL).
					Str("kind", string(asset.Kind)).
					Str("reference", asset.Reference).
					Msg("skipping asset that failed to download")
				return nil
			}
			files[i] = &file
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ArchiveSummary{}, err
	}
	if err := ctx.Err(); err != nil {
		return ArchiveSummary{}, err
	}

	var summary ArchiveSummary
	zw := zip.NewWriter(w)
	used := make(map[string]int)
	for i, asset := range assets {
		file := files[i]
		if file == nil {
			summary.Skipped++
			continue
		}
		name := uniqueName(used, archivePath(asset, file.ContentType))
		entry, err := zw.Create(name)
		if err != nil {
			return summary, fmt.Errorf("create %s: %w", name, err)
		}
		if _, err := entry.Write(file.Data); err != nil {
			return summary, fmt.Errorf("write %s: %w", name, err)
		}
		summary.Added++
	}
	if err := zw.Close(); err != nil {
		return summary, fmt.Errorf("close archive: %w", err)
	}
	return summary, nil
}

func archivePath(asset registrations.Asset, contentType string) string {
	dir := "Certificates"
	if asset.Kind == registrations.AssetIDCard {
		dir = "ID_Cards"
	}
	academy := safeName(asset.Academy)
	if academy == "" {
		academy = unassignedAcademy
	}

	base := safeName(asset.ParticipantName)
	if ref := safeName(asset.Reference); ref != "" {
		if base == "" {
			base = ref
		} else {
			base += "_" + ref
		}
	}
	if base == "" {
		base = "file"
	}
	return path.Join(dir, academy, base+extensionFor(contentType, asset.URL))
}

// extensionFor prefers the served Content-Type over whatever the URL says.
func extensionFor(contentType, url string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err == nil {
		switch mediaType {
		case "image/jpeg", "image/jpg":
			return ".jpg"
		case "image/png":
			return ".png"
		case "image/webp":
			return ".webp"
		case "application/pdf":
			return ".pdf"
		}
	}
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	if ext := strings.ToLower(path.Ext(url)); ext != "" && len(ext) <= 5 {
		return ext
	}
	return ""
}

func safeName(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteRune('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}

func uniqueName(used map[string]int, name string) string {
	n := used[name]
	used[name] = n + 1
	if n == 0 {
		return name
	}
	ext := path.Ext(name)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n+1, ext)
}
