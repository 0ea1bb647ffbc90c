package services

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// ExportFailure is one document that could not be exported.
type ExportFailure struct {
	DocumentID string
	FileName   string
	Err        error
}

// ExportReport summarizes a bulk export. A report with failures is still a
// successful export of everything else.
type ExportReport struct {
	Exported int
	Failures []ExportFailure
}

var extByMime = map[string]string{
	"application/pdf": "pdf",
	"image/png":       "png",
	"image/jpeg":      "jpg",
}

// ExportAll decrypts every owned document and writes them into a zip archive
// on w. A document that fails to download or decrypt is recorded in the
// report and skipped; the batch never aborts because of one bad item.
func (s *DocService) ExportAll(ctx context.Context, w io.Writer, onProgress func(done, total int)) (*ExportReport, error) {
	docs, err := s.client.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	zw := zip.NewWriter(w)
	report := &ExportReport{}
	used := map[string]int{}

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		opened, err := s.ViewOwner(ctx, doc.ID)
		if err != nil {
			s.logger.Warn(ctx, "Skipping document in export", "doc_id", doc.ID, "error", err)
			report.Failures = append(report.Failures, ExportFailure{
				DocumentID: doc.ID,
				FileName:   doc.FileName,
				Err:        err,
			})
			continue
		}

		name := entryName(opened.FileName, opened.MimeType, used)
		f, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("create archive entry: %w", err)
		}
		if _, err := f.Write(opened.Data); err != nil {
			return nil, fmt.Errorf("write archive entry: %w", err)
		}
		report.Exported++

		if onProgress != nil {
			onProgress(i+1, len(docs))
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}

	return report, nil
}

// entryName builds an archive entry name from the document title and MIME
// type, suffixing duplicates with " (n)".
func entryName(fileName, mimeType string, used map[string]int) string {
	base := strings.TrimSuffix(fileName, path.Ext(fileName))
	if base == "" {
		base = "document"
	}

	ext, ok := extByMime[mimeType]
	if !ok {
		ext = "bin"
	}

	name := base + "." + ext
	if used[name] == 0 {
		used[name] = 1
		return name
	}

	// Generated names count as taken too, so a document literally titled
	// "doc (1)" cannot collide with the rename of a duplicate "doc".
	n := used[name]
	candidate := fmt.Sprintf("%s (%d).%s", base, n, ext)
	for used[candidate] > 0 {
		n++
		candidate = fmt.Sprintf("%s (%d).%s", base, n, ext)
	}
	used[name] = n + 1
	used[candidate] = 1
	return candidate
}
