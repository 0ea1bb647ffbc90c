// Package normalize converts arbitrary uploaded input (possibly multiple
// files) into exactly one primary artifact plus one optional thumbnail,
// ready for encryption.
//
// The pipeline is linear, with no branching back:
//
//	received → merged (multi-PDF only) → rotated → binarized → compressed → thumbnailed → ready
//
// Raster inputs go through every stage; PDFs stop after the merge; anything
// the image decoder cannot read passes through untouched. Any stage failing
// after the merge aborts the whole normalization — no partial artifact is
// ever returned.
package normalize

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/docvault/internal/logging"
)

// Stage identifies a pipeline step for progress reporting.
type Stage string

const (
	StageReceived     Stage = "received"
	StageMerging      Stage = "merging"
	StageRotating     Stage = "rotating"
	StageBinarizing   Stage = "binarizing"
	StageCompressing  Stage = "compressing"
	StageThumbnailing Stage = "thumbnailing"
	StageReady        Stage = "ready"
)

// ErrNoInput is returned when Run is called with no files.
var ErrNoInput = errors.New("no input files")

const pdfMIME = "application/pdf"

// Input is one uploaded file. MIME may be empty; the content is sniffed then.
type Input struct {
	Name string
	MIME string
	Data []byte
}

// Result is the normalized output.
//
// Thumbnail is nil for non-raster input (a PDF is usable without one).
// Ignored lists the names of files dropped by the merge policy; callers must
// surface these, never swallow them.
type Result struct {
	Artifact  []byte
	Thumbnail []byte
	FileName  string
	MIME      string
	Ignored   []string
}

// Options are the fixed pipeline parameters. They are not user-tunable at
// runtime; tests construct their own.
type Options struct {
	MaxLongEdge       int     // long-edge cap of the compressed artifact, px
	MaxArtifactBytes  int     // soft byte ceiling of the compressed artifact
	ThumbLongEdge     int     // long-edge cap of the thumbnail, px
	MaxThumbBytes     int     // soft byte ceiling of the thumbnail
	DenoiseDiameter   int     // bilateral filter neighborhood diameter, odd
	DenoiseSigmaColor float64 // bilateral intensity-difference falloff
	DenoiseSigmaSpace float64 // bilateral spatial falloff
	ThresholdWindow   int     // local-threshold window side, odd
	ThresholdBias     int     // subtracted from the local mean
}

// DefaultOptions mirrors the browser pipeline: 4000px/2MB artifact,
// 400px/150KB thumbnail, 9/75/75 bilateral denoise, 31px threshold window
// with bias 10.
func DefaultOptions() Options {
	return Options{
		MaxLongEdge:       4000,
		MaxArtifactBytes:  2 << 20,
		ThumbLongEdge:     400,
		MaxThumbBytes:     150 << 10,
		DenoiseDiameter:   9,
		DenoiseSigmaColor: 75,
		DenoiseSigmaSpace: 75,
		ThresholdWindow:   31,
		ThresholdBias:     10,
	}
}

// Pipeline runs the normalization stages. It is an explicitly constructed
// component, not package state, so callers can substitute fakes.
type Pipeline struct {
	opts Options
	log  logging.Logger
}

func New(log logging.Logger, opts Options) *Pipeline {
	return &Pipeline{opts: opts, log: log.With("module", "normalize")}
}

// Run executes the pipeline over the input files. onStage, when non-nil, is
// invoked as each stage starts; it is a side channel with no effect on the
// result.
func (p *Pipeline) Run(ctx context.Context, files []Input, onStage func(Stage)) (*Result, error) {
	if len(files) == 0 {
		return nil, ErrNoInput
	}

	report := func(s Stage) {
		if onStage != nil {
			onStage(s)
		}
	}
	report(StageReceived)

	primary, ignored, err := p.selectPrimary(ctx, files, report)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{FileName: primary.Name, MIME: primary.MIME, Ignored: ignored}

	if !isRaster(primary.MIME) {
		// PDFs and unknown formats pass through unmodified.
		res.Artifact = primary.Data
		report(StageReady)
		return res, nil
	}

	img, decErr := decodeImage(primary.Data)
	if decErr != nil {
		// The MIME claimed an image but the decoder disagrees. Degrade
		// gracefully: store the bytes as-is rather than failing the upload.
		p.log.Warn(ctx, "image decode failed, storing unmodified", "file", primary.Name, "error", decErr)
		res.Artifact = primary.Data
		report(StageReady)
		return res, nil
	}

	report(StageRotating)
	img = applyOrientation(img, orientationOf(primary.Data))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report(StageBinarizing)
	bin := p.binarize(img)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report(StageCompressing)
	compressed, artifact, err := p.compress(bin)
	if err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report(StageThumbnailing)
	// The thumbnail derives from the compressed artifact, not the original.
	thumb, err := p.thumbnail(compressed)
	if err != nil {
		return nil, fmt.Errorf("thumbnail: %w", err)
	}

	res.Artifact = artifact
	res.Thumbnail = thumb
	res.FileName = replaceExt(primary.Name, ".jpg")
	res.MIME = "image/jpeg"
	report(StageReady)
	return res, nil
}

// selectPrimary applies the merge policy: several PDFs concatenate into one
// artifact in input order; any other multi-file input proceeds with the
// first file and reports the rest as ignored.
func (p *Pipeline) selectPrimary(ctx context.Context, files []Input, report func(Stage)) (Input, []string, error) {
	for i := range files {
		if files[i].MIME == "" {
			files[i].MIME = sniffMIME(files[i].Data)
		}
	}

	if len(files) == 1 {
		return files[0], nil, nil
	}

	if allPDF(files) {
		report(StageMerging)
		buffers := make([][]byte, len(files))
		for i, f := range files {
			buffers[i] = f.Data
		}
		merged, err := mergePDFs(buffers)
		if err != nil {
			return Input{}, nil, fmt.Errorf("pdf merge: %w", err)
		}
		return Input{Name: "merged.pdf", MIME: pdfMIME, Data: merged}, nil, nil
	}

	ignored := make([]string, 0, len(files)-1)
	for _, f := range files[1:] {
		ignored = append(ignored, f.Name)
	}
	p.log.Warn(ctx, "mixed multi-file input, only first file processed", "ignored", ignored)
	return files[0], ignored, nil
}

func allPDF(files []Input) bool {
	for _, f := range files {
		if f.MIME != pdfMIME {
			return false
		}
	}
	return true
}

func isRaster(mime string) bool {
	return strings.HasPrefix(mime, "image/")
}

func sniffMIME(data []byte) string {
	return http.DetectContentType(data)
}

func replaceExt(name, ext string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i] + ext
	}
	return name + ext
}
