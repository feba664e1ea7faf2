// SPDX-License-Identifier: MIT

package catalog

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/romcfg/internal/cfgfile"
	"github.com/ManuGH/romcfg/internal/config"
	xglog "github.com/ManuGH/romcfg/internal/log"
	"github.com/ManuGH/romcfg/internal/metrics"
	"github.com/ManuGH/romcfg/internal/store"
)

var archiveExtensions = []string{".zip", ".7z"}

// Scan outcomes.
const (
	OutcomeCached  = "cached"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"
)

// ScanResult summarises one Builder.Scan.
type ScanResult struct {
	ID       string
	Started  time.Time
	Finished time.Time
	Cached   int
	Skipped  int
	Errors   int
	Removed  int
}

// Builder fills the catalog store from ROM directories.
type Builder struct {
	holder     *store.Holder
	describer  Describer
	workers    int
	maxDepth   int
	extensions []string
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithDescriber replaces the FileNameDescriber default.
func WithDescriber(d Describer) BuilderOption {
	return func(b *Builder) {
		if d != nil {
			b.describer = d
		}
	}
}

// WithWorkers bounds the number of files hashed at once.
func WithWorkers(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithMaxDepth limits how deep below a root the walk descends. Zero means
// no limit.
func WithMaxDepth(n int) BuilderOption {
	return func(b *Builder) {
		if n >= 0 {
			b.maxDepth = n
		}
	}
}

// WithExtensions replaces config.DefaultExtensions.
func WithExtensions(exts []string) BuilderOption {
	return func(b *Builder) {
		if len(exts) > 0 {
			b.extensions = exts
		}
	}
}

// NewBuilder returns a builder writing to the catalog held by holder.
func NewBuilder(holder *store.Holder, opts ...BuilderOption) *Builder {
	b := &Builder{
		holder:     holder,
		describer:  FileNameDescriber{},
		workers:    4,
		extensions: config.DefaultExtensions,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ScanOptions translates the scan section of the application config.
func ScanOptions(cfg config.ScanConfig) []BuilderOption {
	return []BuilderOption{
		WithWorkers(cfg.Workers),
		WithMaxDepth(cfg.MaxDepth),
		WithExtensions(cfg.Extensions),
	}
}

type candidate struct {
	path    string
	archive bool
}

type hashed struct {
	entry Entry
	done  bool
	err   error
}

// Scan walks roots, hashes every ROM file it finds and writes one entry per
// file. With clearFirst the catalog is emptied before anything is written.
// Entries hashed before a cancellation are still written and saved, and the
// context error is returned.
func (b *Builder) Scan(ctx context.Context, roots []string, clearFirst bool) (*ScanResult, error) {
	res := &ScanResult{ID: uuid.NewString(), Started: time.Now()}
	ctx = xglog.ContextWithScanID(xglog.ContextWithStore(ctx, b.holder.Name()), res.ID)
	logger := xglog.WithComponentFromContext(ctx, "catalog")

	logger.Info().
		Str(xglog.FieldEvent, "catalog.scan_start").
		Strs(xglog.FieldRoot, roots).
		Bool("clear", clearFirst).
		Msg("catalog scan started")

	var known func(string) bool
	b.holder.View(func(doc *cfgfile.Document) {
		if clearFirst {
			known = func(string) bool { return false }
			return
		}
		cat := New(doc.Clone())
		known = cat.HasZip
	})

	files, walkErr := b.collect(ctx, roots, res, known)

	results := make([]hashed, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, f := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e, err := b.describe(f)
			results[i] = hashed{entry: e, done: true, err: err}
			return nil
		})
	}
	hashErr := g.Wait()

	// Single writer: every entry goes into the document from here.
	err := b.holder.Update(func(doc *cfgfile.Document) error {
		if clearFirst {
			doc.Clear()
		}
		cat := New(doc)
		for i, r := range results {
			if !r.done {
				continue
			}
			if r.err != nil {
				res.Errors++
				metrics.IncScannedFile(OutcomeError)
				logger.Warn().Err(r.err).
					Str(xglog.FieldEvent, "catalog.file_error").
					Str(xglog.FieldPath, files[i].path).
					Msg("cannot catalog rom file")
				continue
			}
			cat.Put(r.entry)
			res.Cached++
			metrics.IncScannedFile(OutcomeCached)
		}
		res.Removed = cat.CleanupMissing()
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("catalog: write entries: %w", err)
	}

	saveErr := b.holder.Save(ctx)
	res.Finished = time.Now()

	scanErr := errors.Join(walkErr, hashErr)
	if scanErr == nil {
		scanErr = ctx.Err()
	}

	evt := logger.Info()
	if scanErr != nil || saveErr != nil {
		evt = logger.Warn().Err(errors.Join(scanErr, saveErr))
	}
	evt.Str(xglog.FieldEvent, "catalog.scan_done").
		Int("cached", res.Cached).
		Int("skipped", res.Skipped).
		Int("errors", res.Errors).
		Int("removed", res.Removed).
		Dur("duration", res.Finished.Sub(res.Started)).
		Msg("catalog scan finished")

	if saveErr != nil {
		return res, fmt.Errorf("catalog: save: %w", saveErr)
	}
	if scanErr != nil {
		return res, fmt.Errorf("catalog: scan: %w", scanErr)
	}
	return res, nil
}

// collect walks every root and returns the files to hash. Archives already
// in the catalog are skipped.
func (b *Builder) collect(ctx context.Context, roots []string, res *ScanResult, known func(string) bool) ([]candidate, error) {
	logger := xglog.WithComponentFromContext(ctx, "catalog")

	var files []candidate
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if walkErr != nil {
				res.Errors++
				logger.Warn().Err(walkErr).
					Str(xglog.FieldEvent, "catalog.walk_error").
					Str(xglog.FieldPath, path).
					Msg("catalog walk error")
				if d != nil && d.IsDir() && path != root {
					return fs.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				rel, err := filepath.Rel(root, path)
				if err != nil {
					return nil
				}
				depth := strings.Count(rel, string(os.PathSeparator))
				if b.maxDepth > 0 && rel != "." && depth >= b.maxDepth {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}

			ext := strings.ToLower(filepath.Ext(path))
			if !slices.Contains(b.extensions, ext) {
				return nil
			}
			archive := slices.Contains(archiveExtensions, ext)
			if archive && known(path) {
				res.Skipped++
				metrics.IncScannedFile(OutcomeSkipped)
				return nil
			}
			files = append(files, candidate{path: path, archive: archive})
			return nil
		})
		if err != nil {
			if ctx.Err() != nil {
				return files, nil
			}
			return files, fmt.Errorf("walk %s: %w", root, err)
		}
	}
	return files, nil
}

func (b *Builder) describe(f candidate) (Entry, error) {
	sum, err := hashFile(f.path)
	if err != nil {
		return Entry{}, err
	}
	det, err := b.describer.Describe(f.path, sum)
	if err != nil {
		return Entry{}, fmt.Errorf("describe %s: %w", f.path, err)
	}
	e := Entry{
		MD5:         sum,
		GoodName:    det.GoodName,
		BaseName:    det.BaseName,
		RomPath:     f.path,
		ArtPath:     det.ArtPath,
		CRC:         det.CRC,
		HeaderName:  det.HeaderName,
		CountryCode: det.CountryCode,
	}
	if f.archive {
		e.ZipPath = f.path
	}
	return e, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil))), nil
}
