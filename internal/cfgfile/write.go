// SPDX-License-Identifier: MIT

package cfgfile

import (
	"bufio"
	"fmt"
	"io"

	"github.com/google/renameio/v2"

	xglog "github.com/ManuGH/romcfg/internal/log"
	"github.com/ManuGH/romcfg/internal/metrics"
)

// Save writes the document to its backing file. It reports false when no
// path is set or the write fails; the in-memory state is kept either way.
func (d *Document) Save() bool {
	return d.SaveErr() == nil
}

// SaveErr is Save returning the cause of a failure.
//
// The file is replaced atomically: the content goes to a temporary file in
// the same directory which is synced and renamed over the target. Existing
// file permissions are kept.
func (d *Document) SaveErr() error {
	logger := xglog.WithComponent("cfgfile")

	if d.path == "" {
		logger.Error().Str(xglog.FieldEvent, "cfgfile.no_path").Msg("config file path not specified in save")
		metrics.IncSave(metrics.ResultFailure)
		return ErrNoPath
	}

	err := d.writeFile()
	metrics.IncSave(metrics.Result(err))
	if err != nil {
		logger.Error().Err(err).
			Str(xglog.FieldEvent, "cfgfile.save_failed").
			Str(xglog.FieldPath, d.path).
			Msg("config file not saved")
		return err
	}
	logger.Debug().
		Str(xglog.FieldEvent, "cfgfile.saved").
		Str(xglog.FieldPath, d.path).
		Int(xglog.FieldCount, d.Len()).
		Msg("config file saved")
	return nil
}

func (d *Document) writeFile() error {
	pending, err := renameio.NewPendingFile(d.path,
		renameio.WithPermissions(0o644),
		renameio.WithExistingPermissions(),
	)
	if err != nil {
		return fmt.Errorf("create pending config file: %w", err)
	}
	defer func() {
		// no-op once committed
		_ = pending.Cleanup()
	}()

	if _, err := d.WriteTo(pending); err != nil {
		return fmt.Errorf("write config data: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace config file: %w", err)
	}
	return nil
}

// WriteTo serializes the document to w in section order. It implements
// io.WriterTo.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: bufio.NewWriter(w)}

	unterminated := false
	for _, s := range d.sections {
		for _, l := range s.lines {
			if unterminated {
				cw.WriteString("\n")
			}
			cw.WriteString(l.text(s.params[l.key]))
			cw.WriteString(l.eol)
			unterminated = l.eol == ""
		}
	}

	if cw.err != nil {
		return cw.n, cw.err
	}
	if err := cw.w.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// countingWriter remembers the first write error so WriteTo can stay linear.
type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countingWriter) WriteString(s string) {
	if c.err != nil {
		return
	}
	n, err := c.w.WriteString(s)
	c.n += int64(n)
	c.err = err
}
