// Package staging writes resolved trees to disk atomically.
//
// A tree is first materialized in a hidden sibling of the destination,
// ".<base>.staging-<uuid>", by a single synthfs pipeline with rollback
// enabled. Only a complete staging directory is renamed into place, so the
// destination is either absent, in its prior state, or fully written.
package staging

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/NextNodeSolutions/project-generator/pkg/errors"
	"github.com/NextNodeSolutions/project-generator/pkg/logging"
	"github.com/NextNodeSolutions/project-generator/pkg/types"
)

// Options control Commit
type Options struct {
	// Force replaces an existing non-empty destination. The previous content
	// is restored if the swap fails.
	Force bool
}

// Writer materializes resolved trees
type Writer struct {
	logger     zerolog.Logger
	filesystem filesystem.FullFileSystem
	rollback   bool
	token      func() string
}

// NewWriter creates a writer over the host filesystem
func NewWriter() *Writer {
	// absolute paths are passed straight through to the OS
	osfs := filesystem.NewOSFileSystem("/")
	pathAwareFS := synthfs.NewPathAwareFileSystem(osfs, "/").WithAbsolutePaths()

	return &Writer{
		logger:     logging.GetLogger("staging"),
		filesystem: pathAwareFS,
		rollback:   true,
		token:      func() string { return uuid.NewString() },
	}
}

// StagingPath returns the scratch sibling used for dest
func StagingPath(dest, token string) string {
	return filepath.Join(filepath.Dir(dest), fmt.Sprintf(".%s.staging-%s", filepath.Base(dest), token))
}

func backupPath(dest, token string) string {
	return filepath.Join(filepath.Dir(dest), fmt.Sprintf(".%s.backup-%s", filepath.Base(dest), token))
}

// Stage creates dir and writes every entry of tree below it in one pipeline.
// dir must not exist yet.
func (w *Writer) Stage(ctx context.Context, tree *types.ResolvedTree, dir string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.ErrCanceled, "staging canceled")
	}

	sfs := synthfs.New()
	ops := []synthfs.Operation{sfs.CreateDirWithID("mkdir_root", dir, 0755)}

	for i, entry := range tree.Entries {
		target := filepath.Join(dir, filepath.FromSlash(entry.Path))
		if !within(dir, target) {
			return errors.Newf(errors.ErrWriteStage, "entry %s escapes the staging directory", entry.Path).
				WithDetail("path", entry.Path)
		}

		if entry.Dir {
			id := fmt.Sprintf("mkdir_%d_%s", i, entry.Path)
			ops = append(ops, sfs.CreateDirWithID(id, target, modeOr(entry.Mode, 0755)))
			continue
		}
		id := fmt.Sprintf("write_%d_%s", i, entry.Path)
		ops = append(ops, sfs.CreateFileWithID(id, target, entry.Content, modeOr(entry.Mode, 0644)))
	}

	options := synthfs.DefaultPipelineOptions()
	options.RollbackOnError = w.rollback

	w.logger.Debug().
		Str("dir", dir).
		Int("operationCount", len(ops)).
		Bool("rollbackEnabled", w.rollback).
		Msg("Executing staging operations")

	if _, err := synthfs.RunWithOptions(ctx, w.filesystem, options, ops...); err != nil {
		return errors.Wrapf(err, errors.ErrWriteStage, "failed to stage %s", dir).
			WithDetail("path", dir)
	}
	return nil
}

// destState describes what Commit finds at the destination
type destState int

const (
	destAbsent destState = iota
	destEmpty
	destOccupied
)

// Commit writes tree to dest through a staging sibling and returns the
// absolute destination path.
func (w *Writer) Commit(ctx context.Context, tree *types.ResolvedTree, dest string, opts Options) (string, error) {
	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "invalid destination %s", dest)
	}
	dest = abs

	state, err := w.checkDestination(dest, opts)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrWriteStage, "cannot create parent of %s", dest).
			WithDetail("path", dest)
	}

	token := w.token()
	staging := StagingPath(dest, token)
	logger := w.logger.With().Str("dest", dest).Str("staging", staging).Logger()

	if err := w.Stage(ctx, tree, staging); err != nil {
		w.cleanup(staging)
		return "", err
	}

	if err := ctx.Err(); err != nil {
		w.cleanup(staging)
		return "", errors.Wrap(err, errors.ErrCanceled, "write canceled before commit")
	}

	var restore func() error
	switch state {
	case destEmpty:
		if err := os.Remove(dest); err != nil {
			w.cleanup(staging)
			return "", errors.Wrapf(err, errors.ErrWriteStage, "cannot replace empty %s", dest).
				WithDetail("path", dest)
		}
		restore = func() error { return os.Mkdir(dest, 0755) }
	case destOccupied:
		backup := backupPath(dest, token)
		if err := os.Rename(dest, backup); err != nil {
			w.cleanup(staging)
			return "", errors.Wrapf(err, errors.ErrWriteStage, "cannot move existing %s aside", dest).
				WithDetail("path", dest)
		}
		restore = func() error { return os.Rename(backup, dest) }
		defer func() {
			if _, statErr := os.Lstat(backup); statErr == nil {
				w.cleanup(backup)
			}
		}()
	}

	if err := os.Rename(staging, dest); err != nil {
		if restore != nil {
			if restoreErr := restore(); restoreErr != nil {
				logger.Error().Err(restoreErr).Msg("Failed to restore previous destination")
			}
		}
		w.cleanup(staging)
		return "", errors.Wrapf(err, errors.ErrWriteStage, "cannot move staged tree to %s", dest).
			WithDetail("path", dest)
	}

	logger.Info().
		Int("entries", len(tree.Entries)).
		Bool("replaced", state == destOccupied).
		Msg("Tree committed")
	return dest, nil
}

// checkDestination classifies dest, refusing existing content unless forced
func (w *Writer) checkDestination(dest string, opts Options) (destState, error) {
	info, err := os.Lstat(dest)
	if os.IsNotExist(err) {
		return destAbsent, nil
	}
	if err != nil {
		return destAbsent, errors.Wrapf(err, errors.ErrWriteStage, "cannot inspect %s", dest).
			WithDetail("path", dest)
	}

	if info.IsDir() {
		entries, err := os.ReadDir(dest)
		if err != nil {
			return destAbsent, errors.Wrapf(err, errors.ErrWriteStage, "cannot read %s", dest).
				WithDetail("path", dest)
		}
		if len(entries) == 0 {
			return destEmpty, nil
		}
	}

	if !opts.Force {
		return destAbsent, errors.Newf(errors.ErrWriteDestExists, "%s already exists (use --force to replace it)", dest).
			WithDetail("path", dest)
	}
	return destOccupied, nil
}

func (w *Writer) cleanup(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		w.logger.Warn().Err(err).Str("path", dir).Msg("Failed to remove scratch directory")
	}
}

func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func modeOr(m, fallback fs.FileMode) fs.FileMode {
	if m.Perm() == 0 {
		return fallback
	}
	return m.Perm()
}
