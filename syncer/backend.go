package syncer

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Backend is a single-file backup target: a user-chosen cloud drive or
// local file in the browser original, any file-like target here. Content
// is the CSV backup format; reconciliation is by modification time.
type Backend interface {
	// Name identifies the target in status messages.
	Name() string
	// Stat returns the backup's modification time.
	Stat(ctx context.Context) (time.Time, error)
	// Read returns the full backup content.
	Read(ctx context.Context) ([]byte, error)
	// Write replaces the full backup content.
	Write(ctx context.Context, data []byte) error
}

// FileBackend is a Backend on the local filesystem.
type FileBackend struct {
	Path string
}

func (b *FileBackend) Name() string { return b.Path }

func (b *FileBackend) Stat(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(b.Path)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot stat backup %q: %w", b.Path, err)
	}
	return info.ModTime(), nil
}

func (b *FileBackend) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(b.Path)
	if err != nil {
		return nil, fmt.Errorf("cannot read backup %q: %w", b.Path, err)
	}
	return data, nil
}

func (b *FileBackend) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.WriteFile(b.Path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write backup %q: %w", b.Path, err)
	}
	return nil
}
