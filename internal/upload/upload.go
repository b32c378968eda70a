// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package upload copies rendered papers to an rclone remote and returns a
// shareable link. Files without the brand prefix are rejected, never
// renamed.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/paper-engine/internal/container"
	"github.com/pdiddy/paper-engine/internal/naming"
	"github.com/pdiddy/paper-engine/internal/pipeline"
	"github.com/pdiddy/paper-engine/pkg/types"
)

// Uploader implements pipeline.Uploader with rclone.
type Uploader struct {
	Remote   string
	FolderID string
	Config   string
	Binary   string
	Exec     container.Executor

	// Progress receives verification notes. Nil discards.
	Progress io.Writer
}

var _ pipeline.Uploader = (*Uploader)(nil)

// New returns an uploader for cfg backed by the host rclone binary.
func New(cfg types.UploadConfig, progress io.Writer) *Uploader {
	return &Uploader{
		Remote:   cfg.Remote,
		FolderID: cfg.FolderID,
		Config:   cfg.RcloneConfig,
		Binary:   cfg.RcloneBinary,
		Exec:     container.OSExecutor{},
		Progress: progress,
	}
}

// Upload checks the brand prefix and the local file, copies the PDF to the
// remote folder, and returns its shareable link. When no link can be
// generated the remote path is returned instead.
func (u *Uploader) Upload(ctx context.Context, art types.Artifact, _ types.MetadataRecord) (string, error) {
	name := art.Filename
	if name == "" {
		name = filepath.Base(art.PDFPath)
	}
	if err := naming.ValidatePrefix(name); err != nil {
		return "", err
	}
	if err := VerifyLocal(art.PDFPath); err != nil {
		return "", err
	}
	if u.Remote == "" {
		return "", fmt.Errorf("no rclone remote configured")
	}

	if _, err := u.rclone(ctx, "copy", art.PDFPath, u.folder()); err != nil {
		return "", fmt.Errorf("copying %s: %w", name, err)
	}
	u.progress("uploaded %s to %s", name, u.folder())

	remotePath := u.folder() + "/" + name
	if strings.HasSuffix(u.folder(), ":") {
		remotePath = u.folder() + name
	}

	if ok, err := u.Verify(ctx, name); err != nil || !ok {
		u.progress("warning: %s not listed in %s", name, u.folder())
	}

	link, err := u.rclone(ctx, "link", remotePath)
	if err != nil || link == "" {
		u.progress("warning: no shareable link for %s, using %s", name, remotePath)
		return remotePath, nil
	}
	return link, nil
}

// Verify reports whether name is listed in the remote folder.
func (u *Uploader) Verify(ctx context.Context, name string) (bool, error) {
	out, err := u.rclone(ctx, "lsf", u.folder())
	if err != nil {
		return false, err
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == name {
			return true, nil
		}
	}
	return false, nil
}

// VerifyLocal checks that the PDF exists in local storage and is not empty.
func VerifyLocal(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("local file: %w", err)
	}
	if info.IsDir() || info.Size() == 0 {
		return fmt.Errorf("local file %s is empty", path)
	}
	return nil
}

func (u *Uploader) folder() string {
	return u.Remote + ":" + u.FolderID
}

func (u *Uploader) rclone(ctx context.Context, args ...string) (string, error) {
	bin := u.Binary
	if bin == "" {
		bin = "rclone"
	}
	if u.Config != "" {
		args = append(args, "--config", u.Config)
	}
	var out bytes.Buffer
	if err := u.Exec.RunPiped(ctx, bin, args, nil, &out); err != nil {
		return "", fmt.Errorf("rclone %s: %w", args[0], err)
	}
	return strings.TrimSpace(out.String()), nil
}

func (u *Uploader) progress(format string, args ...any) {
	if u.Progress == nil {
		return
	}
	fmt.Fprintf(u.Progress, format+"\n", args...)
}
