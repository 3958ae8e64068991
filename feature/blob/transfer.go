package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cdalton713/easier-blob-storage/core/journal"
	"github.com/cdalton713/easier-blob-storage/core/storage"

	"go.uber.org/zap"
)

// Upload streams the file at localPath to the blob behind ref, replacing any existing blob.
func (c *Client) Upload(ctx context.Context, localPath string, ref Ref) error {
	bc, name, err := c.target(ref)
	if err != nil {
		return err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()

	return c.upload(ctx, bc, name, f)
}

// UploadReader writes body in full to the blob behind ref, replacing any existing blob.
func (c *Client) UploadReader(ctx context.Context, body io.ReadSeeker, ref Ref) error {
	bc, name, err := c.target(ref)
	if err != nil {
		return err
	}
	return c.upload(ctx, bc, name, body)
}

func (c *Client) upload(ctx context.Context, bc storage.BlobClient, name string, body io.ReadSeeker) error {
	err := bc.Upload(ctx, body)
	c.record(ctx, journal.ActionUpload, name, "", statusOf(err), err)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	c.logger.Info("Uploaded blob", zap.String("container", c.container), zap.String("blob", name))
	return nil
}

// DownloadResult describes what Download did.
type DownloadResult struct {
	// Blob is the container-relative blob name.
	Blob string `json:"blob"`
	// LocalPath is the file written, empty when skipped.
	LocalPath string `json:"local_path,omitempty"`
	// Skipped is true when the policy filtered the blob out.
	Skipped bool `json:"skipped"`
	// Reason explains a skip.
	Reason string `json:"reason,omitempty"`
}

// Download fetches the blob behind ref into dest/SubFolders.../<blob path>, subject
// to policy. Metadata and post-actions run whether the blob was fetched or skipped.
func (c *Client) Download(ctx context.Context, ref Ref, dest string, policy DownloadPolicy) (*DownloadResult, error) {
	bc, name, err := c.target(ref)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("cannot determine blob name for %s: %w", bc.URL(), ErrMissingReference)
	}

	result := &DownloadResult{Blob: name}
	d := policy.evaluate(name)

	if d.download {
		parts := append([]string{dest}, policy.SubFolders...)
		parts = append(parts, filepath.FromSlash(name))
		localPath := filepath.Join(parts...)
		if !within(dest, localPath) {
			err := fmt.Errorf("%w: %s", ErrUnsafePath, name)
			c.record(ctx, journal.ActionDownload, name, localPath, journal.StatusFailed, err)
			return nil, err
		}

		err := c.downloadTo(ctx, bc, localPath)
		c.record(ctx, journal.ActionDownload, name, localPath, statusOf(err), err)
		if err != nil {
			return nil, err
		}
		result.LocalPath = localPath
		c.logger.Info("Downloaded blob", zap.String("blob", name), zap.String("path", localPath))
	} else {
		result.Skipped = true
		result.Reason = d.reason
		c.record(ctx, journal.ActionDownload, name, "", journal.StatusSkipped, nil)
		c.logger.Debug("Skipped blob", zap.String("blob", name), zap.String("reason", d.reason))
	}

	if len(d.metadata) > 0 {
		if err := c.SetMetadata(ctx, Ref{Client: bc, Path: name}, d.metadata); err != nil {
			return result, err
		}
	}

	switch {
	case policy.DeleteAfter:
		if err := c.Delete(ctx, Ref{Client: bc, Path: name}); err != nil {
			return result, err
		}
	case policy.MoveAfter != "":
		opts := TransferOptions{DestContainer: policy.MoveContainer, Source: Ref{Client: bc, Path: name}}
		if err := c.Move(ctx, name, policy.MoveAfter, opts); err != nil {
			return result, err
		}
	}

	return result, nil
}

// downloadTo writes the blob content to localPath, creating parent folders.
func (c *Client) downloadTo(ctx context.Context, bc storage.BlobClient, localPath string) (err error) {
	if err := createFolder(filepath.Dir(localPath)); err != nil {
		return err
	}

	body, err := bc.Download(ctx)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", bc.URL(), err)
	}
	defer body.Close()

	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", localPath, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if _, err := io.Copy(f, body); err != nil {
		return fmt.Errorf("failed to write %s: %w", localPath, err)
	}
	return nil
}

// within reports whether path stays inside dir once cleaned.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// createFolder creates dir and any missing parents.
func createFolder(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create folder %s: %w", dir, err)
	}
	return nil
}
