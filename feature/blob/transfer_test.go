package blob

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cdalton713/easier-blob-storage/core/journal"
	"github.com/cdalton713/easier-blob-storage/core/storage"
	"github.com/cdalton713/easier-blob-storage/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {
	rec := &recorder{}
	c, _, cc := setupClient(t, WithJournal(rec))

	local := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(local, []byte("a,b\n1,2\n"), 0o644))

	bc := newBlob("2024/report.csv")
	bc.On("Upload", mock.Anything, mock.MatchedBy(func(r io.ReadSeeker) bool {
		data, err := io.ReadAll(r)
		return err == nil && string(data) == "a,b\n1,2\n"
	})).Return(nil)
	cc.On("NewBlobClient", "2024/report.csv").Return(bc)

	require.NoError(t, c.Upload(context.Background(), local, Path("2024/report.csv")))

	bc.AssertExpectations(t)
	require.Len(t, rec.entries, 1)
	assert.Equal(t, journal.ActionUpload, rec.entries[0].Action)
	assert.Equal(t, "2024/report.csv", rec.entries[0].BlobPath)
}

func TestUploadErrors(t *testing.T) {
	c, _, cc := setupClient(t)

	t.Run("MissingReference", func(t *testing.T) {
		err := c.Upload(context.Background(), "unused", Ref{})
		assert.ErrorIs(t, err, ErrMissingReference)
	})

	t.Run("MissingFile", func(t *testing.T) {
		cc.On("NewBlobClient", "missing.txt").Return(newBlob("missing.txt"))
		err := c.Upload(context.Background(), filepath.Join(t.TempDir(), "nope.txt"), Path("missing.txt"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("ServiceError", func(t *testing.T) {
		rec := &recorder{}
		c.journal = rec
		defer func() { c.journal = nil }()

		bc := newBlob("fail.txt")
		bc.On("Upload", mock.Anything, mock.Anything).Return(assert.AnError)

		err := c.UploadReader(context.Background(), strings.NewReader("x"), Ref{Client: bc, Path: "fail.txt"})
		assert.ErrorIs(t, err, assert.AnError)
		require.Len(t, rec.entries, 1)
		assert.Equal(t, journal.StatusFailed, rec.entries[0].Status)
		assert.NotEmpty(t, rec.entries[0].Error)
	})
}

func TestDownload(t *testing.T) {
	rec := &recorder{}
	c, _, cc := setupClient(t, WithJournal(rec))
	dest := t.TempDir()

	bc := newBlob("2024/report.csv")
	bc.On("Download", mock.Anything).Return(io.NopCloser(strings.NewReader("payload")), nil)
	cc.On("NewBlobClient", "2024/report.csv").Return(bc)

	res, err := c.Download(context.Background(), Path("2024/report.csv"), dest, DownloadPolicy{
		SubFolders: []string{"inbox", "today"},
	})
	require.NoError(t, err)

	want := filepath.Join(dest, "inbox", "today", "2024", "report.csv")
	assert.Equal(t, want, res.LocalPath)
	assert.False(t, res.Skipped)

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	require.Len(t, rec.entries, 1)
	assert.Equal(t, journal.ActionDownload, rec.entries[0].Action)
	assert.Equal(t, want, rec.entries[0].Target)
}

func TestDownloadOverwrites(t *testing.T) {
	c, _, _ := setupClient(t)
	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "a.txt"), []byte("old and longer"), 0o644))

	bc := newBlob("a.txt")
	bc.On("Download", mock.Anything).Return(io.NopCloser(strings.NewReader("new")), nil)

	_, err := c.Download(context.Background(), Ref{Client: bc, Path: "a.txt"}, dest, DownloadPolicy{})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dest, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestDownloadBySignedURL(t *testing.T) {
	c, svc, _ := setupClient(t)
	dest := t.TempDir()

	sasURL := testContainerURL + "/dir/my%20file.txt?sv=1&sig=abc"
	bc := new(mocks.BlobClient)
	bc.On("URL").Return(sasURL)
	bc.On("Download", mock.Anything).Return(io.NopCloser(strings.NewReader("x")), nil)
	svc.On("NewBlobClientFromURL", sasURL).Return(bc, nil)

	res, err := c.Download(context.Background(), SASURL(sasURL), dest, DownloadPolicy{})
	require.NoError(t, err)
	assert.Equal(t, "dir/my file.txt", res.Blob)
	assert.FileExists(t, filepath.Join(dest, "dir", "my file.txt"))
}

func TestDownloadUsesBoundBlobName(t *testing.T) {
	rec := &recorder{}
	c, _, cc := setupClient(t, WithJournal(rec))
	dest := t.TempDir()

	bound := newBlob("data/a.csv")
	bound.On("Download", mock.Anything).Return(io.NopCloser(strings.NewReader("csv-bytes")), nil)
	cc.On("NewBlobClient", "data/a.csv").Return(bound)

	_, err := c.Bind(Path("data/a.csv"))
	require.NoError(t, err)

	res, err := c.Download(context.Background(), Path("img/b.png"), dest, DownloadPolicy{
		OnlyTypes: []string{"csv"},
	})
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, "data/a.csv", res.Blob)
	assert.Equal(t, filepath.Join(dest, "data", "a.csv"), res.LocalPath)
	assert.NoFileExists(t, filepath.Join(dest, "img", "b.png"))

	data, err := os.ReadFile(res.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, "csv-bytes", string(data))

	require.Len(t, rec.entries, 1)
	assert.Equal(t, "data/a.csv", rec.entries[0].BlobPath)
}

func TestDownloadRejectsEscapingName(t *testing.T) {
	rec := &recorder{}
	c, _, cc := setupClient(t, WithJournal(rec))
	root := t.TempDir()
	dest := filepath.Join(root, "inbox")

	bc := newBlob("../../etc/passwd")
	cc.On("NewBlobClient", "../../etc/passwd").Return(bc)

	_, err := c.Download(context.Background(), Path("../../etc/passwd"), dest, DownloadPolicy{})
	assert.ErrorIs(t, err, ErrUnsafePath)
	bc.AssertNotCalled(t, "Download", mock.Anything)
	assert.NoDirExists(t, dest)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, journal.StatusFailed, rec.entries[0].Status)
}

func TestWithin(t *testing.T) {
	dir := filepath.Join("srv", "dl")
	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "Nested", path: filepath.Join(dir, "a", "b.txt"), want: true},
		{name: "DotDotPrefixedName", path: filepath.Join(dir, "..data"), want: true},
		{name: "Parent", path: filepath.Join(dir, ".."), want: false},
		{name: "Sibling", path: filepath.Join(dir, "..", "other", "x"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, within(dir, tt.path))
		})
	}
}

func TestDownloadAllowListSkips(t *testing.T) {
	rec := &recorder{}
	c, _, _ := setupClient(t, WithJournal(rec))
	dest := t.TempDir()

	bc := newBlob("notes.txt")

	res, err := c.Download(context.Background(), Ref{Client: bc, Path: "notes.txt"}, dest, DownloadPolicy{
		OnlyTypes: []string{"csv"},
	})
	require.NoError(t, err)

	assert.True(t, res.Skipped)
	assert.Empty(t, res.LocalPath)
	assert.NoFileExists(t, filepath.Join(dest, "notes.txt"))
	bc.AssertNotCalled(t, "Download", mock.Anything)
	bc.AssertNotCalled(t, "SetMetadata", mock.Anything, mock.Anything)
	require.Len(t, rec.entries, 1)
	assert.Equal(t, journal.StatusSkipped, rec.entries[0].Status)
}

func TestDownloadDenyListMarksMetadata(t *testing.T) {
	c, _, _ := setupClient(t)
	metadata := map[string]string{"owner": "ops"}

	bc := newBlob("scratch.tmp")
	bc.On("SetMetadata", mock.Anything, map[string]string{
		"owner":    "ops",
		"DOWNLOAD": "IGNORED DUE TO FILETYPE",
	}).Return(nil)

	res, err := c.Download(context.Background(), Ref{Client: bc, Path: "scratch.tmp"}, t.TempDir(), DownloadPolicy{
		IgnoredTypes: []string{"TMP"},
		Metadata:     metadata,
	})
	require.NoError(t, err)

	assert.True(t, res.Skipped)
	bc.AssertExpectations(t)
	bc.AssertNotCalled(t, "Download", mock.Anything)
	assert.Len(t, metadata, 1)
}

func TestDownloadDenyListWithoutMetadata(t *testing.T) {
	c, _, _ := setupClient(t)

	bc := newBlob("scratch.tmp")

	res, err := c.Download(context.Background(), Ref{Client: bc, Path: "scratch.tmp"}, t.TempDir(), DownloadPolicy{
		IgnoredTypes: []string{"tmp"},
	})
	require.NoError(t, err)

	assert.True(t, res.Skipped)
	bc.AssertNotCalled(t, "SetMetadata", mock.Anything, mock.Anything)
}

func TestDownloadThenMetadataAndDelete(t *testing.T) {
	c, _, _ := setupClient(t)

	bc := newBlob("a.csv")
	bc.On("Download", mock.Anything).Return(io.NopCloser(strings.NewReader("x")), nil)
	bc.On("SetMetadata", mock.Anything, map[string]string{"state": "done"}).Return(nil)
	bc.On("Delete", mock.Anything).Return(nil)

	_, err := c.Download(context.Background(), Ref{Client: bc, Path: "a.csv"}, t.TempDir(), DownloadPolicy{
		Metadata:    map[string]string{"state": "done"},
		DeleteAfter: true,
		MoveAfter:   "ignored.csv",
	})
	require.NoError(t, err)

	bc.AssertExpectations(t)
	bc.AssertNotCalled(t, "StartCopyFromURL", mock.Anything, mock.Anything)
}

func TestDownloadThenMove(t *testing.T) {
	c, svc, _ := setupClient(t)

	src := newBlob("in/a.csv")
	src.On("Download", mock.Anything).Return(io.NopCloser(strings.NewReader("x")), nil)
	src.On("Delete", mock.Anything).Return(nil)

	svc.On("SignBlob", mock.MatchedBy(func(v storage.SASValues) bool {
		return v.Blob == "in/a.csv" && v.Permissions == storage.Permissions{Read: true}
	})).Return("sv=1&sig=abc", nil)

	archive := new(mocks.ContainerClient)
	dst := new(mocks.BlobClient)
	svc.On("NewContainerClient", "archive").Return(archive)
	archive.On("NewBlobClient", "done/a.csv").Return(dst)
	dst.On("StartCopyFromURL", mock.Anything, testContainerURL+"/in/a.csv?sv=1&sig=abc").
		Return(&storage.CopyState{ID: "c1", Status: storage.CopyStatusSuccess}, nil)

	_, err := c.Download(context.Background(), Ref{Client: src, Path: "in/a.csv"}, t.TempDir(), DownloadPolicy{
		MoveAfter:     "done/a.csv",
		MoveContainer: "archive",
	})
	require.NoError(t, err)

	dst.AssertExpectations(t)
	src.AssertCalled(t, "Delete", mock.Anything)
}

func TestDownloadFailureSkipsPostActions(t *testing.T) {
	rec := &recorder{}
	c, _, _ := setupClient(t, WithJournal(rec))

	bc := newBlob("a.csv")
	bc.On("Download", mock.Anything).Return(nil, assert.AnError)

	_, err := c.Download(context.Background(), Ref{Client: bc, Path: "a.csv"}, t.TempDir(), DownloadPolicy{
		DeleteAfter: true,
	})
	assert.ErrorIs(t, err, assert.AnError)
	bc.AssertNotCalled(t, "Delete", mock.Anything)
	require.Len(t, rec.entries, 1)
	assert.Equal(t, journal.StatusFailed, rec.entries[0].Status)
}

func TestDownloadMissingReference(t *testing.T) {
	c, _, _ := setupClient(t)

	_, err := c.Download(context.Background(), Ref{}, t.TempDir(), DownloadPolicy{})
	assert.ErrorIs(t, err, ErrMissingReference)
}

func TestCreateFolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	require.NoError(t, createFolder(dir))
	require.NoError(t, createFolder(dir))
	assert.DirExists(t, dir)
}
