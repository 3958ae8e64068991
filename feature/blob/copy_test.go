package blob

import (
	"context"
	"testing"
	"time"

	"github.com/cdalton713/easier-blob-storage/core/journal"
	"github.com/cdalton713/easier-blob-storage/core/storage"
	"github.com/cdalton713/easier-blob-storage/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTransferRejectsBeforeRemoteCalls(t *testing.T) {
	tests := []struct {
		name    string
		action  Action
		src     string
		dst     string
		opts    TransferOptions
		wantErr error
	}{
		{
			name:    "InvalidAction",
			action:  "rename",
			src:     "a.txt",
			dst:     "a.txt",
			wantErr: ErrInvalidAction,
		},
		{
			name:    "SelfCopyDefaultContainer",
			action:  ActionCopy,
			src:     "a.txt",
			dst:     "a.txt",
			wantErr: ErrSelfCopy,
		},
		{
			name:    "SelfMoveNamedContainer",
			action:  ActionMove,
			src:     "a.txt",
			dst:     "a.txt",
			opts:    TransferOptions{DestContainer: "reports"},
			wantErr: ErrSelfCopy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, svc, cc := setupClient(t)

			err := c.Transfer(context.Background(), tt.action, tt.src, tt.dst, tt.opts)
			assert.ErrorIs(t, err, tt.wantErr)
			cc.AssertNotCalled(t, "NewBlobClient", mock.Anything)
			svc.AssertNotCalled(t, "SignBlob", mock.Anything)
		})
	}
}

func TestCopySamePathOtherContainer(t *testing.T) {
	c, svc, cc := setupClient(t)

	src := newBlob("a.txt")
	cc.On("NewBlobClient", "a.txt").Return(src)
	svc.On("SignBlob", mock.Anything).Return("sig=abc", nil)

	backup := new(mocks.ContainerClient)
	dst := new(mocks.BlobClient)
	svc.On("NewContainerClient", "backup").Return(backup)
	backup.On("NewBlobClient", "a.txt").Return(dst)
	dst.On("StartCopyFromURL", mock.Anything, testContainerURL+"/a.txt?sig=abc").
		Return(&storage.CopyState{ID: "c1", Status: storage.CopyStatusSuccess}, nil)

	require.NoError(t, c.Copy(context.Background(), "a.txt", "a.txt", TransferOptions{DestContainer: "backup"}))
	src.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestMovePollsUntilSuccess(t *testing.T) {
	rec := &recorder{}
	c, svc, cc := setupClient(t, WithJournal(rec))

	src := newBlob("in/a.txt")
	dst := newBlob("out/a.txt")
	cc.On("NewBlobClient", "in/a.txt").Return(src)
	cc.On("NewBlobClient", "out/a.txt").Return(dst)
	svc.On("SignBlob", mock.Anything).Return("sig=abc", nil)

	dst.On("StartCopyFromURL", mock.Anything, mock.Anything).
		Return(&storage.CopyState{ID: "c1", Status: storage.CopyStatusPending}, nil)
	dst.On("GetProperties", mock.Anything).
		Return(&storage.Properties{Copy: storage.CopyState{ID: "c1", Status: storage.CopyStatusPending}}, nil).Twice()
	dst.On("GetProperties", mock.Anything).
		Return(&storage.Properties{Copy: storage.CopyState{ID: "c1", Status: storage.CopyStatusSuccess}}, nil).Once()
	src.On("Delete", mock.Anything).Return(nil)

	require.NoError(t, c.Move(context.Background(), "in/a.txt", "out/a.txt", TransferOptions{}))

	dst.AssertNumberOfCalls(t, "GetProperties", 3)
	src.AssertCalled(t, "Delete", mock.Anything)
	require.Len(t, rec.entries, 1)
	assert.Equal(t, journal.ActionMove, rec.entries[0].Action)
	assert.Equal(t, journal.StatusOK, rec.entries[0].Status)
	assert.Equal(t, "reports/out/a.txt", rec.entries[0].Target)
}

func TestMoveKeepsSourceWhenCopyFails(t *testing.T) {
	tests := []struct {
		name    string
		start   *storage.CopyState
		polled  *storage.Properties
		wantErr error
	}{
		{
			name:    "FailedImmediately",
			start:   &storage.CopyState{ID: "c1", Status: storage.CopyStatusFailed, Description: "403 source"},
			wantErr: ErrCopyFailed,
		},
		{
			name:    "AbortedWhilePolling",
			start:   &storage.CopyState{ID: "c1", Status: storage.CopyStatusPending},
			polled:  &storage.Properties{Copy: storage.CopyState{ID: "c1", Status: storage.CopyStatusAborted}},
			wantErr: ErrCopyFailed,
		},
		{
			name:    "NoCopyState",
			start:   &storage.CopyState{ID: "c1", Status: storage.CopyStatusPending},
			polled:  &storage.Properties{},
			wantErr: ErrCopyFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			c, svc, cc := setupClient(t, WithJournal(rec))

			src := newBlob("a.txt")
			dst := newBlob("b.txt")
			cc.On("NewBlobClient", "a.txt").Return(src)
			cc.On("NewBlobClient", "b.txt").Return(dst)
			svc.On("SignBlob", mock.Anything).Return("sig=abc", nil)
			dst.On("StartCopyFromURL", mock.Anything, mock.Anything).Return(tt.start, nil)
			if tt.polled != nil {
				dst.On("GetProperties", mock.Anything).Return(tt.polled, nil)
			}

			err := c.Move(context.Background(), "a.txt", "b.txt", TransferOptions{})
			assert.ErrorIs(t, err, tt.wantErr)
			src.AssertNotCalled(t, "Delete", mock.Anything)
			require.Len(t, rec.entries, 1)
			assert.Equal(t, journal.StatusFailed, rec.entries[0].Status)
		})
	}
}

func TestCopyHonoursContext(t *testing.T) {
	c, svc, cc := setupClient(t, WithCopyPollInterval(time.Hour))

	src := newBlob("a.txt")
	dst := newBlob("b.txt")
	cc.On("NewBlobClient", "a.txt").Return(src)
	cc.On("NewBlobClient", "b.txt").Return(dst)
	svc.On("SignBlob", mock.Anything).Return("sig=abc", nil)
	dst.On("StartCopyFromURL", mock.Anything, mock.Anything).
		Return(&storage.CopyState{ID: "c1", Status: storage.CopyStatusPending}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Copy(ctx, "a.txt", "b.txt", TransferOptions{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	dst.AssertNotCalled(t, "GetProperties", mock.Anything)
}

func TestCopySourceURL(t *testing.T) {
	t.Run("SignedURLKept", func(t *testing.T) {
		c, svc, _ := setupClient(t)
		signed := testContainerURL + "/a.txt?sv=1&sig=zzz"
		bc := new(mocks.BlobClient)
		bc.On("URL").Return(signed)

		assert.Equal(t, signed, c.copySourceURL(bc, "a.txt"))
		svc.AssertNotCalled(t, "SignBlob", mock.Anything)
	})

	t.Run("UnsignedURLGetsReadGrant", func(t *testing.T) {
		c, svc, _ := setupClient(t)
		svc.On("SignBlob", mock.MatchedBy(func(v storage.SASValues) bool {
			return v.Blob == "dir/a b.txt" &&
				v.Permissions == storage.Permissions{Read: true} &&
				v.ExpiresOn.Equal(fixedNow.Add(time.Hour))
		})).Return("sp=r&sig=abc", nil)

		got := c.copySourceURL(newBlob("dir/a b.txt"), "dir/a b.txt")
		assert.Equal(t, testContainerURL+"/dir/a%20b.txt?sp=r&sig=abc", got)
	})

	t.Run("SigningFailureFallsBack", func(t *testing.T) {
		c, svc, _ := setupClient(t)
		svc.On("SignBlob", mock.Anything).Return("", storage.ErrNoSharedKey)

		got := c.copySourceURL(newBlob("a.txt"), "a.txt")
		assert.Equal(t, testContainerURL+"/a.txt", got)
	})
}

func TestTransferWithSignedSource(t *testing.T) {
	c, svc, cc := setupClient(t)

	signed := "https://other.blob.core.windows.net/incoming/a.txt?sv=1&sig=zzz"
	src := new(mocks.BlobClient)
	src.On("URL").Return(signed)
	svc.On("NewBlobClientFromURL", signed).Return(src, nil)

	dst := newBlob("a.txt")
	cc.On("NewBlobClient", "a.txt").Return(dst)
	dst.On("StartCopyFromURL", mock.Anything, signed).
		Return(&storage.CopyState{ID: "c1", Status: storage.CopyStatusSuccess}, nil)

	err := c.Copy(context.Background(), "incoming/a.txt", "a.txt", TransferOptions{Source: SASURL(signed)})
	require.NoError(t, err)
	dst.AssertExpectations(t)
}
