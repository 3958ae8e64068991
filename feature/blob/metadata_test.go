package blob

import (
	"context"
	"testing"
	"time"

	"github.com/cdalton713/easier-blob-storage/core/journal"
	"github.com/cdalton713/easier-blob-storage/core/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSetMetadata(t *testing.T) {
	rec := &recorder{}
	c, _, cc := setupClient(t, WithJournal(rec))

	bc := newBlob("a.txt")
	bc.On("SetMetadata", mock.Anything, map[string]string{"owner": "ops"}).Return(nil)
	cc.On("NewBlobClient", "a.txt").Return(bc)

	require.NoError(t, c.SetMetadata(context.Background(), Path("a.txt"), map[string]string{"owner": "ops"}))

	bc.AssertExpectations(t)
	require.Len(t, rec.entries, 1)
	assert.Equal(t, journal.ActionMetadata, rec.entries[0].Action)
}

func TestClearMetadata(t *testing.T) {
	c, _, _ := setupClient(t)

	bc := newBlob("a.txt")
	bc.On("SetMetadata", mock.Anything, map[string]string{}).Return(nil)

	require.NoError(t, c.ClearMetadata(context.Background(), Ref{Client: bc}))
	bc.AssertExpectations(t)
}

func TestSetMetadataOnBoundHandle(t *testing.T) {
	c, _, cc := setupClient(t)

	bc := newBlob("bound.txt")
	bc.On("SetMetadata", mock.Anything, map[string]string{"k": "v"}).Return(nil)
	cc.On("NewBlobClient", "bound.txt").Return(bc)

	_, err := c.Bind(Path("bound.txt"))
	require.NoError(t, err)

	require.NoError(t, c.SetMetadata(context.Background(), Ref{}, map[string]string{"k": "v"}))
	bc.AssertExpectations(t)
}

func TestSetMetadataError(t *testing.T) {
	c, _, _ := setupClient(t)

	bc := newBlob("a.txt")
	bc.On("SetMetadata", mock.Anything, mock.Anything).Return(assert.AnError)

	err := c.SetMetadata(context.Background(), Ref{Client: bc, Path: "a.txt"}, nil)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "failed to set metadata on a.txt")
}

func TestGetMetadata(t *testing.T) {
	c, _, _ := setupClient(t)

	props := &storage.Properties{
		Size:         42,
		ContentType:  "text/csv",
		LastModified: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Metadata:     map[string]string{"owner": "ops"},
	}
	bc := newBlob("a.csv")
	bc.On("GetProperties", mock.Anything).Return(props, nil)

	got, err := c.GetMetadata(context.Background(), Ref{Client: bc})
	require.NoError(t, err)
	assert.Equal(t, props, got)

	_, err = c.GetMetadata(context.Background(), Ref{})
	assert.ErrorIs(t, err, ErrMissingReference)
}
