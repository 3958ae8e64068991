package checks

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"testing"

	"github.com/cdalton713/easier-blob-storage/core/journal"
	"github.com/cdalton713/easier-blob-storage/core/source/mocks"
	"github.com/cdalton713/easier-blob-storage/core/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeLister struct {
	items []storage.BlobItem
	err   error
}

func (f *fakeLister) Container() string { return "reports" }

func (f *fakeLister) List(_ context.Context, _ storage.ListOptions) iter.Seq2[storage.BlobItem, error] {
	return func(yield func(storage.BlobItem, error) bool) {
		if f.err != nil {
			yield(storage.BlobItem{}, f.err)
			return
		}
		for _, item := range f.items {
			if !yield(item, nil) {
				return
			}
		}
	}
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestCheckContainer(t *testing.T) {
	tests := []struct {
		name      string
		lister    *fakeLister
		wantEmpty bool
		wantErr   bool
	}{
		{name: "WithBlobs", lister: &fakeLister{items: []storage.BlobItem{{Name: "a"}, {Name: "b"}}}},
		{name: "Empty", lister: &fakeLister{}, wantEmpty: true},
		{name: "ListError", lister: &fakeLister{err: assert.AnError}, wantEmpty: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := CheckContainer(context.Background(), tt.lister)
			require.NotNil(t, report)
			assert.Equal(t, "reports", report.Container)
			assert.Equal(t, tt.wantEmpty, report.Empty)
			if tt.wantErr {
				assert.ErrorIs(t, err, assert.AnError)
				assert.False(t, report.Reachable)
				return
			}
			require.NoError(t, err)
			assert.True(t, report.Reachable)
		})
	}
}

func TestCheckJournal(t *testing.T) {
	t.Run("Migrated", func(t *testing.T) {
		db := openDB(t)
		_, err := journal.New(db)
		require.NoError(t, err)

		report, err := CheckJournal(db)
		require.NoError(t, err)
		assert.True(t, report.Matched)
		assert.Equal(t, "transfer_journal", report.Table)
		assert.Empty(t, report.MissingColumns)
	})

	t.Run("MissingTable", func(t *testing.T) {
		report, err := CheckJournal(openDB(t))
		require.NoError(t, err)
		assert.False(t, report.Matched)
		assert.Contains(t, report.MissingColumns, "blob_path")
	})

	t.Run("MissingColumn", func(t *testing.T) {
		db := openDB(t)
		require.NoError(t, db.Exec("CREATE TABLE transfer_journal (id integer primary key, action text)").Error)

		report, err := CheckJournal(db)
		require.NoError(t, err)
		assert.False(t, report.Matched)
		assert.Contains(t, report.MissingColumns, "status")
		assert.NotContains(t, report.MissingColumns, "action")
	})

	t.Run("NilDB", func(t *testing.T) {
		_, err := CheckJournal(nil)
		assert.Error(t, err)
	})
}

func TestCheckSource(t *testing.T) {
	ctx := context.Background()

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "exports").Return(true, nil)
	client.On("BucketExists", mock.Anything, "broken").Return(false, assert.AnError)

	report, err := CheckSource(ctx, client, "exports")
	require.NoError(t, err)
	assert.True(t, report.Exists)

	_, err = CheckSource(ctx, client, "broken")
	assert.ErrorIs(t, err, assert.AnError)

	_, err = CheckSource(ctx, client, "")
	assert.Error(t, err)
}
