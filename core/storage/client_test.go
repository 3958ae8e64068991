package storage_test

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/cdalton713/easier-blob-storage/core/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConnString = "DefaultEndpointsProtocol=https;AccountName=test;AccountKey=U29tZUtleQ==;EndpointSuffix=core.windows.net"

func TestOpen(t *testing.T) {
	tests := []struct {
		name        string
		connString  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "ValidConnectionString",
			connString: testConnString,
		},
		{
			name:       "Azurite",
			connString: "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1",
		},
		{
			name:        "Garbage",
			connString:  "not a connection string",
			wantErr:     true,
			errContains: "malformed",
		},
		{
			name:        "NoAccount",
			connString:  "DefaultEndpointsProtocol=https;AccountKey=U29tZUtleQ==",
			wantErr:     true,
			errContains: "AccountName",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := storage.Open(tt.connString, 5*time.Second)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, svc)
		})
	}
}

func TestService_Handles(t *testing.T) {
	svc, err := storage.Open(testConnString, 0)
	require.NoError(t, err)

	assert.Equal(t, "test", svc.AccountName())

	c := svc.NewContainerClient("reports")
	assert.Equal(t, "reports", c.Name())
	assert.Equal(t, "https://test.blob.core.windows.net/reports", c.URL())

	b := c.NewBlobClient("2024/report.csv")
	assert.True(t, strings.HasPrefix(b.URL(), "https://test.blob.core.windows.net/reports/2024"))

	fromURL, err := svc.NewBlobClientFromURL("https://test.blob.core.windows.net/reports/a.txt?sv=2021-08-06&sig=abc")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(fromURL.URL(), "https://test.blob.core.windows.net/reports/a.txt"))
}

func TestService_SignBlob(t *testing.T) {
	svc, err := storage.Open(testConnString, 0)
	require.NoError(t, err)

	start := time.Date(2024, 5, 1, 11, 59, 0, 0, time.UTC)
	expiry := time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)

	token, err := svc.SignBlob(storage.SASValues{
		Container:   "reports",
		Blob:        "2024/report.csv",
		Permissions: storage.Permissions{Read: true},
		StartsOn:    start,
		ExpiresOn:   expiry,
	})
	require.NoError(t, err)

	q, err := url.ParseQuery(token)
	require.NoError(t, err)
	assert.NotEmpty(t, q.Get("sig"))
	assert.Equal(t, "r", q.Get("sp"))
	assert.Equal(t, "b", q.Get("sr"))

	st, err := time.Parse(time.RFC3339, q.Get("st"))
	require.NoError(t, err)
	se, err := time.Parse(time.RFC3339, q.Get("se"))
	require.NoError(t, err)
	assert.True(t, st.Equal(start))
	assert.True(t, se.Equal(expiry))
}

func TestService_SignBlobAllPermissions(t *testing.T) {
	svc, err := storage.Open(testConnString, 0)
	require.NoError(t, err)

	now := time.Now().UTC()
	token, err := svc.SignBlob(storage.SASValues{
		Container:   "reports",
		Blob:        "2024/my report#1.csv",
		Permissions: storage.AllPermissions(),
		StartsOn:    now.Add(-time.Minute),
		ExpiresOn:   now.Add(time.Hour),
	})
	require.NoError(t, err)

	q, err := url.ParseQuery(token)
	require.NoError(t, err)
	assert.Equal(t, "racwd", q.Get("sp"))
}

func TestService_SignBlobWithoutKey(t *testing.T) {
	svc, err := storage.Open("BlobEndpoint=https://test.blob.core.windows.net/;SharedAccessSignature=sv=2021-08-06&ss=b&srt=co&sp=rl&sig=abc", 0)
	require.NoError(t, err)

	_, err = svc.SignBlob(storage.SASValues{Container: "c", Blob: "b", Permissions: storage.AllPermissions()})
	assert.ErrorIs(t, err, storage.ErrNoSharedKey)
}

func TestPermissions_String(t *testing.T) {
	assert.Equal(t, "racwd", storage.AllPermissions().String())
	assert.Equal(t, "r", storage.Permissions{Read: true}.String())
	assert.Equal(t, "", storage.Permissions{}.String())
}

func TestCopyStatus_Terminal(t *testing.T) {
	assert.False(t, storage.CopyStatusPending.Terminal())
	assert.False(t, storage.CopyStatus("").Terminal())
	assert.True(t, storage.CopyStatusSuccess.Terminal())
	assert.True(t, storage.CopyStatusFailed.Terminal())
	assert.True(t, storage.CopyStatusAborted.Terminal())
}
