package storage

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildConnectionString(t *testing.T) {
	triples := []struct{ account, container, key string }{
		{"acct", "reports", "a2V5"},
		{"other", "c-1", "U29tZUtleQ=="},
	}
	for _, tt := range triples {
		got := BuildConnectionString("https", tt.account, tt.key, DefaultEndpointSuffix)
		want := fmt.Sprintf("DefaultEndpointsProtocol=https;AccountName=%s;AccountKey=%s;EndpointSuffix=core.windows.net", tt.account, tt.key)
		assert.Equal(t, want, got)
	}
}

func TestParseConnectionString(t *testing.T) {
	t.Run("AllFields", func(t *testing.T) {
		cs, err := ParseConnectionString("DefaultEndpointsProtocol=http;AccountName=acct;AccountKey=U29tZUtleQ==;EndpointSuffix=core.chinacloudapi.cn")
		require.NoError(t, err)
		assert.Equal(t, "http", cs.Protocol)
		assert.Equal(t, "acct", cs.AccountName)
		assert.Equal(t, "U29tZUtleQ==", cs.AccountKey)
		assert.Equal(t, "core.chinacloudapi.cn", cs.EndpointSuffix)
		assert.Equal(t, "http://acct.blob.core.chinacloudapi.cn/reports", cs.ContainerURL("reports"))
	})

	t.Run("Defaults", func(t *testing.T) {
		cs, err := ParseConnectionString("AccountName=acct;AccountKey=a2V5")
		require.NoError(t, err)
		assert.Equal(t, DefaultProtocol, cs.Protocol)
		assert.Equal(t, DefaultEndpointSuffix, cs.EndpointSuffix)
	})

	t.Run("RoundTrip", func(t *testing.T) {
		s := BuildConnectionString("https", "acct", "U29tZUtleQ==", DefaultEndpointSuffix)
		cs, err := ParseConnectionString(s)
		require.NoError(t, err)
		assert.Equal(t, s, cs.String())
	})

	t.Run("BlobEndpoint", func(t *testing.T) {
		cs, err := ParseConnectionString("AccountName=devstoreaccount1;AccountKey=a2V5;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1/")
		require.NoError(t, err)
		assert.Equal(t, "http", cs.Protocol)
		assert.Equal(t, "http://127.0.0.1:10000/devstoreaccount1/reports", cs.ContainerURL("reports"))
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := ParseConnectionString("AccountName")
		assert.Error(t, err)
	})
}

func TestBlobURL(t *testing.T) {
	base := "https://acct.blob.core.windows.net/reports"
	assert.Equal(t, base+"/2024/report.csv", BlobURL(base, "2024/report.csv"))
	assert.Equal(t, base+"/my%20file%3F.txt", BlobURL(base, "my file?.txt"))
	assert.Equal(t, base+"/a/b.txt", BlobURL(base+"/", "/a/b.txt"))
}

func TestBlobNameFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"HostStyle", "https://acct.blob.core.windows.net/reports/2024/report.csv?sig=x", "2024/report.csv"},
		{"PathStyle", "http://127.0.0.1:10000/devstoreaccount1/reports/a.txt", "a.txt"},
		{"Escaped", "https://acct.blob.core.windows.net/reports/my%20file.txt", "my file.txt"},
		{"OtherContainer", "https://acct.blob.core.windows.net/archive/x/y.bin", "x/y.bin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BlobNameFromURL(tt.url, "reports")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := BlobNameFromURL("https://acct.blob.core.windows.net/reports", "reports")
	assert.Error(t, err)
}

func TestHasSignature(t *testing.T) {
	assert.True(t, HasSignature("https://a/b/c?sv=1&sig=abc"))
	assert.False(t, HasSignature("https://a/b/c"))
}
