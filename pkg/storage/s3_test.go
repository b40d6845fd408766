package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestS3Storage_KeyPrefix(t *testing.T) {
	cases := []struct {
		name      string
		prefix    string
		key       string
		objectKey string
	}{
		{"no prefix", "", "recaps/S1/1.json", "recaps/S1/1.json"},
		{"prefixed", "prod", "recaps/S1/1.json", "prod/recaps/S1/1.json"},
		{"leading slash on key", "prod", "/recaps/S1/1.json", "prod/recaps/S1/1.json"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := require.New(t)
			s := &S3Storage{bucket: "b", prefix: tc.prefix}

			req.Equal(tc.objectKey, s.objectKey(tc.key))
			req.Equal("recaps/S1/1.json", s.storageKey(s.objectKey("recaps/S1/1.json")))
		})
	}
}

func TestNewS3Storage_RequiresBucket(t *testing.T) {
	_, err := NewS3Storage(context.Background(), S3Config{Region: "us-east-1"})
	require.Error(t, err)
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(context.Background(), Config{Driver: "ftp"})
	require.Error(t, err)
}
