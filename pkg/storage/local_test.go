package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStorage_WriteReadList(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s, err := NewLocalStorage(LocalConfig{BasePath: t.TempDir()})
	req.NoError(err)

	// Given two objects under one prefix and one elsewhere
	req.NoError(s.Write(ctx, "recaps/S1/2.json", strings.NewReader(`{"n":2}`), -1, "application/json"))
	req.NoError(s.Write(ctx, "recaps/S1/1.json", strings.NewReader(`{"n":1}`), -1, "application/json"))
	req.NoError(s.Write(ctx, "recaps/S2/1.json", strings.NewReader(`{}`), -1, "application/json"))

	// When listing the prefix
	files, err := s.List(ctx, "recaps/S1/")

	// Then only that prefix is returned, ordered by key
	req.NoError(err)
	req.Len(files, 2)
	req.Equal("recaps/S1/1.json", files[0].Key)
	req.Equal("recaps/S1/2.json", files[1].Key)

	rc, err := s.Read(ctx, "recaps/S1/2.json")
	req.NoError(err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	req.NoError(err)
	req.Equal(`{"n":2}`, string(body))
}

func TestLocalStorage_ReadMissing(t *testing.T) {
	s, err := NewLocalStorage(LocalConfig{BasePath: t.TempDir()})
	require.NoError(t, err)

	_, err = s.Read(context.Background(), "nope.json")

	require.True(t, errors.Is(err, ErrNotFound))
}

func TestLocalStorage_DeleteIsIdempotent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s, err := NewLocalStorage(LocalConfig{BasePath: t.TempDir()})
	req.NoError(err)
	req.NoError(s.Write(ctx, "a.json", strings.NewReader("{}"), 2, "application/json"))

	req.NoError(s.Delete(ctx, "a.json"))
	req.NoError(s.Delete(ctx, "a.json"))

	files, err := s.List(ctx, "")
	req.NoError(err)
	req.Empty(files)
}

func TestLocalStorage_KeysCannotEscapeBase(t *testing.T) {
	s, err := NewLocalStorage(LocalConfig{BasePath: t.TempDir()})
	require.NoError(t, err)

	require.Equal(t, s.basePath, s.fullPath("../../etc/passwd"))
}
