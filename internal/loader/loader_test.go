package loader_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/rpggio/tracespace/internal/domain/snapshot"
	"github.com/rpggio/tracespace/internal/loader"
	"github.com/rpggio/tracespace/internal/testserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHTTPLoader(t *testing.T, ss *testserver.SnapshotServer) *loader.Loader {
	t.Helper()
	l, err := loader.New(loader.Options{Endpoint: ss.URL()}, nil)
	require.NoError(t, err)
	t.Cleanup(l.Close)
	return l
}

func TestFetch_HTTPSuccess(t *testing.T) {
	ss := testserver.New(t, testserver.SnapshotJSON(10, 1, true))
	l := newHTTPLoader(t, ss)

	res := l.Fetch(context.Background())
	require.NoError(t, res.Err)
	require.True(t, res.OK())
	assert.Equal(t, uint64(1), res.Seq)
	assert.Equal(t, 12, res.Snapshot.OrganismCount())
	assert.NotEmpty(t, res.Raw)

	ids := ss.RequestIDs()
	require.Len(t, ids, 1)
	assert.Equal(t, res.RequestID, ids[0])
	_, err := uuid.Parse(ids[0])
	assert.NoError(t, err)
}

func TestFetch_SequenceIncreases(t *testing.T) {
	ss := testserver.New(t, testserver.SnapshotJSON(1, 0, false))
	l := newHTTPLoader(t, ss)

	first := l.Fetch(context.Background())
	second := l.Fetch(context.Background())
	assert.Less(t, first.Seq, second.Seq)
	assert.Equal(t, second.Seq, l.LastSeq())
}

func TestFetch_ServerErrorIsFetchError(t *testing.T) {
	ss := testserver.New(t, []byte(`{"error":"boom"}`))
	ss.SetStatus(http.StatusInternalServerError)
	l := newHTTPLoader(t, ss)

	res := l.Fetch(context.Background())
	require.Error(t, res.Err)
	assert.False(t, res.OK())
	assert.Nil(t, res.Snapshot)

	var fe *snapshot.FetchError
	require.True(t, errors.As(res.Err, &fe))
	assert.Equal(t, http.StatusInternalServerError, fe.StatusCode)
	assert.Equal(t, ss.URL(), fe.Endpoint)
	assert.ErrorIs(t, res.Err, snapshot.ErrFetch)
}

func TestFetch_MalformedBody(t *testing.T) {
	ss := testserver.New(t, []byte(`<html>not json</html>`))
	l := newHTTPLoader(t, ss)

	res := l.Fetch(context.Background())
	var me *snapshot.MalformedSnapshotError
	require.True(t, errors.As(res.Err, &me))
	assert.ErrorIs(t, res.Err, snapshot.ErrMalformed)
}

func TestFetch_TransportFailure(t *testing.T) {
	l, err := loader.New(loader.Options{Endpoint: "http://127.0.0.1:1/api/latest"}, nil)
	require.NoError(t, err)
	t.Cleanup(l.Close)

	res := l.Fetch(context.Background())
	var fe *snapshot.FetchError
	require.True(t, errors.As(res.Err, &fe))
	assert.Zero(t, fe.StatusCode)
	assert.Error(t, fe.Cause)
}

func TestFetch_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest.json")
	require.NoError(t, os.WriteFile(path, testserver.SnapshotJSON(3, 1, false), 0o644))

	for _, endpoint := range []string{path, "file://" + path} {
		l, err := loader.New(loader.Options{Endpoint: endpoint}, nil)
		require.NoError(t, err)
		assert.Equal(t, path, l.Path())

		res := l.Fetch(context.Background())
		require.NoError(t, res.Err)
		assert.Equal(t, 4, res.Snapshot.OrganismCount())
	}
}

func TestFetch_MissingFile(t *testing.T) {
	l, err := loader.New(loader.Options{Endpoint: filepath.Join(t.TempDir(), "missing.json")}, nil)
	require.NoError(t, err)

	res := l.Fetch(context.Background())
	assert.ErrorIs(t, res.Err, snapshot.ErrFetch)
	assert.ErrorIs(t, res.Err, os.ErrNotExist)
}

func TestFromCache_IsSequenceZero(t *testing.T) {
	l, err := loader.New(loader.Options{Endpoint: "latest.json"}, nil)
	require.NoError(t, err)

	res := l.FromCache(testserver.SnapshotJSON(2, 0, false))
	require.True(t, res.OK())
	assert.Zero(t, res.Seq)
	assert.Zero(t, l.LastSeq())
}

func TestNew_RequiresEndpoint(t *testing.T) {
	_, err := loader.New(loader.Options{}, nil)
	require.Error(t, err)
}
