package transport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/goslice/internal/testutil"
	"github.com/philipparndt/goslice/internal/transport"
)

type fakeRenderer struct {
	called string
}

func (r *fakeRenderer) Render(_ context.Context, scadFile string) ([]byte, error) {
	r.called = scadFile
	return []byte("solid rendered"), nil
}

func TestFetchURL(t *testing.T) {
	payload := testutil.ASCII(testutil.Cube(10))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stl/cube.stl":
			_, _ = w.Write([]byte(payload))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	f := transport.New(testutil.NewTestLogger(t))

	data, err := f.Fetch(context.Background(), srv.URL+"/stl/cube.stl")
	require.NoError(t, err)
	assert.Equal(t, payload, string(data))

	_, err = f.Fetch(context.Background(), srv.URL+"/stl/missing.stl")
	require.ErrorIs(t, err, transport.ErrStatus)
	assert.Contains(t, err.Error(), "404 Not Found")
}

func TestFetchURLTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 64))
	}))
	t.Cleanup(srv.Close)

	f := transport.New(nil, transport.WithMaxSize(32), transport.WithClient(srv.Client()))
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "exceeds")
}

func TestFetchCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := transport.New(nil).Fetch(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.stl")
	require.NoError(t, os.WriteFile(path, testutil.Binary(testutil.Cube(1)), 0o644))

	data, err := transport.New(nil).Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, data, 84+12*50)

	_, err = transport.New(nil).Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.stl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFetchOpenSCAD(t *testing.T) {
	r := &fakeRenderer{}
	data, err := transport.New(nil, transport.WithRenderer(r)).Fetch(context.Background(), "parts/bracket.scad")
	require.NoError(t, err)

	assert.Equal(t, "parts/bracket.scad", r.called)
	assert.Equal(t, "solid rendered", string(data))
}

func TestIsURL(t *testing.T) {
	assert.True(t, transport.IsURL("http://localhost/x.stl"))
	assert.True(t, transport.IsURL("https://example.com/x.stl"))
	assert.False(t, transport.IsURL("models/x.stl"))
}
