package finder

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	calls int
	err   error
}

func (f *fakeRemote) IsRemote(name string) bool { return strings.HasPrefix(name, "remote:") }

func (f *fakeRemote) Resolve(_ context.Context, id string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "/cache/" + strings.TrimPrefix(id, "remote:") + ".template", nil
}

func TestFindRemoteIsMemoised(t *testing.T) {
	remote := &fakeRemote{}
	f := New(remote, afero.NewMemMapFs(), nil, nil)

	path, err := f.Find(context.Background(), " remote:dasLamm ")
	require.NoError(t, err)
	assert.Equal(t, "/cache/dasLamm.template", path)

	again, err := f.Find(context.Background(), "remote:dasLamm")
	require.NoError(t, err)
	assert.Equal(t, path, again)
	assert.Equal(t, 1, remote.calls)
	assert.Equal(t, 1, f.Cached())

	f.Forget("remote:dasLamm")
	_, err = f.Find(context.Background(), "remote:dasLamm")
	require.NoError(t, err)
	assert.Equal(t, 2, remote.calls)
}

func TestFindRemoteErrorsAreNotCached(t *testing.T) {
	boom := errors.New("remote template not found")
	remote := &fakeRemote{err: boom}
	f := New(remote, afero.NewMemMapFs(), nil, nil)

	_, err := f.Find(context.Background(), "remote:missing")
	require.ErrorIs(t, err, boom)
	_, err = f.Find(context.Background(), "remote:missing")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, remote.calls)
	assert.Zero(t, f.Cached())
}

func TestFindLocal(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/views/layouts/main.template", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/theme/welcome.html", []byte("y"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/views/welcome.html", []byte("z"), 0o644))

	remote := &fakeRemote{}
	f := New(remote, fs, []string{"/views", "/theme"}, []string{"html", ".template"})

	path, err := f.Find(context.Background(), "layouts.main")
	require.NoError(t, err)
	assert.Equal(t, "/views/layouts/main.template", path)

	path, err = f.Find(context.Background(), "welcome")
	require.NoError(t, err)
	assert.Equal(t, "/views/welcome.html", path, "靠前的 view-path 优先")

	_, err = f.Find(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrViewNotFound)
	assert.Zero(t, remote.calls)

	f.Flush()
	assert.Zero(t, f.Cached())
}

func TestFindWithoutRemoteResolver(t *testing.T) {
	f := New(nil, afero.NewMemMapFs(), []string{"/views"}, nil)
	_, err := f.Find(context.Background(), "remote:dasLamm")
	assert.ErrorIs(t, err, ErrViewNotFound)
}
