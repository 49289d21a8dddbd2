package handle

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pickfs/internal/errors"
)

// fakeNativeFile stands in for a host file handle.
type fakeNativeFile struct {
	name  string
	data  []byte
	perm  PermissionState
	reads int
}

func (f *fakeNativeFile) Kind() Kind                  { return KindFile }
func (f *fakeNativeFile) Name() string                { return f.name }
func (f *fakeNativeFile) IsSameEntry(other Entry) bool { return other == Entry(f) }
func (f *fakeNativeFile) PersistKey() string          { return "fake://" + f.name }
func (f *fakeNativeFile) QueryPermission(context.Context, PermissionMode) (PermissionState, error) {
	return f.perm, nil
}
func (f *fakeNativeFile) RequestPermission(context.Context, PermissionMode) (PermissionState, error) {
	return f.perm, nil
}
func (f *fakeNativeFile) GetFile(context.Context) (*File, error) {
	f.reads++
	return NewLazyFile(f.name, "", "text/csv", int64(len(f.data)), time.Time{},
		func(context.Context) (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(f.data)), nil
		}), nil
}

func names(t *testing.T, s Sequence) []string {
	t.Helper()
	var out []string
	for name, err := range s.Keys(context.Background()) {
		require.NoError(t, err)
		out = append(out, name)
	}
	return out
}

func TestSyntheticDirectory_OneLevelReconstruction(t *testing.T) {
	files := []*File{
		NewMemFile("a.csv", "root/a.csv", []byte("a"), time.Time{}),
		NewMemFile("b.csv", "root/sub/b.csv", []byte("b"), time.Time{}),
		NewMemFile("c.csv", "root/sub/c.csv", []byte("c"), time.Time{}),
	}
	dir := SyntheticDirectory("", files)
	assert.Equal(t, "root", dir.Name())

	entries, err := dir.Entries().Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "a.csv", entries[0].Name)
	assert.Equal(t, KindFile, entries[0].Handle.Kind())
	assert.Equal(t, "sub", entries[1].Name)
	assert.Equal(t, KindDirectory, entries[1].Handle.Kind())

	// placeholders are not recursive
	sub := entries[1].Handle.(DirectoryHandle)
	n, known := sub.Entries().Len()
	assert.True(t, known)
	assert.Zero(t, n)
	assert.Empty(t, names(t, sub.Entries()))
}

func TestSyntheticDirectory_DistinctPlaceholdersInOrder(t *testing.T) {
	files := []*File{
		NewMemFile("x", "top/z/x", nil, time.Time{}),
		NewMemFile("y", "top/a/deep/y", nil, time.Time{}),
		NewMemFile("w", "top/z/w", nil, time.Time{}),
		NewMemFile("r.txt", `top\r.txt`, nil, time.Time{}),
		NewMemFile("loose.txt", "", nil, time.Time{}),
	}
	got := names(t, SyntheticDirectory("top", files).Entries())
	if diff := cmp.Diff([]string{"z", "a", "r.txt", "loose.txt"}, got); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestSequence_RestartableAndLen(t *testing.T) {
	seq := FiniteSequence([]DirEntry{{Name: "one"}, {Name: "two"}})
	n, known := seq.Len()
	assert.True(t, known)
	assert.Equal(t, 2, n)

	assert.Equal(t, []string{"one", "two"}, names(t, seq))
	assert.Equal(t, []string{"one", "two"}, names(t, seq))

	// early stop does not leak an error
	for name, err := range seq.Keys(context.Background()) {
		require.NoError(t, err)
		assert.Equal(t, "one", name)
		break
	}
}

func TestHostSequence_ErrorYieldedLast(t *testing.T) {
	boom := errors.New("device removed")
	calls := 0
	seq := HostSequence(func(ctx context.Context, yield func(DirEntry) bool) error {
		calls++
		if !yield(DirEntry{Name: "first"}) {
			return nil
		}
		return boom
	})
	_, known := seq.Len()
	assert.False(t, known)

	entries, err := seq.Collect(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Len(t, entries, 1)

	_, _ = seq.Collect(context.Background())
	assert.Equal(t, 2, calls, "each enumeration restarts the host listing")
}

func TestFiniteSequence_HonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := FiniteSequence([]DirEntry{{Name: "a"}}).Collect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConvert_NativeRoundTrip(t *testing.T) {
	native := &fakeNativeFile{name: "sales.csv", data: []byte("id,total\n1,9.5\n"), perm: PermissionPrompt}
	app := NativeApp(native)
	assert.True(t, app.Persistable())
	key, ok := app.PersistKey()
	assert.True(t, ok)
	assert.Equal(t, "fake://sales.csv", key)

	fh, err := ConvertFile(app)
	require.NoError(t, err)
	assert.Same(t, native, fh, "native handles pass through")

	f, err := fh.GetFile(context.Background())
	require.NoError(t, err)
	got, err := f.Bytes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, native.data, got)
}

func TestConvert_FallbackFile(t *testing.T) {
	f := NewMemFile("notes.txt", "", []byte("hello"), time.Time{})
	app := FallbackFileApp(f)
	assert.False(t, app.Persistable())
	assert.NotEmpty(t, app.ID)

	fh, err := ConvertFile(app)
	require.NoError(t, err)

	state, err := fh.QueryPermission(context.Background(), ModeReadWrite)
	require.NoError(t, err)
	assert.Equal(t, PermissionGranted, state)
	state, err = fh.RequestPermission(context.Background(), ModeReadWrite)
	require.NoError(t, err)
	assert.Equal(t, PermissionGranted, state)

	got, err := fh.GetFile(context.Background())
	require.NoError(t, err)
	data, err := got.Bytes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Contains(t, got.Type, "text/plain")

	assert.True(t, fh.IsSameEntry(NewMemoryFile(f)))
	assert.False(t, fh.IsSameEntry(NewMemoryFile(NewMemFile("notes.txt", "", []byte("hello"), time.Time{}))))

	_, err = AsWritableFile(fh)
	require.Error(t, err)
	assert.True(t, apperrors.IsCapabilityGap(err))
	assert.Contains(t, err.Error(), "not supported in this environment")
}

func TestConvert_FallbackDirectoryIsReadOnly(t *testing.T) {
	app := FallbackDirectoryApp("", []*File{NewMemFile("a.csv", "data/a.csv", []byte("1"), time.Time{})})
	assert.Equal(t, "data", app.Name)

	dir, err := ConvertDirectory(app)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv"}, names(t, dir.Entries()))

	_, err = AsWritableDirectory(dir)
	assert.True(t, apperrors.IsCapabilityGap(err))

	_, err = ConvertFile(app)
	assert.Error(t, err)
}

func TestConvert_Errors(t *testing.T) {
	_, err := Convert(AppHandle{Type: TypeNative, Name: "x"})
	assert.Error(t, err)
	_, err = Convert(AppHandle{Type: TypeFallback, Kind: KindFile, Name: "x"})
	assert.Error(t, err)
	_, err = Convert(AppHandle{Type: "other"})
	assert.Error(t, err)
}

func TestToLegacy(t *testing.T) {
	native := &fakeNativeFile{name: "a.csv", data: []byte("x")}
	h, err := ToLegacy(NativeApp(native))
	require.NoError(t, err)
	assert.Equal(t, KindFile, h.Kind)
	assert.Same(t, native, h.Native)
	_, err = h.GetFile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, native.reads)

	fallback, err := ToLegacy(FallbackDirectoryApp("d", []*File{NewMemFile("a", "d/a", nil, time.Time{})}))
	require.NoError(t, err)
	assert.Nil(t, fallback.Native)
	assert.Equal(t, KindDirectory, fallback.Kind)
	assert.Equal(t, []string{"a"}, names(t, fallback.Entries()))
	_, err = fallback.GetFile(context.Background())
	assert.Error(t, err)
}

func TestPickerResultConversions(t *testing.T) {
	files := []*File{
		NewMemFile("a.csv", "root/a.csv", nil, time.Time{}),
		NewMemFile("b.csv", "root/b.csv", nil, time.Time{}),
	}
	res := FallbackResult(files)
	apps := res.AppHandles()
	require.Len(t, apps, 2)
	assert.Equal(t, TypeFallback, apps[0].Type)

	dir, ok := res.DirectoryApp()
	require.True(t, ok)
	assert.Equal(t, "root", dir.Name)
	assert.Len(t, dir.Files, 2)

	cancelled := CancelledResult()
	assert.False(t, cancelled.Success)
	assert.True(t, cancelled.UserCancelled)
	assert.Nil(t, cancelled.AppHandles())

	failed := FailedResult("boom")
	assert.False(t, failed.UserCancelled)
	_, ok = failed.DirectoryApp()
	assert.False(t, ok)

	_, ok = NativeResult(&fakeNativeFile{name: "f"}).DirectoryApp()
	assert.False(t, ok, "a file handle is not a directory pick")
}

func TestFromLegacy(t *testing.T) {
	ctx := context.Background()
	native := &fakeNativeFile{name: "a.csv"}
	app, err := FromLegacy(ctx, LegacyFromEntry(native, true))
	require.NoError(t, err)
	assert.Equal(t, TypeNative, app.Type)
	assert.Same(t, native, app.Native)

	files := []*File{
		NewMemFile("a.csv", "root/a.csv", nil, time.Time{}),
		NewMemFile("b.csv", "root/sub/b.csv", nil, time.Time{}),
	}
	dir, err := FromLegacy(ctx, LegacyFromEntry(SyntheticDirectory("", files), false))
	require.NoError(t, err)
	assert.Equal(t, TypeFallback, dir.Type)
	assert.Equal(t, "root", dir.Name)
	assert.Len(t, dir.Files, 2, "nested files survive the round trip")

	file, err := FromLegacy(ctx, LegacyFromEntry(NewMemoryFile(files[0]), false))
	require.NoError(t, err)
	assert.Same(t, files[0], file.File)

	_, err = FromLegacy(ctx, nil)
	assert.Error(t, err)
}
