package adapter

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pickfs/internal/capability"
	apperrors "pickfs/internal/errors"
	"pickfs/internal/handle"
)

func restrictedCaps(dirInput bool) capability.Capabilities {
	return capability.Detect(capability.HostEnv{SupportsDirectoryInput: dirInput})
}

func fullCaps() capability.Capabilities {
	return capability.Detect(capability.HostEnv{HasOpenFilePicker: true, HasDirectoryPicker: true, HasSaveFilePicker: true})
}

func TestNormalizeAccept_Idempotent(t *testing.T) {
	dotted := NormalizeAccept(map[string][]string{"text/csv": {".csv"}})
	bare := NormalizeAccept(map[string][]string{"text/csv": {"csv"}})
	if diff := cmp.Diff(dotted, bare); diff != "" {
		t.Fatalf("normalization differs (-dotted +bare):\n%s", diff)
	}
	twice := NormalizeAccept(NormalizeAccept(map[string][]string{"text/csv": {"csv", ".csv", " tsv ", ""}}))
	assert.Equal(t, map[string][]string{"text/csv": {".csv", ".tsv"}}, twice)
	assert.Nil(t, NormalizeAccept(nil))
}

func TestAcceptForExtensions(t *testing.T) {
	accept := AcceptForExtensions([]string{"csv", ".unknownext"})
	var all []string
	for _, exts := range accept {
		all = append(all, exts...)
	}
	assert.ElementsMatch(t, []string{".csv", ".unknownext"}, all)
	assert.Contains(t, accept["application/octet-stream"], ".unknownext")
}

func TestFullAdapter_PickFilesNormalizesAndWraps(t *testing.T) {
	f := newNativeFile("a.csv", "1,2")
	host := &fakeNativeHost{files: []handle.FileHandle{f}}
	a := NewFullAdapter(host, fullCaps(), nil)

	res := a.PickFiles(context.Background(), FilePickOptions{
		Accept:      map[string][]string{"text/csv": {"csv"}},
		Description: "Tables",
	})
	require.True(t, res.Success)
	assert.Equal(t, handle.TypeNative, res.Type)
	require.Len(t, res.Handles, 1)
	assert.Same(t, f, res.Handles[0])

	require.Len(t, host.openOpts.Types, 1)
	assert.Equal(t, []string{".csv"}, host.openOpts.Types[0].Accept["text/csv"])
	assert.Equal(t, "Tables", host.openOpts.Types[0].Description)
	assert.True(t, host.openOpts.Multiple, "multiple defaults to true")

	a.PickFiles(context.Background(), FilePickOptions{Multiple: Bool(false)})
	assert.False(t, host.openOpts.Multiple)
}

func TestFullAdapter_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name      string
		err       error
		cancelled bool
		message   string
	}{
		{"abort", fmt.Errorf("dialog: %w", ErrUserAbort), true, "user cancelled"},
		{"host failure", errDisk, false, "device not ready"},
		{"app error", apperrors.NewHostError("open", "", "security error", errDisk), false, "security error"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := NewFullAdapter(&fakeNativeHost{err: tc.err}, fullCaps(), nil)
			for _, res := range []handle.PickerResult{
				a.PickFiles(context.Background(), DefaultFilePickOptions()),
				a.PickDirectory(context.Background(), DefaultDirectoryPickOptions()),
			} {
				assert.False(t, res.Success)
				assert.Equal(t, tc.cancelled, res.UserCancelled)
				assert.Equal(t, tc.message, res.Error)
			}
		})
	}
}

func TestFullAdapter_PickDirectoryPassesMode(t *testing.T) {
	dir := &nativeDir{name: "projects"}
	host := &fakeNativeHost{dir: dir}
	a := NewFullAdapter(host, fullCaps(), nil)

	res := a.PickDirectory(context.Background(), DirectoryPickOptions{})
	require.True(t, res.Success)
	assert.Equal(t, handle.ModeRead, host.dirOpts.Mode)

	a.PickDirectory(context.Background(), DirectoryPickOptions{Mode: handle.ModeReadWrite})
	assert.Equal(t, handle.ModeReadWrite, host.dirOpts.Mode)

	legacy := a.PickDirectoryLegacy(context.Background(), DefaultDirectoryPickOptions())
	require.NotNil(t, legacy)
	assert.Equal(t, handle.KindDirectory, legacy.Kind)
	assert.Same(t, dir, legacy.Native)
}

func TestFullAdapter_Permissions(t *testing.T) {
	a := NewFullAdapter(&fakeNativeHost{}, fullCaps(), nil)
	ctx := context.Background()

	// no native backing: nothing to ask for
	plain := handle.LegacyFromEntry(handle.NewMemoryFile(memFiles("a.csv")[0]), false)
	assert.Equal(t, handle.PermissionGranted, a.QueryPermission(ctx, plain, handle.ModeRead))
	assert.True(t, a.RequestPermission(ctx, plain, handle.ModeReadWrite))
	assert.Equal(t, handle.PermissionGranted, a.QueryPermission(ctx, nil, handle.ModeRead))

	f := newNativeFile("a.csv", "")
	f.perm = handle.PermissionPrompt
	h := handle.LegacyFromEntry(f, true)
	assert.Equal(t, handle.PermissionPrompt, a.QueryPermission(ctx, h, handle.ModeRead))
	assert.False(t, a.RequestPermission(ctx, h, handle.ModeRead))

	f.permErr = errDisk
	assert.Equal(t, handle.PermissionDenied, a.QueryPermission(ctx, h, handle.ModeRead))
	assert.False(t, a.RequestPermission(ctx, h, handle.ModeRead))
}

func TestFullAdapter_SaveFile(t *testing.T) {
	target := newNativeFile("out.csv", "old")
	a := NewFullAdapter(&fakeNativeHost{save: target}, fullCaps(), nil)

	res := a.SaveFile(context.Background(), SaveFileOptions{SuggestedName: "out.csv"}, []byte("new"))
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "new", target.data.String())

	readOnly := NewFullAdapter(&fakeNativeHost{save: handle.NewMemoryFile(memFiles("x.csv")[0])}, fullCaps(), nil)
	res = readOnly.SaveFile(context.Background(), SaveFileOptions{}, []byte("new"))
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "not supported in this environment")
}

func TestRestrictedAdapter_ZeroFilesIsCancellation(t *testing.T) {
	host := &fakeInputHost{next: []*fakeControl{{files: nil}}}
	a := NewRestrictedAdapter(host, restrictedCaps(false), nil)

	res := a.PickFiles(context.Background(), DefaultFilePickOptions())
	assert.False(t, res.Success)
	assert.True(t, res.UserCancelled)
	assert.Empty(t, res.Files)

	require.Len(t, host.created, 1)
	assert.True(t, host.created[0].isRemoved(), "control is destroyed after use")
}

func TestRestrictedAdapter_PickFiles(t *testing.T) {
	host := &fakeInputHost{next: []*fakeControl{{files: memFiles("a.csv", "b.CSV", "c.txt")}}}
	a := NewRestrictedAdapter(host, restrictedCaps(false), nil)

	res := a.PickFiles(context.Background(), FilePickOptions{Accept: map[string][]string{"text/csv": {"csv"}}})
	require.True(t, res.Success)
	assert.Equal(t, handle.TypeFallback, res.Type)

	var got []string
	for _, f := range res.Files {
		got = append(got, f.Name)
	}
	assert.Equal(t, []string{"a.csv", "b.CSV"}, got)
	assert.Equal(t, []string{"text/csv", ".csv"}, host.created[0].cfg.Accept)
	assert.True(t, host.created[0].cfg.Multiple)
}

func TestRestrictedAdapter_AcceptMismatchAndSingle(t *testing.T) {
	host := &fakeInputHost{next: []*fakeControl{
		{files: memFiles("photo.png")},
		{files: memFiles("a.csv", "b.csv")},
	}}
	a := NewRestrictedAdapter(host, restrictedCaps(false), nil)

	res := a.PickFiles(context.Background(), FilePickOptions{Accept: map[string][]string{"text/csv": {".csv"}}})
	assert.False(t, res.Success)
	assert.False(t, res.UserCancelled)
	assert.Contains(t, res.Error, ".csv")

	res = a.PickFiles(context.Background(), FilePickOptions{Multiple: Bool(false)})
	require.True(t, res.Success)
	assert.Len(t, res.Files, 1)
	assert.False(t, host.created[1].cfg.Multiple)
}

func TestRestrictedAdapter_MIMEOnlyAccept(t *testing.T) {
	text := handle.NewMemFile("readme", "", []byte("plain words"), time.Time{})
	host := &fakeInputHost{next: []*fakeControl{{files: []*handle.File{text}}}}
	a := NewRestrictedAdapter(host, restrictedCaps(false), nil)

	res := a.PickFiles(context.Background(), FilePickOptions{Accept: map[string][]string{"text/*": nil}})
	require.True(t, res.Success, res.Error)
}

func TestRestrictedAdapter_DirectoryUnsupported(t *testing.T) {
	host := &fakeInputHost{}
	a := NewRestrictedAdapter(host, restrictedCaps(false), nil)

	res := a.PickDirectory(context.Background(), DefaultDirectoryPickOptions())
	assert.False(t, res.Success)
	assert.False(t, res.UserCancelled)
	assert.Equal(t, directoryNotSupported, res.Error)
	assert.Empty(t, host.created, "no control is created")
	assert.Nil(t, a.PickDirectoryLegacy(context.Background(), DefaultDirectoryPickOptions()))
}

func TestRestrictedAdapter_DirectoryReconstruction(t *testing.T) {
	host := &fakeInputHost{next: []*fakeControl{
		{files: memFiles("root/a.csv", "root/sub/b.csv", "root/sub/c.csv")},
		{files: memFiles("root/a.csv", "root/sub/b.csv", "root/sub/c.csv")},
	}}
	a := NewRestrictedAdapter(host, restrictedCaps(true), nil)

	res := a.PickDirectory(context.Background(), DefaultDirectoryPickOptions())
	require.True(t, res.Success)
	assert.Len(t, res.Files, 3)
	assert.True(t, host.created[0].cfg.Directory)

	legacy := a.PickDirectoryLegacy(context.Background(), DefaultDirectoryPickOptions())
	require.NotNil(t, legacy)
	assert.Equal(t, "root", legacy.Name)
	assert.Nil(t, legacy.Native)

	entries, err := legacy.Entries().Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a.csv", entries[0].Name)
	assert.Equal(t, handle.KindFile, entries[0].Handle.Kind())
	assert.Equal(t, "sub", entries[1].Name)
	assert.Equal(t, handle.KindDirectory, entries[1].Handle.Kind())
}

func TestRestrictedAdapter_PermissionsAlwaysGranted(t *testing.T) {
	a := NewRestrictedAdapter(&fakeInputHost{}, restrictedCaps(true), nil)
	h := handle.LegacyFromEntry(handle.NewMemoryFile(memFiles("x")[0]), false)
	assert.Equal(t, handle.PermissionGranted, a.QueryPermission(context.Background(), h, handle.ModeReadWrite))
	assert.True(t, a.RequestPermission(context.Background(), h, handle.ModeReadWrite))

	res := a.SaveFile(context.Background(), SaveFileOptions{}, nil)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "not supported in this environment")
}

func TestRestrictedAdapter_HostErrors(t *testing.T) {
	host := &fakeInputHost{next: []*fakeControl{{err: errDisk}, {err: ErrUserAbort}}}
	a := NewRestrictedAdapter(host, restrictedCaps(true), nil)

	res := a.PickFiles(context.Background(), DefaultFilePickOptions())
	assert.Equal(t, "device not ready", res.Error)
	assert.False(t, res.UserCancelled)

	res = a.PickDirectory(context.Background(), DefaultDirectoryPickOptions())
	assert.True(t, res.UserCancelled)
}

func TestRestrictedAdapter_StaleControlTornDown(t *testing.T) {
	created := make(chan *fakeControl, 2)
	host := &fakeInputHost{
		next:     []*fakeControl{{block: true}, {files: memFiles("late.csv")}},
		onCreate: func(c *fakeControl) { created <- c },
	}
	a := NewRestrictedAdapter(host, restrictedCaps(false), nil)

	var first handle.PickerResult
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = a.PickFiles(context.Background(), DefaultFilePickOptions())
	}()
	stale := <-created

	second := a.PickFiles(context.Background(), DefaultFilePickOptions())
	wg.Wait()

	assert.True(t, stale.isRemoved())
	assert.True(t, first.UserCancelled, "the torn-down call resolves as a dismissal")
	require.True(t, second.Success, "the last call wins")
	assert.Equal(t, "late.csv", second.Files[0].Name)
}

func TestRestrictedAdapter_ContextCancel(t *testing.T) {
	host := &fakeInputHost{next: []*fakeControl{{block: true}}}
	a := NewRestrictedAdapter(host, restrictedCaps(false), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := a.PickFiles(ctx, DefaultFilePickOptions())
	assert.False(t, res.Success)
	assert.False(t, res.UserCancelled)
	assert.Equal(t, context.Canceled.Error(), res.Error)
}

func zipArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExpandArchive(t *testing.T) {
	data := zipArchive(t, map[string]string{
		"a.csv":     "1",
		"sub/b.csv": "2",
	})
	archive := handle.NewMemFile("export.zip", "", data, time.Time{})

	files, err := ExpandArchive(context.Background(), archive)
	require.NoError(t, err)

	rels := map[string]string{}
	for _, f := range files {
		content, err := f.Bytes(context.Background())
		require.NoError(t, err)
		rels[f.RelativePath] = string(content)
	}
	assert.Equal(t, map[string]string{"export/a.csv": "1", "export/sub/b.csv": "2"}, rels)

	names, err := handle.SyntheticDirectory("", files).Entries().Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

func TestExpandArchive_SharedTopDirKept(t *testing.T) {
	data := zipArchive(t, map[string]string{"data/a.csv": "1", "data/b.csv": "2"})
	files, err := ExpandArchive(context.Background(), handle.NewMemFile("bundle.zip", "", data, time.Time{}))
	require.NoError(t, err)
	assert.Equal(t, "data", handle.TopDirName(files))
}

func TestExpandArchive_NotAnArchive(t *testing.T) {
	_, err := ExpandArchive(context.Background(), handle.NewMemFile("notes.txt", "", []byte("hello"), time.Time{}))
	require.Error(t, err)
	assert.True(t, apperrors.IsCapabilityGap(err))
}
