package logstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/sizer/internal/sizer"
)

func writeFileOfSize(t *testing.T, path string, size int64) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	f, err := os.Create(path)
	require.NoError(t, err)

	defer f.Close()

	require.NoError(t, f.Truncate(size))
}

func tempRoot(t *testing.T) string {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	return root
}

func newStore(t *testing.T) *Store {
	t.Helper()

	return New(filepath.Join(t.TempDir(), "state", "sizer.log"))
}

func TestParseLine(t *testing.T) {
	entry, err := ParseLine(`"/tmp/a.txt" - 42`)
	require.NoError(t, err)
	assert.Equal(t, sizer.FileEntry{Path: "/tmp/a.txt", Size: 42}, entry)

	_, err = ParseLine(`"/tmp/a.txt" - notanumber`)
	require.ErrorIs(t, err, sizer.ErrInvalidSize)

	_, err = ParseLine(`"/tmp/a.txt" - -1`)
	require.ErrorIs(t, err, sizer.ErrInvalidSize)

	_, err = ParseLine(`"/tmp/a.txt" 42`)
	require.ErrorIs(t, err, sizer.ErrInvalidSize)
}

func TestParseLine_Paths(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{name: "separator inside path", line: `"/tmp/a - b.txt" - 9`, want: "/tmp/a - b.txt"},
		{name: "escaped quote", line: `"/tmp/say \"hi\"" - 9`, want: `/tmp/say "hi"`},
		{name: "unbalanced quotes are stripped", line: `"/tmp/odd - 9`, want: "/tmp/odd"},
		{name: "unquoted", line: `/tmp/plain - 9`, want: "/tmp/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := ParseLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, entry.Path)
			assert.Equal(t, uint64(9), entry.Size)
		})
	}
}

func TestFormatLine(t *testing.T) {
	assert.Equal(t, `"/tmp/a.txt" - 42`, FormatLine(sizer.FileEntry{Path: "/tmp/a.txt", Size: 42}))
}

func TestDecode_TrailingNewlineAndErrors(t *testing.T) {
	list, err := Decode("\"/a\" - 2\n\"/b\" - 1\n")
	require.NoError(t, err)
	assert.Equal(t, sizer.Ranked{{Path: "/a", Size: 2}, {Path: "/b", Size: 1}}, list)

	list, err = Decode("")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = Decode("\"/a\" - 2\n\"/b\" - x\n")
	require.ErrorIs(t, err, sizer.ErrInvalidSize)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 2, parseErr.Line)
	assert.ErrorIs(t, parseErr.Err, sizer.ErrInvalidSize)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	root := tempRoot(t)
	store := newStore(t)

	list := sizer.Ranked{
		{Path: filepath.Join(root, "big - one.bin"), Size: 300},
		{Path: filepath.Join(root, "sub", `quote".bin`), Size: 200},
		{Path: filepath.Join(root, "small.bin"), Size: 100},
	}
	for _, e := range list {
		writeFileOfSize(t, e.Path, int64(e.Size))
	}

	require.NoError(t, store.Save(list))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, list, loaded)

	rendered, err := store.Render()
	require.NoError(t, err)
	assert.Equal(t, Encode(list), rendered)

	decoded, err := Decode(rendered)
	require.NoError(t, err)
	assert.Equal(t, loaded, decoded)
}

func TestStore_SaveCanonicalizesPaths(t *testing.T) {
	root := tempRoot(t)
	store := newStore(t)

	writeFileOfSize(t, filepath.Join(root, "real", "f.bin"), 4)
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "alias")))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(root))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	require.NoError(t, store.Save(sizer.Ranked{{Path: filepath.Join("alias", "f.bin"), Size: 4}}))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, sizer.Ranked{{Path: filepath.Join(root, "real", "f.bin"), Size: 4}}, loaded)
}

func TestStore_SaveOverwrites(t *testing.T) {
	root := tempRoot(t)
	store := newStore(t)

	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	writeFileOfSize(t, a, 2)
	writeFileOfSize(t, b, 1)

	require.NoError(t, store.Save(sizer.Ranked{{Path: a, Size: 2}, {Path: b, Size: 1}}))
	require.NoError(t, store.Save(sizer.Ranked{{Path: b, Size: 1}}))

	rendered, err := store.Render()
	require.NoError(t, err)
	assert.Equal(t, FormatLine(sizer.FileEntry{Path: b, Size: 1})+"\n", rendered)
}

func TestStore_SaveFailureKeepsRecord(t *testing.T) {
	root := tempRoot(t)
	store := newStore(t)

	a := filepath.Join(root, "a")
	writeFileOfSize(t, a, 2)
	require.NoError(t, store.Save(sizer.Ranked{{Path: a, Size: 2}}))

	before, err := store.Render()
	require.NoError(t, err)

	err = store.Save(sizer.Ranked{{Path: filepath.Join(root, "gone"), Size: 1}})
	require.ErrorIs(t, err, sizer.ErrInvalidPath)

	after, err := store.Render()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStore_EmptyTreeRoundTrip(t *testing.T) {
	store := newStore(t)

	ranked, _, err := sizer.Scan(context.Background(), sizer.Options{Path: tempRoot(t), TopN: 10}, nil)
	require.NoError(t, err)
	require.Empty(t, ranked)

	require.NoError(t, store.Save(ranked))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)

	rendered, err := store.Render()
	require.NoError(t, err)
	assert.Empty(t, rendered)
}

func TestStore_LoadCreatesMissingLog(t *testing.T) {
	store := newStore(t)

	list, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = os.Stat(store.Path())
	require.NoError(t, err)
}

func TestStore_LoadRejectsBadSize(t *testing.T) {
	store := newStore(t)

	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
	require.NoError(t, os.WriteFile(store.Path(), []byte("\"/tmp/a.txt\" - notanumber\n"), 0o644))

	list, err := store.Load()
	require.ErrorIs(t, err, sizer.ErrInvalidSize)
	assert.Nil(t, list)
}

func TestStore_LoadFailsOnUnreadableLocation(t *testing.T) {
	// A directory at the log path cannot be opened for writing.
	store := New(t.TempDir())

	_, err := store.Load()
	require.ErrorIs(t, err, sizer.ErrInvalidPath)
}

func TestStore_DeleteBounds(t *testing.T) {
	root := tempRoot(t)
	store := newStore(t)

	list := sizer.Ranked{}
	for _, name := range []string{"a", "b", "c"} {
		path := filepath.Join(root, name)
		writeFileOfSize(t, path, 1)
		list = append(list, sizer.FileEntry{Path: path, Size: 1})
	}

	for _, index := range []int{0, -1, 4, 10, 255} {
		entry, deleted, err := store.Delete(list, index)
		require.NoError(t, err)
		assert.False(t, deleted, "index %d", index)
		assert.Zero(t, entry)
	}

	for _, e := range list {
		assert.FileExists(t, e.Path)
	}
}

func TestStore_DeleteByIndexThenRescan(t *testing.T) {
	root := tempRoot(t)
	store := newStore(t)

	writeFileOfSize(t, filepath.Join(root, "large"), 300)
	writeFileOfSize(t, filepath.Join(root, "nested", "medium"), 200)
	writeFileOfSize(t, filepath.Join(root, "small"), 100)

	ranked, _, err := sizer.Scan(context.Background(), sizer.Options{Path: root, TopN: 3}, nil)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	require.NoError(t, store.Save(ranked))

	before, err := store.Render()
	require.NoError(t, err)

	loaded, err := store.Load()
	require.NoError(t, err)

	entry, deleted, err := store.Delete(loaded, 1)
	require.NoError(t, err)
	require.True(t, deleted)
	assert.Equal(t, sizer.FileEntry{Path: filepath.Join(root, "large"), Size: 300}, entry)
	assert.NoFileExists(t, entry.Path)

	// The record is only refreshed by the next scan.
	after, err := store.Render()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	ranked, _, err = sizer.Scan(context.Background(), sizer.Options{Path: root, TopN: 3}, nil)
	require.NoError(t, err)
	require.NoError(t, store.Save(ranked))

	reloaded, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, reloaded, 2)

	for _, e := range reloaded {
		assert.NotEqual(t, entry.Path, e.Path)
	}
}

func TestStore_DeleteMissingFile(t *testing.T) {
	store := newStore(t)

	_, deleted, err := store.Delete(sizer.Ranked{{Path: filepath.Join(t.TempDir(), "gone"), Size: 1}}, 1)
	require.ErrorIs(t, err, sizer.ErrInvalidPath)
	assert.False(t, deleted)
}
