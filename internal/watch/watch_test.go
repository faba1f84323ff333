package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/yacobolo/tokenforge/internal/loader"
)

func setup(t *testing.T, ignore ...string) (string, <-chan Change) {
	t.Helper()
	root := t.TempDir()
	for i, dir := range ignore {
		ignore[i] = filepath.Join(root, dir)
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "tokens"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "tokens", "colors.json"), []byte(`[]`), 0o644))

	w, err := New(Config{
		Loader:   loader.Config{Root: root},
		Debounce: 50 * time.Millisecond,
		Logger:   zaptest.NewLogger(t),
		Ignore:   ignore,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	changes, err := w.Start()
	require.NoError(t, err)
	return root, changes
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	root, changes := setup(t)
	path := filepath.Join(root, "tokens", "colors.json")

	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(`[{"path":"c%d","value":"red"}]`, i)), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case change := <-changes:
		assert.Equal(t, []string{path}, change.Paths)
	case <-time.After(time.Second):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-changes:
		t.Fatal("unexpected second notification")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_IgnoresIrrelevantFiles(t *testing.T) {
	root, changes := setup(t)

	require.NoError(t, os.WriteFile(filepath.Join(root, "tokens", "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "tokens", ".colors.json.swp"), []byte("x"), 0o644))

	select {
	case change := <-changes:
		t.Fatalf("unexpected notification for %v", change.Paths)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_FollowsNewDirectories(t *testing.T) {
	root, changes := setup(t)

	themes := filepath.Join(root, "themes")
	require.NoError(t, os.Mkdir(themes, 0o755))
	time.Sleep(100 * time.Millisecond)

	// The directory creation itself is not a token file; drain nothing.
	dark := filepath.Join(themes, "dark.yaml")
	require.NoError(t, os.WriteFile(dark, []byte("themeId: dark\noverrides: {}\n"), 0o644))

	select {
	case change := <-changes:
		assert.Contains(t, change.Paths, dark)
	case <-time.After(time.Second):
		t.Fatal("expected notification for a file in a new directory")
	}
}

func TestWatcher_IgnoresOutputDirectory(t *testing.T) {
	root, changes := setup(t, "dist")

	dist := filepath.Join(root, "dist")
	require.NoError(t, os.Mkdir(dist, 0o755))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dist, "design-tokens.json"), []byte("{}"), 0o644))

	select {
	case change := <-changes:
		t.Fatalf("unexpected notification for %v", change.Paths)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{name: "json write", event: fsnotify.Event{Name: "tokens/a.json", Op: fsnotify.Write}, want: true},
		{name: "yaml create", event: fsnotify.Event{Name: "themes/dark.yml", Op: fsnotify.Create}, want: true},
		{name: "template remove", event: fsnotify.Event{Name: "templates/x.tmpl", Op: fsnotify.Remove}, want: true},
		{name: "chmod only", event: fsnotify.Event{Name: "tokens/a.json", Op: fsnotify.Chmod}, want: false},
		{name: "other extension", event: fsnotify.Event{Name: "README.md", Op: fsnotify.Write}, want: false},
		{name: "hidden", event: fsnotify.Event{Name: "tokens/.a.json", Op: fsnotify.Write}, want: false},
		{name: "backup", event: fsnotify.Event{Name: "tokens/a.json~", Op: fsnotify.Write}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relevant(tt.event))
		})
	}
}
