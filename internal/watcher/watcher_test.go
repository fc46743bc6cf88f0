package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentFilter(t *testing.T) {
	assert.True(t, ComponentFilter("widget.tsx"))
	assert.True(t, ComponentFilter("widget.jsx"))
	assert.True(t, ComponentFilter("util.ts"))
	assert.False(t, ComponentFilter("styles.css"))
	assert.False(t, ComponentFilter("notes.md"))
}

func TestNoHiddenFilter(t *testing.T) {
	assert.True(t, NoHiddenFilter("dir/widget.tsx"))
	assert.False(t, NoHiddenFilter("dir/.widget.tsx.swp"))
	assert.False(t, NoHiddenFilter("dir/widget.tsx~"))
}

func TestDebouncerBatchesAndDeduplicates(t *testing.T) {
	fw, err := NewFileWatcher(20 * time.Millisecond)
	require.NoError(t, err)
	defer fw.Stop()

	for i := 0; i < 5; i++ {
		fw.debouncer.addEvent(ChangeEvent{Type: EventTypeModified, Path: "/tmp/a.tsx"})
	}
	fw.debouncer.addEvent(ChangeEvent{Type: EventTypeModified, Path: "/tmp/b.tsx"})

	select {
	case batch := <-fw.debouncer.output:
		assert.Len(t, batch, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer never flushed")
	}
}

func TestWatcherDetectsWrite(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "component.tsx")
	require.NoError(t, os.WriteFile(file, []byte("export default function A(){}"), 0o644))

	fw, err := NewFileWatcher(20 * time.Millisecond)
	require.NoError(t, err)
	defer fw.Stop()

	fw.AddFilter(ComponentFilter)
	fw.AddFilter(NoHiddenFilter)

	var mu sync.Mutex
	var got []ChangeEvent
	done := make(chan struct{})
	fw.AddHandler(func(events []ChangeEvent) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, events...)
		select {
		case <-done:
		default:
			close(done)
		}
		return nil
	})

	require.NoError(t, fw.AddPath(file))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	fw.Start(ctx)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(file, []byte("export default function B(){}"), 0o644))

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("no change event received")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, got)
	assert.Equal(t, file, got[0].Path)
}
