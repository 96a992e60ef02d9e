package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchTree_CoalescesChanges(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "emails")
	require.NoError(t, os.Mkdir(sub, 0o755))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- watchTree(ctx, root, 50*time.Millisecond, func() { changes <- struct{}{} })
	}()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "a_EN.txt"), []byte("one"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "a_DE.txt"), []byte("eins"), 0o600))

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchTree_MissingRoot(t *testing.T) {
	err := watchTree(context.Background(), filepath.Join(t.TempDir(), "missing"), time.Millisecond, func() {})

	assert.Error(t, err)
}
