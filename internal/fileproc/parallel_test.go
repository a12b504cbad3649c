package fileproc

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkers(t *testing.T) {
	assert.Equal(t, 4, Workers(4))
	assert.Equal(t, 1, Workers(1))
	assert.Equal(t, runtime.NumCPU()*DefaultWorkerMultiplier, Workers(0))
	assert.Equal(t, runtime.NumCPU()*DefaultWorkerMultiplier, Workers(-1))
}

func TestMapEmpty(t *testing.T) {
	results := Map(context.Background(), nil, 2, func(string) (int, error) {
		t.Fatal("fn must not be called")
		return 0, nil
	}, nil, nil)
	assert.Nil(t, results)
}

func TestMapCollectsAllResults(t *testing.T) {
	var files []string
	for i := 0; i < 100; i++ {
		files = append(files, fmt.Sprintf("file-%03d", i))
	}

	results := Map(context.Background(), files, 8, func(path string) (string, error) {
		return path, nil
	}, nil, nil)

	require.Len(t, results, 100)
	sort.Strings(results)
	assert.Equal(t, files, results)
}

func TestMapSkipsErrors(t *testing.T) {
	files := []string{"ok-1", "bad", "ok-2"}
	boom := errors.New("boom")

	var mu sync.Mutex
	var warned []string

	results := Map(context.Background(), files, 2, func(path string) (string, error) {
		if path == "bad" {
			return "", boom
		}
		return path, nil
	}, nil, func(path string, err error) {
		mu.Lock()
		warned = append(warned, path)
		mu.Unlock()
		assert.ErrorIs(t, err, boom)
	})

	require.Len(t, results, 2)
	assert.NotContains(t, results, "")
	assert.Equal(t, []string{"bad"}, warned)
}

func TestMapReportsProgress(t *testing.T) {
	files := []string{"a", "b", "c", "d"}
	var ticks atomic.Int64

	Map(context.Background(), files, 2, func(path string) (int, error) {
		if path == "b" {
			return 0, errors.New("fail")
		}
		return 1, nil
	}, func() { ticks.Add(1) }, nil)

	assert.Equal(t, int64(4), ticks.Load(), "progress ticks for failed files too")
}

func TestMapCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := Map(ctx, []string{"a", "b"}, 2, func(path string) (int, error) {
		return 1, nil
	}, nil, nil)

	assert.Empty(t, results, "canceled context skips all work")
}
