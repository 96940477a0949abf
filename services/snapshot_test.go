package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scholar-graph/graph"
	"scholar-graph/storage"
	"scholar-graph/store/storetest"
)

type fakeObjects struct {
	mu      sync.Mutex
	clock   time.Time
	objects map[string]storage.Object
	data    map[string][]byte
	failPut bool
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{
		clock:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		objects: map[string]storage.Object{},
		data:    map[string][]byte{},
	}
}

func (f *fakeObjects) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut {
		return "", errors.New("bucket unavailable")
	}
	f.clock = f.clock.Add(time.Minute)
	f.objects[key] = storage.Object{Key: key, LastModified: f.clock, Size: int64(len(data))}
	f.data[key] = data
	return "https://objects.test/" + key, nil
}

func (f *fakeObjects) List(_ context.Context, prefix string) ([]storage.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storage.Object
	for k, o := range f.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	delete(f.data, key)
	return nil
}

func (f *fakeObjects) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.objects))
	for k := range f.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func fixedClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Hour)
		return t
	}
}

func TestSnapshotExport(t *testing.T) {
	graphs, _ := seedNetwork(t)
	objects := newFakeObjects()
	svc := NewSnapshotService(graphs, objects, "graph", 7, zap.NewNop())
	svc.now = fixedClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	res, err := svc.Export(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "graph/data.json", res.LatestKey)
	assert.Equal(t, "graph/snapshots/data-2024-03-01T13-00-00Z.json", res.Key)
	assert.Equal(t, "https://objects.test/graph/data.json", res.URL)
	assert.False(t, res.Empty)
	assert.Equal(t, 4, res.Nodes)
	assert.Equal(t, 4, res.Edges)

	var g graph.Graph
	require.NoError(t, json.Unmarshal(objects.data["graph/data.json"], &g))
	assert.Len(t, g.Nodes, 4)
	assert.Equal(t, objects.data[res.Key], objects.data[res.LatestKey])
}

func TestSnapshotExportEmptyGraph(t *testing.T) {
	graphs := NewGraphService(storetest.NewTestingStore(t), graph.DefaultSignificancePolicy(), zap.NewNop())
	objects := newFakeObjects()
	svc := NewSnapshotService(graphs, objects, "graph", 7, zap.NewNop())

	res, err := svc.Export(context.Background())

	require.NoError(t, err)
	assert.True(t, res.Empty)
	assert.Zero(t, res.Nodes)
	assert.JSONEq(t, `{"nodes": [], "edges": []}`, string(objects.data["graph/data.json"]))
}

func TestSnapshotExportRotates(t *testing.T) {
	graphs, _ := seedNetwork(t)
	objects := newFakeObjects()
	svc := NewSnapshotService(graphs, objects, "graph", 2, zap.NewNop())
	svc.now = fixedClock(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	var last *SnapshotResult
	for i := 0; i < 4; i++ {
		res, err := svc.Export(context.Background())
		require.NoError(t, err)
		last = res
	}

	assert.Equal(t, 1, last.Deleted)
	assert.Equal(t, []string{
		"graph/data.json",
		"graph/snapshots/data-2024-03-01T03-00-00Z.json",
		"graph/snapshots/data-2024-03-01T04-00-00Z.json",
	}, objects.keys())
}

func TestSnapshotExportPutFailure(t *testing.T) {
	graphs, _ := seedNetwork(t)
	objects := newFakeObjects()
	objects.failPut = true
	svc := NewSnapshotService(graphs, objects, "graph", 2, zap.NewNop())

	_, err := svc.Export(context.Background())

	assert.Error(t, err)
	assert.Empty(t, objects.keys())
}
