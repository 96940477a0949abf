package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memObjects struct {
	objects map[string]Object
	failDel map[string]bool
}

func (m *memObjects) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.objects[key] = Object{Key: key, Size: int64(len(data)), LastModified: time.Now()}
	return "mem://" + key, nil
}

func (m *memObjects) List(_ context.Context, prefix string) ([]Object, error) {
	var out []Object
	for k, o := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memObjects) Delete(_ context.Context, key string) error {
	if m.failDel[key] {
		return errors.New("denied")
	}
	delete(m.objects, key)
	return nil
}

func TestRotateKeepsNewest(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := &memObjects{objects: map[string]Object{}, failDel: map[string]bool{}}
	for i, key := range []string{"b/1", "b/2", "b/3", "b/4", "other/1"} {
		m.objects[key] = Object{Key: key, LastModified: base.Add(time.Duration(i) * time.Hour)}
	}
	m.failDel["b/1"] = true

	deleted, err := Rotate(context.Background(), m, "b/", 2, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, []string{"b/2"}, deleted)
	assert.Contains(t, m.objects, "b/4")
	assert.Contains(t, m.objects, "b/3")
	assert.Contains(t, m.objects, "b/1")
	assert.Contains(t, m.objects, "other/1")
}

func TestRotateNothingToDo(t *testing.T) {
	m := &memObjects{objects: map[string]Object{"a": {Key: "a"}}}

	deleted, err := Rotate(context.Background(), m, "", 3, zap.NewNop())

	require.NoError(t, err)
	assert.Empty(t, deleted)
	assert.Len(t, m.objects, 1)
}
