package graph

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogicalEdgeID(t *testing.T) {
	tests := []struct {
		rendered string
		want     string
	}{
		{"e1", "e1"},
		{"e1::0", "e1"},
		{"e1::12", "e1"},
		{"ns::e1::3", "ns::e1"},
		{"ns::e1", "ns::e1"},
		{"e1::", "e1::"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.rendered, func(t *testing.T) {
			assert.Equal(t, tt.want, LogicalEdgeID(tt.rendered))
		})
	}
}

func TestRenderedEdgeIDRoundTrip(t *testing.T) {
	for n := 0; n < 4; n++ {
		assert.Equal(t, "route-7", LogicalEdgeID(RenderedEdgeID("route-7", n)))
	}
	assert.Equal(t, "route-7", RenderedEdgeID("route-7", 0))
	assert.Equal(t, "route-7::2", RenderedEdgeID("route-7", 2))
}

func TestEdgeRegistry(t *testing.T) {
	r := NewEdgeRegistry()
	r.Put(
		DisplayEdge{ID: "e2", Type: "knows", DisplayName: "Bob knows Carol"},
		DisplayEdge{ID: "e1", Type: "knows", DisplayName: "Alice knows Bob"},
	)
	require.Equal(t, 2, r.Len())

	t.Run("resolves rendered copies", func(t *testing.T) {
		e, ok := r.ResolveDisplayEdge(RenderedEdgeID("e1", 1))
		require.True(t, ok)
		assert.Equal(t, "Alice knows Bob", e.DisplayName)
	})

	t.Run("miss", func(t *testing.T) {
		_, ok := r.ResolveDisplayEdge("e9")
		assert.False(t, ok)
	})

	t.Run("list sorted", func(t *testing.T) {
		list := r.List()
		require.Len(t, list, 2)
		assert.Equal(t, "e1", list[0].ID)
	})

	t.Run("remove", func(t *testing.T) {
		assert.True(t, r.Remove("e2"))
		assert.False(t, r.Remove("e2"))
		assert.Equal(t, 1, r.Len())
	})

	t.Run("replace", func(t *testing.T) {
		r.Replace([]DisplayEdge{{ID: "e5", DisplayName: "new"}})
		_, ok := r.Get("e1")
		assert.False(t, ok)
		e, ok := r.Get("e5")
		require.True(t, ok)
		assert.Equal(t, "new", e.DisplayName)
	})
}

func TestEdgeRegistry_ConcurrentAccess(t *testing.T) {
	r := NewEdgeRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.Put(DisplayEdge{ID: RenderedEdgeID("e", i), DisplayName: "edge"})
		}(i)
		go func() {
			defer wg.Done()
			r.ResolveDisplayEdge("e::1")
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, r.Len())
}
