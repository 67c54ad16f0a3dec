package mirror

import (
	"sync"
	"testing"

	"github.com/dmitrijs2005/maintkeeper/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids[T Item[T]](items []T) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Key()
	}
	return out
}

func TestCollection_Mutations(t *testing.T) {
	c := NewCollection[models.MaintenanceLog]()

	c.ReplaceAll([]models.MaintenanceLog{{ID: "log-001"}, {ID: "log-002"}})
	c.Prepend(models.MaintenanceLog{ID: "log-003"})
	assert.Equal(t, []string{"log-003", "log-001", "log-002"}, ids(c.Snapshot()))

	c.Prepend(models.MaintenanceLog{ID: "log-002", Notes: "again"})
	assert.Equal(t, []string{"log-002", "log-003", "log-001"}, ids(c.Snapshot()))

	c.Upsert(models.MaintenanceLog{ID: "log-004"})
	c.Upsert(models.MaintenanceLog{ID: "log-003", Notes: "edited"})
	assert.Equal(t, []string{"log-002", "log-003", "log-001", "log-004"}, ids(c.Snapshot()))

	got, ok := c.Get("log-003")
	require.True(t, ok)
	assert.Equal(t, "edited", got.Notes)

	updated, ok := c.Update("log-001", func(l models.MaintenanceLog) models.MaintenanceLog {
		l.DurationMinutes = 45
		return l
	})
	require.True(t, ok)
	assert.Equal(t, 45, updated.DurationMinutes)

	_, ok = c.Update("missing", func(l models.MaintenanceLog) models.MaintenanceLog { return l })
	assert.False(t, ok)

	assert.True(t, c.Remove("log-002"))
	assert.False(t, c.Remove("log-002"))
	assert.Equal(t, 3, c.Len())
}

func TestCollection_SnapshotIsolation(t *testing.T) {
	c := NewCollection[models.Device]()
	c.ReplaceAll([]models.Device{{ID: "cnc-001", Specifications: map[string]any{"rpm": 12000}}})

	snap := c.Snapshot()
	snap[0].Name = "changed"
	snap[0].Specifications["rpm"] = 1

	got, _ := c.Get("cnc-001")
	assert.Empty(t, got.Name)
	assert.Equal(t, 12000, got.Specifications["rpm"])
}

func TestCollection_SubscribeDeliversLatest(t *testing.T) {
	c := NewCollection[models.SparePart]()
	ch, cancel := c.Subscribe()

	c.Upsert(models.SparePart{ID: "sp-001", Quantity: 15})
	c.Update("sp-001", func(p models.SparePart) models.SparePart {
		p.Quantity = 5
		return p
	})

	latest := <-ch
	require.Len(t, latest, 1)
	assert.Equal(t, 5, latest[0].Quantity)

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)

	c.Upsert(models.SparePart{ID: "sp-002"})
}

func TestCollection_ConcurrentWriters(t *testing.T) {
	c := NewCollection[models.SparePart]()
	c.Upsert(models.SparePart{ID: "sp-001"})
	_, cancel := c.Subscribe()
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Update("sp-001", func(p models.SparePart) models.SparePart {
				p.Quantity++
				return p
			})
			_ = c.Snapshot()
		}()
	}
	wg.Wait()

	got, _ := c.Get("sp-001")
	assert.Equal(t, 50, got.Quantity)
}

func TestNewStore(t *testing.T) {
	s := NewStore()
	require.NotNil(t, s.Devices)
	require.NotNil(t, s.Parts)
	require.NotNil(t, s.Logs)
}
