package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bucketops/bucketctl/internal/events"
	"github.com/bucketops/bucketctl/internal/models"
	"github.com/bucketops/bucketctl/internal/util/filter"
)

func sampleBuckets() []models.Bucket {
	return []models.Bucket{
		{Name: "traces", Size: "1G", Tags: models.Tags{Type: "system"}},
		{Name: "Backup-2023", Size: "500M", Tags: models.Tags{Type: "local"}},
		{Name: "reports", Size: "10K", Tags: models.Tags{Type: "local"}},
		{Name: "empty", Size: "0", Tags: models.Tags{Type: "local"}},
	}
}

func TestVisibleSortBySize(t *testing.T) {
	tbl := New[models.Bucket]("buckets", nil)
	tbl.SetRows(sampleBuckets())
	tbl.SortBy("size", false)

	got := tbl.Visible()
	require.Len(t, got, 4)

	names := []string{got[0].Name, got[1].Name, got[2].Name, got[3].Name}
	assert.Equal(t, []string{"empty", "reports", "Backup-2023", "traces"}, names)
}

func TestVisibleSortBySizeDescending(t *testing.T) {
	tbl := New[models.Bucket]("buckets", nil)
	tbl.SetRows(sampleBuckets())
	tbl.SortBy("size", true)

	got := tbl.Visible()
	require.Len(t, got, 4)
	assert.Equal(t, "traces", got[0].Name)
	assert.Equal(t, "empty", got[3].Name)
}

func TestVisibleFilterThenSort(t *testing.T) {
	tbl := New[models.Bucket]("buckets", nil)
	tbl.SetRows(sampleBuckets())
	tbl.SetCriteria(filter.Criteria{Tag: "local"})
	tbl.SortBy("size", false)

	got := tbl.Visible()
	require.Len(t, got, 3)
	assert.Equal(t, "empty", got[0].Name)
	assert.Equal(t, "Backup-2023", got[2].Name)
}

func TestVisibleNameFilter(t *testing.T) {
	tbl := New[models.Bucket]("buckets", nil)
	tbl.SetRows(sampleBuckets())
	tbl.SetCriteria(filter.Criteria{Name: "backup"})

	got := tbl.Visible()
	require.Len(t, got, 1)
	assert.Equal(t, "Backup-2023", got[0].Name)
}

func TestVisibleEmptyResultIsValid(t *testing.T) {
	tbl := New[models.Bucket]("buckets", nil)
	tbl.SetRows(sampleBuckets())
	tbl.SetCriteria(filter.Criteria{Name: "nothing-matches"})

	got := tbl.Visible()
	assert.Empty(t, got)
}

func TestVisibleIdempotent(t *testing.T) {
	tbl := New[models.Bucket]("buckets", nil)
	tbl.SetRows(sampleBuckets())
	tbl.SetCriteria(filter.Criteria{Tag: "local", Name: "e"})
	tbl.SortBy("size", false)

	first := tbl.Visible()
	second := tbl.Visible()
	assert.Equal(t, first, second)
}

func TestUnknownSortColumnKeepsArrivalOrder(t *testing.T) {
	tbl := New[models.Bucket]("buckets", nil)
	rows := sampleBuckets()
	tbl.SetRows(rows)
	tbl.SortBy("owner", false)

	got := tbl.Visible()
	require.Len(t, got, len(rows))
	for i := range rows {
		assert.Equal(t, rows[i].Name, got[i].Name)
	}
}

func TestSelection(t *testing.T) {
	tbl := New[models.FileRow]("files", nil)
	tbl.SetRows([]models.FileRow{
		{Name: "a.txt", Size: "1K"},
		{Name: "b.txt", Size: "2K"},
	})

	tbl.Select("b.txt")
	tbl.Select("missing.txt")
	assert.Equal(t, []string{"b.txt"}, tbl.Selected())

	tbl.ClearSelection()
	assert.Empty(t, tbl.Selected())
}

func TestSetRowsDropsSelection(t *testing.T) {
	tbl := New[models.FileRow]("files", nil)
	tbl.SetRows([]models.FileRow{{Name: "a.txt"}})
	tbl.Select("a.txt")

	tbl.SetRows([]models.FileRow{{Name: "b.txt"}})
	assert.Empty(t, tbl.Selected())
}

func TestEventsPublished(t *testing.T) {
	bus := events.NewBus(16)
	defer bus.Close()
	ch := bus.Subscribe(events.EventRowsFiltered)

	tbl := New[models.Bucket]("buckets", bus)
	tbl.SetRows(sampleBuckets())
	tbl.SetCriteria(filter.Criteria{Tag: "system"})

	select {
	case ev := <-ch:
		te, ok := ev.(events.TableEvent)
		require.True(t, ok)
		assert.Equal(t, "buckets", te.Table)
		assert.Equal(t, 4, te.Total)
		assert.Equal(t, 1, te.Visible)
	case <-time.After(time.Second):
		t.Fatal("no rows_filtered event published")
	}
}

type recordingListener struct {
	filtered int
	sorted   string
}

func (r *recordingListener) RowsChanged(string, int) {}
func (r *recordingListener) RowsFiltered(_ string, v, _ int) { r.filtered = v }
func (r *recordingListener) RowsSorted(_ string, col string) { r.sorted = col }
func (r *recordingListener) SelectionChanged(string, int) {}

func TestListenerCallbacks(t *testing.T) {
	tbl := New[models.Bucket]("buckets", nil)
	rec := &recordingListener{}
	tbl.AddListener(rec)

	tbl.SetRows(sampleBuckets())
	tbl.SetCriteria(filter.Criteria{Tag: "local"})
	tbl.SortBy("size", false)

	assert.Equal(t, 3, rec.filtered)
	assert.Equal(t, "size", rec.sorted)
}
