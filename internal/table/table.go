// Package table provides an observable row container for the bucket and
// file listings. It owns the visible-subset computation: the active filter
// criteria narrow the rows, a named comparator orders them, and every
// change is announced on the event bus so renderers never poll.
package table

import (
	"sort"
	"strings"
	"sync"

	"github.com/bucketops/bucketctl/internal/events"
	"github.com/bucketops/bucketctl/internal/util/filter"
	"github.com/bucketops/bucketctl/internal/util/sizes"
)

// Row is the minimal surface a table row exposes for sorting and filtering.
// Both models.Bucket and models.FileRow satisfy it.
type Row interface {
	RowName() string
	RowSize() string
	RowTag() string
}

// Comparator is a three-way row comparator, keyed by column name in the
// comparator registry.
type Comparator[T Row] func(a, b T) int

// Listener receives table change callbacks. The event bus delivers the
// same information asynchronously; Listener exists for renderers that want
// synchronous notification in the calling goroutine.
type Listener interface {
	RowsChanged(table string, total int)
	RowsFiltered(table string, visible, total int)
	RowsSorted(table string, column string)
	SelectionChanged(table string, selected int)
}

// Table holds rows of one kind plus the interaction state that decides
// what is visible. Thread-safe. Constructed with an injected event bus;
// there is no process-wide table registry.
type Table[T Row] struct {
	name string
	bus  *events.Bus

	mu          sync.RWMutex
	rows        []T
	criteria    filter.Criteria
	sortColumn  string
	descending  bool
	selected    map[string]bool
	comparators map[string]Comparator[T]
	listeners   []Listener
}

// New creates a table with the standard "name" and "size" comparators
// registered. The size column orders by true byte magnitude, not lexically.
func New[T Row](name string, bus *events.Bus) *Table[T] {
	t := &Table[T]{
		name:        name,
		bus:         bus,
		selected:    make(map[string]bool),
		comparators: make(map[string]Comparator[T]),
	}
	t.RegisterComparator("name", func(a, b T) int {
		return strings.Compare(strings.ToLower(a.RowName()), strings.ToLower(b.RowName()))
	})
	t.RegisterComparator("size", func(a, b T) int {
		return sizes.Compare(a.RowSize(), b.RowSize())
	})
	return t
}

// RegisterComparator adds or replaces a named column comparator.
func (t *Table[T]) RegisterComparator(column string, cmp Comparator[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.comparators[column] = cmp
}

// AddListener attaches a synchronous listener.
func (t *Table[T]) AddListener(l Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, l)
}

// SetRows replaces the table contents. Selection is dropped: the selected
// rows may no longer exist.
func (t *Table[T]) SetRows(rows []T) {
	t.mu.Lock()
	t.rows = rows
	t.selected = make(map[string]bool)
	total := len(rows)
	listeners := t.listeners
	t.mu.Unlock()

	for _, l := range listeners {
		l.RowsChanged(t.name, total)
	}
	t.publish(events.EventRowsChanged)
}

// SetCriteria replaces the active filter criteria.
func (t *Table[T]) SetCriteria(c filter.Criteria) {
	t.mu.Lock()
	t.criteria = c
	t.mu.Unlock()

	visible := len(t.Visible())
	t.mu.RLock()
	total := len(t.rows)
	listeners := t.listeners
	t.mu.RUnlock()

	for _, l := range listeners {
		l.RowsFiltered(t.name, visible, total)
	}
	t.publish(events.EventRowsFiltered)
}

// SortBy selects the sort column and direction. Unknown columns leave the
// rows in arrival order.
func (t *Table[T]) SortBy(column string, descending bool) {
	t.mu.Lock()
	t.sortColumn = column
	t.descending = descending
	listeners := t.listeners
	t.mu.Unlock()

	for _, l := range listeners {
		l.RowsSorted(t.name, column)
	}
	t.publish(events.EventRowsSorted)
}

// Visible computes the rows that pass the active criteria, in sorted
// order. The computation is pure: calling it twice with unchanged state
// yields the same subset. An empty result is valid.
func (t *Table[T]) Visible() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	visible := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		if t.criteria.Match(row.RowName(), row.RowTag()) {
			visible = append(visible, row)
		}
	}

	cmp, ok := t.comparators[t.sortColumn]
	if !ok {
		return visible
	}

	// Stable sort keeps arrival order for equal keys, so re-sorting is
	// deterministic across passes.
	sort.SliceStable(visible, func(i, j int) bool {
		if t.descending {
			return cmp(visible[i], visible[j]) > 0
		}
		return cmp(visible[i], visible[j]) < 0
	})
	return visible
}

// Select marks a row by name. Selecting an unknown name is a no-op.
func (t *Table[T]) Select(name string) {
	t.mu.Lock()
	found := false
	for _, row := range t.rows {
		if row.RowName() == name {
			found = true
			break
		}
	}
	if found {
		t.selected[name] = true
	}
	selected := len(t.selected)
	listeners := t.listeners
	t.mu.Unlock()

	if !found {
		return
	}
	for _, l := range listeners {
		l.SelectionChanged(t.name, selected)
	}
	t.publish(events.EventSelectionChanged)
}

// ClearSelection unselects everything.
func (t *Table[T]) ClearSelection() {
	t.mu.Lock()
	t.selected = make(map[string]bool)
	listeners := t.listeners
	t.mu.Unlock()

	for _, l := range listeners {
		l.SelectionChanged(t.name, 0)
	}
	t.publish(events.EventSelectionChanged)
}

// Selected returns the names of the selected rows.
func (t *Table[T]) Selected() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.selected))
	for name := range t.selected {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Criteria returns the active filter criteria.
func (t *Table[T]) Criteria() filter.Criteria {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.criteria
}

// Len returns the total (unfiltered) row count.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

func (t *Table[T]) publish(typ events.EventType) {
	if t.bus == nil {
		return
	}

	t.mu.RLock()
	total := len(t.rows)
	selected := len(t.selected)
	column := t.sortColumn
	criteria := t.criteria
	rows := t.rows
	t.mu.RUnlock()

	visible := 0
	for _, row := range rows {
		if criteria.Match(row.RowName(), row.RowTag()) {
			visible++
		}
	}

	t.bus.Publish(events.TableEvent{
		BaseEvent: events.NewBase(typ),
		Table:     t.name,
		Total:     total,
		Visible:   visible,
		SortKey:   column,
		Selected:  selected,
	})
}
