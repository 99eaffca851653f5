package core

import "errors"

var (
	ErrInvalidPeriod     = errors.New("runnable period must be greater than zero")
	ErrNilCallback       = errors.New("runnable has no callback")
	ErrDuplicatePriority = errors.New("two runnables share a priority")
)

// Runnable is a periodic unit of application work
type Runnable struct {
	Name     string // Diagnostic only
	Priority uint8  // Lower value runs first within a cycle

	PeriodMs     uint32 // Interval between firings
	FirstDelayMs uint32 // Time-stamp of the first firing

	Callback func()
}

// dueAt reports whether r fires in the cycle evaluated at time-stamp ts:
// at FirstDelayMs and every PeriodMs after it.
func (r *Runnable) dueAt(ts uint64) bool {
	first := uint64(r.FirstDelayMs)
	if ts < first {
		return false
	}
	return (ts-first)%uint64(r.PeriodMs) == 0
}

// RunnableTable is an immutable, priority-ordered list of runnables
type RunnableTable struct {
	entries []Runnable
}

// Len returns the number of runnables
func (t *RunnableTable) Len() int {
	return len(t.entries)
}

// At returns a copy of the runnable at dispatch position i
func (t *RunnableTable) At(i int) Runnable {
	return t.entries[i]
}

// IndexOf returns the dispatch position of the named runnable, or -1
func (t *RunnableTable) IndexOf(name string) int {
	for i := range t.entries {
		if t.entries[i].Name == name {
			return i
		}
	}
	return -1
}

// TableBuilder collects runnables at startup and freezes them into a table
type TableBuilder struct {
	entries []Runnable
	err     error
}

// NewTableBuilder creates an empty builder
func NewTableBuilder() *TableBuilder {
	return &TableBuilder{}
}

// Add appends a runnable. Validation errors are reported by Build.
func (b *TableBuilder) Add(r Runnable) *TableBuilder {
	if b.err != nil {
		return b
	}
	switch {
	case r.PeriodMs == 0:
		b.err = ErrInvalidPeriod
	case r.Callback == nil:
		b.err = ErrNilCallback
	}
	if b.err != nil {
		DebugPrintln("sched: rejected runnable " + r.Name + ": " + b.err.Error())
		return b
	}
	for i := range b.entries {
		if b.entries[i].Priority == r.Priority {
			b.err = ErrDuplicatePriority
			DebugPrintln("sched: " + r.Name + " and " + b.entries[i].Name +
				" both use priority " + utoa(uint32(r.Priority)))
			return b
		}
	}
	if r.PeriodMs%QuantumMs != 0 {
		DebugPrintln("sched: " + r.Name + " period " + utoa(r.PeriodMs) +
			"ms is not a multiple of the " + utoa(QuantumMs) + "ms quantum")
	}
	b.entries = append(b.entries, r)
	return b
}

// Build returns the table ordered by ascending priority
func (b *TableBuilder) Build() (*RunnableTable, error) {
	if b.err != nil {
		return nil, b.err
	}

	entries := make([]Runnable, len(b.entries))
	copy(entries, b.entries)

	// Priorities are unique, so this order is total
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].Priority < entries[j-1].Priority; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}

	return &RunnableTable{entries: entries}, nil
}
