// Package reconcile diffs successive snapshots against what a view has
// already rendered, under the current filter, and emits the smallest list
// of row operations that brings the view up to date.
//
// The engine owns one ViewEntry per process that has been visible at
// least once and is still alive. Hidden processes keep their entry so
// they can reappear without a fresh insert.
package reconcile

import (
	"sort"

	"github.com/rileyhilliard/procmon/internal/collector"
)

// OpKind is the type of a row operation.
type OpKind int

const (
	OpInsert OpKind = iota
	OpUpdate
	OpShow
	OpHide
	OpRemove
)

// String returns the operation name.
func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpShow:
		return "show"
	case OpHide:
		return "hide"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Handle is an opaque row reference issued by the rendering side. The
// engine stores it and hands it back but never looks inside.
type Handle any

// Operation is one row change. Record is the new record for Insert,
// Update and Show, and the last rendered record for Hide and Remove.
type Operation struct {
	Kind   OpKind
	PID    int
	Record collector.ProcessRecord
	Handle Handle
}

// OperationList is ordered: Insert/Update/Show/Hide by PID, then Remove
// by PID.
type OperationList []Operation

// Count returns how many operations have kind k.
func (l OperationList) Count(k OpKind) int {
	n := 0
	for _, op := range l {
		if op.Kind == k {
			n++
		}
	}
	return n
}

// ViewEntry is the engine's memory of one rendered process.
type ViewEntry struct {
	Record  collector.ProcessRecord
	Visible bool
	Handle  Handle
}

// Engine tracks view entries across reconciliations. It is not safe for
// concurrent use; the view that owns it calls it from one goroutine.
type Engine struct {
	entries map[int]*ViewEntry
}

// NewEngine creates an engine with no rendered rows.
func NewEngine() *Engine {
	return &Engine{entries: make(map[int]*ViewEntry)}
}

// Reconcile compares snap with the stored entries under pred and returns
// the operations that bring the view in line. Entries are updated in
// place. The result depends only on the inputs and prior state, never on
// map iteration order.
func (e *Engine) Reconcile(snap collector.Snapshot, pred Predicate) OperationList {
	pids := snap.PIDs()
	ops := make(OperationList, 0, len(pids)/4)

	for _, pid := range pids {
		rec := snap.Processes[pid]
		visibleNow := pred.Match(rec)

		entry, ok := e.entries[pid]
		if !ok {
			if visibleNow {
				e.entries[pid] = &ViewEntry{Record: rec, Visible: true}
				ops = append(ops, Operation{Kind: OpInsert, PID: pid, Record: rec})
			}
			continue
		}

		switch {
		case entry.Visible && visibleNow && !entry.Record.Equal(rec):
			ops = append(ops, Operation{Kind: OpUpdate, PID: pid, Record: rec, Handle: entry.Handle})
		case !entry.Visible && visibleNow:
			ops = append(ops, Operation{Kind: OpShow, PID: pid, Record: rec, Handle: entry.Handle})
		case entry.Visible && !visibleNow:
			ops = append(ops, Operation{Kind: OpHide, PID: pid, Record: entry.Record, Handle: entry.Handle})
		}
		entry.Record = rec
		entry.Visible = visibleNow
	}

	var gone []int
	for pid := range e.entries {
		if _, ok := snap.Processes[pid]; !ok {
			gone = append(gone, pid)
		}
	}
	sort.Ints(gone)
	for _, pid := range gone {
		entry := e.entries[pid]
		ops = append(ops, Operation{Kind: OpRemove, PID: pid, Record: entry.Record, Handle: entry.Handle})
		delete(e.entries, pid)
	}

	return ops
}

// AssignHandle attaches the rendering side's handle to pid's entry. It
// reports false when no entry exists.
func (e *Engine) AssignHandle(pid int, h Handle) bool {
	entry, ok := e.entries[pid]
	if !ok {
		return false
	}
	entry.Handle = h
	return true
}

// Entry returns a copy of pid's entry.
func (e *Engine) Entry(pid int) (ViewEntry, bool) {
	entry, ok := e.entries[pid]
	if !ok {
		return ViewEntry{}, false
	}
	return *entry, true
}

// Visible returns the currently visible records ordered by PID.
func (e *Engine) Visible() []collector.ProcessRecord {
	out := make([]collector.ProcessRecord, 0, len(e.entries))
	for _, entry := range e.entries {
		if entry.Visible {
			out = append(out, entry.Record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out
}

// Len returns the number of tracked entries, hidden ones included.
func (e *Engine) Len() int {
	return len(e.entries)
}
