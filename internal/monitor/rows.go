package monitor

import (
	"sort"

	"github.com/rileyhilliard/procmon/internal/collector"
	"github.com/rileyhilliard/procmon/internal/reconcile"
)

// rowID is the handle the table gives the reconcile engine for each row.
type rowID uint64

type row struct {
	id      rowID
	record  collector.ProcessRecord
	visible bool
}

// rowSet owns the rendered rows. It only changes through apply, so the
// table never rebuilds rows the engine did not touch.
type rowSet struct {
	next  rowID
	rows  map[rowID]*row
	order []*row

	dirty    bool
	sortCol  SortColumn
	sortDesc bool
}

func newRowSet() *rowSet {
	return &rowSet{rows: make(map[rowID]*row), dirty: true}
}

// apply executes ops in order. New rows get a fresh id which is handed back
// to the engine.
func (s *rowSet) apply(ops reconcile.OperationList, engine *reconcile.Engine) {
	for _, op := range ops {
		switch op.Kind {
		case reconcile.OpInsert:
			s.next++
			r := &row{id: s.next, record: op.Record, visible: true}
			s.rows[r.id] = r
			engine.AssignHandle(op.PID, r.id)
		case reconcile.OpUpdate:
			if r, ok := s.lookup(op.Handle); ok {
				r.record = op.Record
			}
		case reconcile.OpShow:
			if r, ok := s.lookup(op.Handle); ok {
				r.record = op.Record
				r.visible = true
			}
		case reconcile.OpHide:
			if r, ok := s.lookup(op.Handle); ok {
				r.visible = false
			}
		case reconcile.OpRemove:
			if id, ok := op.Handle.(rowID); ok {
				delete(s.rows, id)
			}
		}
	}
	if len(ops) > 0 {
		s.dirty = true
	}
}

func (s *rowSet) lookup(h reconcile.Handle) (*row, bool) {
	id, ok := h.(rowID)
	if !ok {
		return nil, false
	}
	r, ok := s.rows[id]
	return r, ok
}

// sorted returns the visible rows in display order, re-sorting only when
// rows or the ordering changed.
func (s *rowSet) sorted(col SortColumn, desc bool) []*row {
	if !s.dirty && col == s.sortCol && desc == s.sortDesc {
		return s.order
	}

	s.order = make([]*row, 0, len(s.rows))
	for _, r := range s.rows {
		if r.visible {
			s.order = append(s.order, r)
		}
	}
	sort.Slice(s.order, func(i, j int) bool {
		return lessRecord(s.order[i].record, s.order[j].record, col, desc)
	})

	s.dirty = false
	s.sortCol = col
	s.sortDesc = desc
	return s.order
}

// len returns the number of rows held, hidden ones included.
func (s *rowSet) len() int {
	return len(s.rows)
}
