package state

import (
	"errors"

	"github.com/pixelmesh/gomarketd/internal/core/keylet"
	"github.com/pixelmesh/gomarketd/internal/core/types"
)

// Action represents the type of modification to a tracked entry.
type Action int

const (
	// ActionCache means the entry was read but not modified.
	ActionCache Action = iota
	// ActionInsert means a new entry was created.
	ActionInsert
	// ActionModify means an existing entry was modified.
	ActionModify
	// ActionErase means an entry was deleted.
	ActionErase
)

var (
	ErrExists   = errors.New("entry already exists")
	ErrNotFound = errors.New("entry not found")
)

type trackedEntry struct {
	action  Action
	keylet  keylet.Keylet
	current []byte
}

// ApplyTable wraps a base View and buffers all modifications. Nothing
// reaches the base until Commit; dropping the table discards every
// change, which is what gives each operation its all-or-nothing
// semantics.
type ApplyTable struct {
	base  View
	items map[types.Hash]*trackedEntry
	order []types.Hash
}

// NewApplyTable creates an apply table over the given base view.
func NewApplyTable(base View) *ApplyTable {
	return &ApplyTable{
		base:  base,
		items: make(map[types.Hash]*trackedEntry),
	}
}

// Read returns the current value of an entry, nil if absent.
func (t *ApplyTable) Read(k keylet.Keylet) ([]byte, error) {
	if e, ok := t.items[k.Key]; ok {
		if e.action == ActionErase {
			return nil, nil
		}
		return e.current, nil
	}
	return t.base.Read(k)
}

// Exists checks whether an entry is present.
func (t *ApplyTable) Exists(k keylet.Keylet) (bool, error) {
	if e, ok := t.items[k.Key]; ok {
		return e.action != ActionErase, nil
	}
	return t.base.Exists(k)
}

func (t *ApplyTable) track(k keylet.Keylet, e *trackedEntry) {
	e.keylet = k
	if _, ok := t.items[k.Key]; !ok {
		t.order = append(t.order, k.Key)
	}
	t.items[k.Key] = e
}

// Insert adds a new entry.
func (t *ApplyTable) Insert(k keylet.Keylet, data []byte) error {
	if e, ok := t.items[k.Key]; ok {
		if e.action != ActionErase {
			return ErrExists
		}
		// Re-inserting an erased entry becomes a modify of the base.
		e.action = ActionModify
		e.current = data
		return nil
	}
	exists, err := t.base.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return ErrExists
	}
	t.track(k, &trackedEntry{action: ActionInsert, current: data})
	return nil
}

// Update modifies an existing entry.
func (t *ApplyTable) Update(k keylet.Keylet, data []byte) error {
	if e, ok := t.items[k.Key]; ok {
		switch e.action {
		case ActionErase:
			return ErrNotFound
		case ActionCache:
			e.action = ActionModify
		}
		e.current = data
		return nil
	}
	exists, err := t.base.Exists(k)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	t.track(k, &trackedEntry{action: ActionModify, current: data})
	return nil
}

// Erase removes an entry.
func (t *ApplyTable) Erase(k keylet.Keylet) error {
	if e, ok := t.items[k.Key]; ok {
		switch e.action {
		case ActionErase:
			return ErrNotFound
		case ActionInsert:
			// Never reached the base; forget it entirely.
			delete(t.items, k.Key)
			return nil
		}
		e.action = ActionErase
		e.current = nil
		return nil
	}
	exists, err := t.base.Exists(k)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	t.track(k, &trackedEntry{action: ActionErase})
	return nil
}

// Commit writes every buffered change to the base view in the order
// the entries were first touched.
func (t *ApplyTable) Commit() error {
	for _, key := range t.order {
		e, ok := t.items[key]
		if !ok {
			continue
		}
		var err error
		switch e.action {
		case ActionInsert:
			err = t.base.Insert(e.keylet, e.current)
		case ActionModify:
			err = t.base.Update(e.keylet, e.current)
		case ActionErase:
			err = t.base.Erase(e.keylet)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
