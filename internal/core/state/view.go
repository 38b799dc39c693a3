// Package state defines the record store the engine executes against
// and the apply table that makes every operation all-or-nothing.
package state

import "github.com/pixelmesh/gomarketd/internal/core/keylet"

// View provides keyed access to serialized records. Read returns nil
// for absent entries; Insert fails if the entry exists, Update and
// Erase fail if it does not.
type View interface {
	Read(k keylet.Keylet) ([]byte, error)
	Exists(k keylet.Keylet) (bool, error)
	Insert(k keylet.Keylet, data []byte) error
	Update(k keylet.Keylet, data []byte) error
	Erase(k keylet.Keylet) error
}
