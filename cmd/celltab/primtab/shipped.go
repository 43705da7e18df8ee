package primtab

import (
	_ "embed"
	"fmt"

	"celltab/cmd/celltab/prim"
)

//go:embed primitives.tab
var shipped []byte

// Shipped returns a copy of the canonical primitive table compiled into the
// binary.
func Shipped() []byte {
	return append([]byte(nil), shipped...)
}

// LoadShipped builds a registry from the shipped table.
func LoadShipped(opts ...prim.Option) (*prim.Registry, error) {
	reg, _, err := Build(shipped, opts...)
	if err != nil {
		return nil, fmt.Errorf("load shipped table: %w", err)
	}
	return reg, nil
}
