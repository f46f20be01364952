// Maps our stable local operation names to the method names rtorrent exposes over
// XML-RPC. The local surface stays put even when the remote protocol renames things.
package rtmethods

import (
	"errors"
	"fmt"
)

var ErrUnknownOperation = errors.New("unknown operation")

type MethodSpec struct {
	Local       string
	Remote      string
	Description string
}

// read-only after construction
type Table struct {
	byLocal map[string]MethodSpec
	order   []string // insertion order, for stable listings
}

func NewTable(specs []MethodSpec) (*Table, error) {
	table := &Table{
		byLocal: map[string]MethodSpec{},
	}

	for _, spec := range specs {
		if spec.Local == "" || spec.Remote == "" {
			return nil, fmt.Errorf("method table: empty name in spec %+v", spec)
		}
		if _, duplicate := table.byLocal[spec.Local]; duplicate {
			return nil, fmt.Errorf("method table: duplicate local name: %s", spec.Local)
		}

		table.byLocal[spec.Local] = spec
		table.order = append(table.order, spec.Local)
	}

	return table, nil
}

func (t *Table) Resolve(local string) (string, error) {
	spec, found := t.byLocal[local]
	if !found {
		return "", fmt.Errorf("%w: %s", ErrUnknownOperation, local)
	}

	return spec.Remote, nil
}

func (t *Table) Has(local string) bool {
	_, found := t.byLocal[local]
	return found
}

// specs in the order they were registered
func (t *Table) Specs() []MethodSpec {
	specs := make([]MethodSpec, 0, len(t.order))
	for _, local := range t.order {
		specs = append(specs, t.byLocal[local])
	}

	return specs
}
