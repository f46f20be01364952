package rtquery

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Arkiver2/pyroTorrent/pkg/rtrpc"
	"github.com/samber/lo"
)

var ErrFieldNotRequested = errors.New("field was not requested")

// One entity's materialized attributes, keyed by the local operation names that were
// chained for it. A per-field fault means only that field is broken; the record's
// other fields are intact. Callers treat records as read-only.
type ResultRecord struct {
	EntityID string

	values map[string]interface{}
	faults map[string]*rtrpc.Fault
}

func newResultRecord(entityID string) *ResultRecord {
	return &ResultRecord{
		EntityID: entityID,
		values:   map[string]interface{}{},
		faults:   map[string]*rtrpc.Fault{},
	}
}

func (r *ResultRecord) deposit(op string, result rtrpc.BatchResult) {
	if result.Fault != nil {
		r.faults[op] = result.Fault
	} else {
		r.values[op] = result.Value
	}
}

// exactly the operations that were selected for this entity, sorted
func (r *ResultRecord) Fields() []string {
	fields := append(lo.Keys(r.values), lo.Keys(r.faults)...)
	sort.Strings(fields)

	return fields
}

// the raw value for one field. A remote fault for this field comes back as the
// *rtrpc.Fault error; a field that was never chained is ErrFieldNotRequested.
func (r *ResultRecord) Field(op string) (interface{}, error) {
	if fault, faulted := r.faults[op]; faulted {
		return nil, fault
	}

	value, requested := r.values[op]
	if !requested {
		return nil, fmt.Errorf("%w: %s", ErrFieldNotRequested, op)
	}

	return value, nil
}

func (r *ResultRecord) String(op string) (string, error) {
	value, err := r.Field(op)
	if err != nil {
		return "", err
	}

	str, isString := value.(string)
	if !isString {
		return "", fmt.Errorf("field %s: expected string, got %T", op, value)
	}

	return str, nil
}

func (r *ResultRecord) Int(op string) (int64, error) {
	value, err := r.Field(op)
	if err != nil {
		return 0, err
	}

	n, isInt := value.(int64)
	if !isInt {
		return 0, fmt.Errorf("field %s: expected integer, got %T", op, value)
	}

	return n, nil
}

// rtorrent reports flags as 0/1 integers, so those convert too
func (r *ResultRecord) Bool(op string) (bool, error) {
	value, err := r.Field(op)
	if err != nil {
		return false, err
	}

	switch v := value.(type) {
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	default:
		return false, fmt.Errorf("field %s: expected boolean, got %T", op, value)
	}
}

// for array-valued fields whose items are strings (e.g. path components)
func (r *ResultRecord) Strings(op string) ([]string, error) {
	value, err := r.Field(op)
	if err != nil {
		return nil, err
	}

	items, isArray := value.([]interface{})
	if !isArray {
		return nil, fmt.Errorf("field %s: expected array, got %T", op, value)
	}

	strs := make([]string, 0, len(items))
	for _, item := range items {
		str, isString := item.(string)
		if !isString {
			return nil, fmt.Errorf("field %s: expected array of strings, got item %T", op, item)
		}

		strs = append(strs, str)
	}

	return strs, nil
}
