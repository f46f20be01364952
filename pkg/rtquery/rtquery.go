// The batched query builder: callers describe every attribute they want for any
// number of entities as one fluent chain, and the whole description is paid for with
// exactly one XML-RPC round trip when materialized.
package rtquery

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Arkiver2/pyroTorrent/pkg/rtmethods"
	"github.com/Arkiver2/pyroTorrent/pkg/rtrpc"
)

var (
	// the accumulator was consumed by Materialize already; build a new one
	ErrBatchAlreadyExecuted = errors.New("batch already executed")

	// remote returned fewer/more results than calls sent. the connection contract
	// forbids this, so it is a programming/infrastructure fault and never retryable.
	ErrPartialResultMismatch = errors.New("partial result mismatch")
)

// a recorded intent to fetch one attribute of one entity. immutable once appended.
type Selector struct {
	EntityID string
	Op       string
	Args     []interface{}
}

// Query accumulates Selectors without touching the network. Not safe for concurrent
// use; build one per logical request flow (the Connection behind it is shared freely).
type Query struct {
	invoker   rtrpc.Invoker
	table     *rtmethods.Table
	scope     string // entity id applied to subsequent Op() calls
	selectors []Selector
	executed  bool
	err       error // first accumulation error; reported before any network call
}

func New(invoker rtrpc.Invoker, table *rtmethods.Table) *Query {
	return &Query{
		invoker: invoker,
		table:   table,
	}
}

// establishes the entity scope for subsequent Op calls. Empty id = the global scope.
func (q *Query) ForEntity(entityID string) *Query {
	q.scope = entityID
	return q
}

// appends one selector for the current entity scope. An operation missing from the
// method table poisons the query immediately: Materialize will report it without
// issuing any network call.
func (q *Query) Op(name string, args ...interface{}) *Query {
	if q.err != nil {
		return q
	}

	if q.executed {
		q.err = ErrBatchAlreadyExecuted
		return q
	}

	if !q.table.Has(name) {
		q.err = fmt.Errorf("%w: %s", rtmethods.ErrUnknownOperation, name)
		return q
	}

	q.selectors = append(q.selectors, Selector{
		EntityID: q.scope,
		Op:       name,
		Args:     args,
	})

	return q
}

// accumulation error, if any. Materialize reports the same error, so checking here
// is optional.
func (q *Query) Err() error {
	return q.err
}

// Materialize executes the accumulated batch as a single round trip and regroups the
// positional results into one ResultRecord per entity. It consumes the query; a
// second Materialize (or further Op calls) fail with ErrBatchAlreadyExecuted.
func (q *Query) Materialize(ctx context.Context) (map[string]*ResultRecord, error) {
	if q.err != nil {
		return nil, q.err
	}

	if q.executed {
		return nil, ErrBatchAlreadyExecuted
	}
	q.executed = true

	// group selectors by entity, preserving both the order entities first appeared in
	// and the append order within each entity. the remote returns values positionally,
	// so this ordering is what lets us demultiplex.
	entityOrder := []string{}
	grouped := map[string][]Selector{}
	for _, selector := range q.selectors {
		if _, seen := grouped[selector.EntityID]; !seen {
			entityOrder = append(entityOrder, selector.EntityID)
		}

		grouped[selector.EntityID] = append(grouped[selector.EntityID], selector)
	}

	flattened := []Selector{}
	calls := []rtrpc.Call{}
	for _, entityID := range entityOrder {
		for _, selector := range grouped[entityID] {
			remoteName, err := q.table.Resolve(selector.Op)
			if err != nil {
				return nil, err
			}

			calls = append(calls, rtrpc.Call{
				Method: remoteName,
				Args:   append(entityArgs(selector.EntityID), selector.Args...),
			})
			flattened = append(flattened, selector)
		}
	}

	results, err := q.invoker.InvokeBatch(ctx, calls)
	if err != nil {
		return nil, err
	}

	if len(results) != len(calls) {
		return nil, fmt.Errorf(
			"%w: sent %d calls, got %d results",
			ErrPartialResultMismatch,
			len(calls),
			len(results))
	}

	records := map[string]*ResultRecord{}
	for i, selector := range flattened {
		record, exists := records[selector.EntityID]
		if !exists {
			record = newResultRecord(selector.EntityID)
			records[selector.EntityID] = record
		}

		record.deposit(selector.Op, results[i])
	}

	return records, nil
}

// A non-empty entity id becomes leading positional arguments of the remote call:
// "HASH" -> (HASH), "HASH:3" -> (HASH, 3). Numeric segments are passed as integers
// because rtorrent's file commands take the index as one. The global scope ("")
// contributes nothing.
func entityArgs(entityID string) []interface{} {
	if entityID == "" {
		return nil
	}

	args := []interface{}{}
	for _, segment := range strings.Split(entityID, ":") {
		if n, err := strconv.Atoi(segment); err == nil {
			args = append(args, n)
		} else {
			args = append(args, segment)
		}
	}

	return args
}
