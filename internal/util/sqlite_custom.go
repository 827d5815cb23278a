package util

import (
	"database/sql/driver"
	"fmt"
	"sort"
	"strings"

	"modernc.org/sqlite"
)

// SortedConcatenate is a sqlite aggregate taking (key, value) rows and
// joining the values ordered by key. Limit keeps only the first values,
// zero means all of them.
type SortedConcatenate struct {
	ans   map[int64]string
	sep   string
	limit int
}

func NewSortedConcatenate(sep string, limit int) *SortedConcatenate {
	return &SortedConcatenate{ans: make(map[int64]string), sep: sep, limit: limit}
}

func (sc *SortedConcatenate) Step(ctx *sqlite.FunctionContext, rowArgs []driver.Value) error {
	// LEFT JOINs feed NULL rows for books without genres.
	if rowArgs[0] == nil || rowArgs[1] == nil {
		return nil
	}
	ndx, ok := rowArgs[0].(int64)
	if !ok {
		return fmt.Errorf("invalid type: %T", rowArgs[0])
	}
	value, ok := rowArgs[1].(string)
	if !ok {
		return fmt.Errorf("invalid type: %T", rowArgs[1])
	}
	if value != "" {
		sc.ans[ndx] = value
	}
	return nil
}

func (sc *SortedConcatenate) WindowValue(ctx *sqlite.FunctionContext) (driver.Value, error) {
	return sc.String(), nil
}

func (sc *SortedConcatenate) WindowInverse(ctx *sqlite.FunctionContext, args []driver.Value) error {
	return nil
}

func (sc *SortedConcatenate) Final(ctx *sqlite.FunctionContext) {}

func (sc *SortedConcatenate) String() string {
	if len(sc.ans) == 0 {
		return ""
	}
	keys := make([]int64, 0, len(sc.ans))
	for k := range sc.ans {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	if sc.limit > 0 && len(keys) > sc.limit {
		keys = keys[:sc.limit]
	}

	values := make([]string, 0, len(keys))
	for _, k := range keys {
		values = append(values, sc.ans[k])
	}
	return strings.Join(values, sc.sep)
}

// RegisterSortedConcatenate registers name as a two argument aggregate.
// It panics on a duplicate name, so call it from init.
func RegisterSortedConcatenate(name, sep string, limit int) {
	sqlite.MustRegisterFunction(name, &sqlite.FunctionImpl{
		NArgs:         2,
		Deterministic: true,
		MakeAggregate: func(ctx sqlite.FunctionContext) (sqlite.AggregateFunction, error) {
			return NewSortedConcatenate(sep, limit), nil
		},
	})
}
