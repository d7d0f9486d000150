package store

import (
	"fmt"
	"sort"
	"strings"
)

// Query describes a filtered, ordered read of a collection.
// Filters are equality matches on column names.
type Query struct {
	Filters map[string]interface{}
	Order   string // "column" or "column asc|desc"
	Limit   int
	Offset  int
}

// Key returns a canonical parameter tuple for cache keys.
// Equal queries always produce the same key regardless of map order.
func (q Query) Key() string {
	cols := make([]string, 0, len(q.Filters))
	for col := range q.Filters {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	var b strings.Builder
	for _, col := range cols {
		fmt.Fprintf(&b, "%s=%v;", col, q.Filters[col])
	}
	fmt.Fprintf(&b, "order=%s;limit=%d;offset=%d", strings.ToLower(strings.TrimSpace(q.Order)), q.Limit, q.Offset)
	return b.String()
}

// parseOrder splits "column desc" into its parts
func parseOrder(order string) (column string, desc bool, err error) {
	parts := strings.Fields(order)
	switch len(parts) {
	case 0:
		return "", false, nil
	case 1:
		return parts[0], false, nil
	case 2:
		switch strings.ToLower(parts[1]) {
		case "asc":
			return parts[0], false, nil
		case "desc":
			return parts[0], true, nil
		}
	}
	return "", false, fmt.Errorf("invalid order %q", order)
}
