package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Collection keyed by the "id" column.
// Columns are the model's json tag names, which match its gorm columns.
// It backs the "memory" database type used for local demos and tests.
type Memory[T any] struct {
	name     string
	columns  map[string]bool
	stringPK bool
	nextID   int64

	mu    sync.RWMutex
	order []string
	rows  map[string]map[string]interface{}

	// FailOn makes the next matching write fail, for exercising error paths
	FailOn func(op string, values map[string]interface{}) error
}

var _ Collection[struct{}] = (*Memory[struct{}])(nil)

// NewMemory creates an empty in-memory collection
func NewMemory[T any](name string) *Memory[T] {
	t := reflect.TypeOf(new(T)).Elem()
	m := &Memory[T]{
		name:    name,
		columns: make(map[string]bool),
		rows:    make(map[string]map[string]interface{}),
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := strings.Split(f.Tag.Get("json"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}
		m.columns[tag] = true
		if tag == "id" {
			m.stringPK = f.Type.Kind() == reflect.String
		}
	}
	return m
}

// timestamps are fixed-width so string ordering matches time ordering
const memoryTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func memoryNow() string {
	return time.Now().UTC().Format(memoryTimeFormat)
}

// Name returns the collection name
func (m *Memory[T]) Name() string {
	return m.name
}

// Seed inserts rows as-is, keyed by their id column
func (m *Memory[T]) Seed(rows ...T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range rows {
		values, err := toMap(row)
		if err != nil {
			return err
		}
		id := fmt.Sprint(values["id"])
		if n, err := strconv.ParseInt(id, 10, 64); err == nil && n > m.nextID {
			m.nextID = n
		}
		if _, exists := m.rows[id]; !exists {
			m.order = append(m.order, id)
		}
		m.rows[id] = values
	}
	return nil
}

// Select reads rows matching q
func (m *Memory[T]) Select(ctx context.Context, q Query) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for col := range q.Filters {
		if !m.columns[col] {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, m.name, col)
		}
	}
	col, desc, err := parseOrder(q.Order)
	if err != nil {
		return nil, err
	}
	if col != "" && !m.columns[col] {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, m.name, col)
	}

	matched := make([]map[string]interface{}, 0, len(m.order))
	for _, id := range m.order {
		row := m.rows[id]
		if matches(row, q.Filters) {
			matched = append(matched, row)
		}
	}
	if col != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			c := compareValues(matched[i][col], matched[j][col])
			if desc {
				return c > 0
			}
			return c < 0
		})
	}
	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[q.Offset:]
		}
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	out := make([]T, 0, len(matched))
	for _, row := range matched {
		v, err := fromMap[T](row)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Get retrieves a row by id
func (m *Memory[T]) Get(ctx context.Context, id string) (*T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	v, err := fromMap[T](row)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Insert creates a row and returns its id
func (m *Memory[T]) Insert(ctx context.Context, values map[string]interface{}) (string, error) {
	if err := m.check(values); err != nil {
		return "", err
	}
	if m.FailOn != nil {
		if err := m.FailOn("insert", values); err != nil {
			return "", err
		}
	}

	row, err := toMap(new(T))
	if err != nil {
		return "", err
	}
	for k, v := range normalize(values) {
		row[k] = v
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var id string
	if m.stringPK {
		id, _ = row["id"].(string)
		if id == "" {
			id = uuid.NewString()
			row["id"] = id
		}
	} else {
		if _, given := values["id"]; !given {
			m.nextID++
			row["id"] = json.Number(fmt.Sprint(m.nextID))
		}
		id = fmt.Sprint(row["id"])
	}
	now := memoryNow()
	for _, col := range []string{"created_at", "updated_at", "changed_at", "deleted_at"} {
		if m.columns[col] {
			if _, ok := values[col]; !ok {
				row[col] = now
			}
		}
	}
	// round-trip so the stored row has the model's shape
	if _, err := fromMap[T](row); err != nil {
		return "", err
	}

	if _, exists := m.rows[id]; !exists {
		m.order = append(m.order, id)
	}
	m.rows[id] = row
	return id, nil
}

// Update writes the given columns of one row
func (m *Memory[T]) Update(ctx context.Context, id string, values map[string]interface{}) error {
	if err := m.check(values); err != nil {
		return err
	}
	if m.FailOn != nil {
		if err := m.FailOn("update", values); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return ErrNotFound
	}
	m.apply(row, values)
	return nil
}

// UpdateWhere writes the given columns of every row matching filters
func (m *Memory[T]) UpdateWhere(ctx context.Context, filters, values map[string]interface{}) (int64, error) {
	if len(filters) == 0 {
		return 0, errors.New("refusing unfiltered bulk update")
	}
	if err := m.check(filters); err != nil {
		return 0, err
	}
	if err := m.check(values); err != nil {
		return 0, err
	}
	if m.FailOn != nil {
		if err := m.FailOn("update_where", filters); err != nil {
			return 0, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range m.order {
		row := m.rows[id]
		if matches(row, filters) {
			m.apply(row, values)
			n++
		}
	}
	return n, nil
}

// Delete removes a row and returns it
func (m *Memory[T]) Delete(ctx context.Context, id string) (*T, error) {
	if m.FailOn != nil {
		if err := m.FailOn("delete", map[string]interface{}{"id": id}); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	v, err := fromMap[T](row)
	if err != nil {
		return nil, err
	}
	delete(m.rows, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return &v, nil
}

// Count counts rows matching filters
func (m *Memory[T]) Count(ctx context.Context, filters map[string]interface{}) (int64, error) {
	rows, err := m.Select(ctx, Query{Filters: filters})
	return int64(len(rows)), err
}

func (m *Memory[T]) check(values map[string]interface{}) error {
	for col := range values {
		if !m.columns[col] {
			return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, m.name, col)
		}
	}
	return nil
}

func (m *Memory[T]) apply(row, values map[string]interface{}) {
	for k, v := range normalize(values) {
		row[k] = v
	}
	if m.columns["updated_at"] {
		row["updated_at"] = memoryNow()
	}
}

func matches(row, filters map[string]interface{}) bool {
	for col, want := range filters {
		if fmt.Sprint(row[col]) != fmt.Sprint(normalizeValue(want)) {
			return false
		}
	}
	return true
}

// normalize converts values to their JSON-decoded form so rows compare consistently
func normalize(values map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(values))
	for k, v := range values {
		out[k] = normalizeValue(v)
	}
	return out
}

// compareValues orders NULL first, numbers numerically and everything else by text
func compareValues(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	na, aok := a.(json.Number)
	nb, bok := b.(json.Number)
	if aok && bok {
		if x, err := na.Int64(); err == nil {
			if y, err := nb.Int64(); err == nil {
				switch {
				case x < y:
					return -1
				case x > y:
					return 1
				}
				return 0
			}
		}
		x, errA := na.Float64()
		y, errB := nb.Float64()
		if errA == nil && errB == nil {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func normalizeValue(v interface{}) interface{} {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out interface{}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return v
	}
	return out
}

func toMap(v interface{}) (map[string]interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := make(map[string]interface{})
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func fromMap[T any](row map[string]interface{}) (T, error) {
	var v T
	b, err := json.Marshal(row)
	if err != nil {
		return v, err
	}
	err = json.Unmarshal(b, &v)
	return v, err
}
