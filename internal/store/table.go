package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

var (
	// ErrNotFound is returned when no row matches the requested id
	ErrNotFound = errors.New("record not found")
	// ErrUnknownColumn is returned when a filter, order or value names a column the model does not have
	ErrUnknownColumn = errors.New("unknown column")
)

// Collection is the record collection client used by the editors
type Collection[T any] interface {
	Name() string
	Select(ctx context.Context, q Query) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Insert(ctx context.Context, values map[string]interface{}) (string, error)
	Update(ctx context.Context, id string, values map[string]interface{}) error
	Delete(ctx context.Context, id string) (*T, error)
}

// Table is a gorm-backed Collection for model T
type Table[T any] struct {
	db       *gorm.DB
	name     string
	columns  map[string]bool
	stringPK bool
	hasTimes [2]bool // created_at, updated_at
}

var _ Collection[struct{}] = (*Table[struct{}])(nil)

var schemaCache sync.Map

// NewTable parses T's schema and returns a table bound to db
func NewTable[T any](db *gorm.DB) (*Table[T], error) {
	s, err := schema.Parse(new(T), &schemaCache, db.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	t := &Table[T]{
		db:      db,
		name:    s.Table,
		columns: make(map[string]bool, len(s.DBNames)),
	}
	for _, col := range s.DBNames {
		t.columns[col] = true
	}
	if pk := s.PrioritizedPrimaryField; pk != nil {
		t.stringPK = pk.DataType == schema.String
	}
	t.hasTimes[0] = t.columns["created_at"]
	t.hasTimes[1] = t.columns["updated_at"]
	return t, nil
}

// MustTable is NewTable for wiring code; it panics on a malformed model
func MustTable[T any](db *gorm.DB) *Table[T] {
	t, err := NewTable[T](db)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the collection (table) name
func (t *Table[T]) Name() string {
	return t.name
}

// DB returns the underlying gorm handle
func (t *Table[T]) DB() *gorm.DB {
	return t.db
}

// WithTx returns a copy of the table bound to a transaction
func (t *Table[T]) WithTx(tx *gorm.DB) *Table[T] {
	cp := *t
	cp.db = tx
	return &cp
}

// HasColumn reports whether the model has the given column
func (t *Table[T]) HasColumn(col string) bool {
	return t.columns[col]
}

func (t *Table[T]) where(tx *gorm.DB, filters map[string]interface{}) (*gorm.DB, error) {
	cols := make([]string, 0, len(filters))
	for col := range filters {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		if !t.columns[col] {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, t.name, col)
		}
		tx = tx.Where(clause.Eq{Column: clause.Column{Name: col}, Value: filters[col]})
	}
	return tx, nil
}

func (t *Table[T]) checkValues(values map[string]interface{}) error {
	for col := range values {
		if !t.columns[col] {
			return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, t.name, col)
		}
	}
	return nil
}

// Select reads rows matching q
func (t *Table[T]) Select(ctx context.Context, q Query) ([]T, error) {
	tx, err := t.where(t.db.WithContext(ctx).Model(new(T)), q.Filters)
	if err != nil {
		return nil, err
	}

	col, desc, err := parseOrder(q.Order)
	if err != nil {
		return nil, err
	}
	if col != "" {
		if !t.columns[col] {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, t.name, col)
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: desc})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}

	var rows []T
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Get retrieves a row by id
func (t *Table[T]) Get(ctx context.Context, id string) (*T, error) {
	var row T
	err := t.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Insert creates a row from column values and returns its id.
// A UUID is generated for string primary keys when none is given.
func (t *Table[T]) Insert(ctx context.Context, values map[string]interface{}) (string, error) {
	if err := t.checkValues(values); err != nil {
		return "", err
	}

	row := make(map[string]interface{}, len(values)+3)
	for k, v := range values {
		row[k] = v
	}
	if t.stringPK {
		if id, _ := row["id"].(string); id == "" {
			row["id"] = uuid.NewString()
		}
	}
	now := time.Now()
	if _, ok := row["created_at"]; !ok && t.hasTimes[0] {
		row["created_at"] = now
	}
	if _, ok := row["updated_at"]; !ok && t.hasTimes[1] {
		row["updated_at"] = now
	}

	if err := t.db.WithContext(ctx).Model(new(T)).Create(row).Error; err != nil {
		return "", err
	}
	return fmt.Sprint(row["id"]), nil
}

// Update writes the given columns of one row
func (t *Table[T]) Update(ctx context.Context, id string, values map[string]interface{}) error {
	if err := t.checkValues(values); err != nil {
		return err
	}
	if len(values) == 0 {
		_, err := t.Get(ctx, id)
		return err
	}

	result := t.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateWhere writes the given columns of every row matching filters
func (t *Table[T]) UpdateWhere(ctx context.Context, filters, values map[string]interface{}) (int64, error) {
	if len(filters) == 0 {
		return 0, errors.New("refusing unfiltered bulk update")
	}
	if err := t.checkValues(values); err != nil {
		return 0, err
	}
	tx, err := t.where(t.db.WithContext(ctx).Model(new(T)), filters)
	if err != nil {
		return 0, err
	}
	result := tx.Updates(values)
	return result.RowsAffected, result.Error
}

// Delete removes a row and returns what was deleted
func (t *Table[T]) Delete(ctx context.Context, id string) (*T, error) {
	row, err := t.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	result := t.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return row, nil
}

// Count counts rows matching filters
func (t *Table[T]) Count(ctx context.Context, filters map[string]interface{}) (int64, error) {
	tx, err := t.where(t.db.WithContext(ctx).Model(new(T)), filters)
	if err != nil {
		return 0, err
	}
	var n int64
	err = tx.Count(&n).Error
	return n, err
}
