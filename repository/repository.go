// Package repository implements the generic CRUD contract over GORM. Storage
// failures never leave this package raw: they are translated into the
// apperrors taxonomy.
package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"lawsuit_tracker_go/apperrors"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Pagination defaults
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Patch is a partial update keyed by column name
type Patch map[string]any

// Order is one ordering term
type Order struct {
	Field string
	Desc  bool
}

// Preload eager-loads an association, optionally restricted to some columns
type Preload struct {
	Association string
	Columns     []string
}

// ListOptions controls FindAll
type ListOptions struct {
	Page        int
	Limit       int
	Filter      map[string]any
	Preloads    []Preload
	Order       []Order
	Unpaginated bool
}

// Pagination describes the page returned by FindAll
type Pagination struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// Page is one page of results
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// Guard is an extra condition the row must satisfy at write time, e.g.
// Guard{Query: "NOT EXISTS (?)", Args: []any{subquery}}
type Guard struct {
	Query string
	Args  []any
}

// ErrGuardRejected is returned by a guarded write when the row exists but a Guard did not hold
var ErrGuardRejected = errors.New("write rejected by guard")

// Repository is the CRUD contract for one entity type
type Repository[T any] struct {
	db        *gorm.DB
	resource  string
	columns   map[string]bool
	relations map[string]bool
}

// New parses T's schema once so filters and orderings can be checked against real columns
func New[T any](db *gorm.DB, resource string) (*Repository[T], error) {
	s, err := schema.Parse(new(T), &sync.Map{}, db.NamingStrategy)
	if err != nil {
		return nil, apperrors.NewConfigurationError(resource, "failed to parse %s schema: %v", resource, err)
	}

	columns := make(map[string]bool, len(s.DBNames))
	for _, name := range s.DBNames {
		columns[name] = true
	}
	relations := make(map[string]bool, len(s.Relationships.Relations))
	for name := range s.Relationships.Relations {
		relations[name] = true
	}

	return &Repository[T]{db: db, resource: resource, columns: columns, relations: relations}, nil
}

// Resource is the entity name used in errors and logs
func (r *Repository[T]) Resource() string {
	return r.resource
}

// WithTx returns a copy of the repository bound to tx
func (r *Repository[T]) WithTx(tx *gorm.DB) *Repository[T] {
	clone := *r
	clone.db = tx
	return &clone
}

// Transaction runs fn in a single database transaction
func (r *Repository[T]) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// Query returns a query builder scoped to T for custom reads
func (r *Repository[T]) Query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(new(T))
}

// Create inserts entity
func (r *Repository[T]) Create(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return r.translate(err, "")
	}
	return nil
}

// FindByID loads one row by primary key
func (r *Repository[T]) FindByID(ctx context.Context, id string, preloads ...Preload) (*T, error) {
	query, err := r.withPreloads(r.db.WithContext(ctx), preloads)
	if err != nil {
		return nil, err
	}

	var entity T
	if err := query.First(&entity, "id = ?", id).Error; err != nil {
		return nil, r.translate(err, id)
	}
	return &entity, nil
}

// FindOne loads the first row matching filter
func (r *Repository[T]) FindOne(ctx context.Context, filter map[string]any, preloads ...Preload) (*T, error) {
	query, err := r.filtered(r.db.WithContext(ctx), filter)
	if err != nil {
		return nil, err
	}
	if query, err = r.withPreloads(query, preloads); err != nil {
		return nil, err
	}

	var entity T
	if err := query.First(&entity).Error; err != nil {
		return nil, r.translate(err, "")
	}
	return &entity, nil
}

// FindAll lists rows matching opts.Filter with pagination metadata
func (r *Repository[T]) FindAll(ctx context.Context, opts ListOptions) (*Page[T], error) {
	opts = normalize(opts)

	query, err := r.filtered(r.db.WithContext(ctx).Model(new(T)), opts.Filter)
	if err != nil {
		return nil, err
	}
	// Count and Find below must not share statement state.
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, r.translate(err, "")
	}

	if query, err = r.withPreloads(query, opts.Preloads); err != nil {
		return nil, err
	}
	for _, o := range opts.Order {
		if !r.columns[o.Field] {
			return nil, apperrors.FieldInvalid("order", fmt.Sprintf("cannot order %s by %q", r.resource, o.Field), o.Field)
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		query = query.Order(o.Field + " " + dir)
	}

	if !opts.Unpaginated {
		query = query.Limit(opts.Limit).Offset((opts.Page - 1) * opts.Limit)
	}

	items := make([]T, 0)
	if err := query.Find(&items).Error; err != nil {
		return nil, r.translate(err, "")
	}

	limit := opts.Limit
	if opts.Unpaginated {
		limit = int(total)
	}
	return &Page[T]{Items: items, Pagination: paginate(opts.Page, limit, total)}, nil
}

// Update applies patch to the row with id and returns the stored result.
// Guards are checked in the same statement.
func (r *Repository[T]) Update(ctx context.Context, id string, patch Patch, guards ...Guard) (*T, error) {
	if len(patch) == 0 {
		return r.FindByID(ctx, id)
	}
	for column := range patch {
		if !r.columns[column] || column == "id" || column == "created_at" {
			return nil, apperrors.FieldInvalid(column, fmt.Sprintf("%s cannot be updated", column), patch[column])
		}
	}

	query := applyGuards(r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id), guards)
	res := query.Updates(map[string]any(patch))
	if res.Error != nil {
		return nil, r.translate(res.Error, id)
	}
	if res.RowsAffected == 0 {
		return nil, r.missedWrite(ctx, id, guards)
	}
	return r.FindByID(ctx, id)
}

// Delete permanently removes the row with id. Guards are checked in the same statement.
func (r *Repository[T]) Delete(ctx context.Context, id string, guards ...Guard) error {
	query := applyGuards(r.db.WithContext(ctx).Where("id = ?", id), guards)
	res := query.Delete(new(T))
	if res.Error != nil {
		return r.translate(res.Error, id)
	}
	if res.RowsAffected == 0 {
		return r.missedWrite(ctx, id, guards)
	}
	return nil
}

func applyGuards(query *gorm.DB, guards []Guard) *gorm.DB {
	for _, g := range guards {
		query = query.Where(g.Query, g.Args...)
	}
	return query
}

// missedWrite tells a missing row apart from a failed guard
func (r *Repository[T]) missedWrite(ctx context.Context, id string, guards []Guard) error {
	if len(guards) == 0 {
		return apperrors.NewNotFoundError(r.resource, id)
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&n).Error; err != nil {
		return r.translate(err, id)
	}
	if n == 0 {
		return apperrors.NewNotFoundError(r.resource, id)
	}
	return ErrGuardRejected
}

// Count counts rows matching filter
func (r *Repository[T]) Count(ctx context.Context, filter map[string]any) (int64, error) {
	query, err := r.filtered(r.db.WithContext(ctx).Model(new(T)), filter)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := query.Count(&n).Error; err != nil {
		return 0, r.translate(err, "")
	}
	return n, nil
}

type groupRow struct {
	GroupKey string
	Total    int64
}

// CountBy counts rows matching filter grouped by column
func (r *Repository[T]) CountBy(ctx context.Context, column string, filter map[string]any) (map[string]int64, error) {
	if !r.columns[column] {
		return nil, apperrors.FieldInvalid("group", fmt.Sprintf("cannot group %s by %q", r.resource, column), column)
	}
	query, err := r.filtered(r.db.WithContext(ctx).Model(new(T)), filter)
	if err != nil {
		return nil, err
	}

	var rows []groupRow
	if err := query.Select(column + " AS group_key, COUNT(*) AS total").Group(column).Scan(&rows).Error; err != nil {
		return nil, r.translate(err, "")
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.GroupKey] = row.Total
	}
	return counts, nil
}

func (r *Repository[T]) filtered(query *gorm.DB, filter map[string]any) (*gorm.DB, error) {
	if len(filter) == 0 {
		return query, nil
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !r.columns[k] {
			return nil, apperrors.FieldInvalid(k, fmt.Sprintf("cannot filter %s by %q", r.resource, k), filter[k])
		}
		v := filter[k]
		switch val := v.(type) {
		case nil:
			query = query.Where(k + " IS NULL")
		case []string:
			query = query.Where(k+" IN ?", val)
		default:
			query = query.Where(k+" = ?", val)
		}
	}
	return query, nil
}

func (r *Repository[T]) withPreloads(query *gorm.DB, preloads []Preload) (*gorm.DB, error) {
	for _, p := range preloads {
		if !r.relations[p.Association] {
			return nil, apperrors.FieldInvalid("include", fmt.Sprintf("%s has no association %q", r.resource, p.Association), p.Association)
		}
		if len(p.Columns) == 0 {
			query = query.Preload(p.Association)
			continue
		}
		columns := withID(p.Columns)
		query = query.Preload(p.Association, func(tx *gorm.DB) *gorm.DB {
			return tx.Select(columns)
		})
	}
	return query, nil
}

func withID(columns []string) []string {
	for _, c := range columns {
		if c == "id" {
			return columns
		}
	}
	return append([]string{"id"}, columns...)
}

func normalize(opts ListOptions) ListOptions {
	if opts.Page < 1 {
		opts.Page = DefaultPage
	}
	if opts.Limit < 1 {
		opts.Limit = DefaultLimit
	}
	if opts.Limit > MaxLimit {
		opts.Limit = MaxLimit
	}
	if opts.Unpaginated {
		opts.Page = 1
	}
	return opts
}

func paginate(page, limit int, total int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return Pagination{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

func (r *Repository[T]) translate(err error, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFoundError(r.resource, id)
	}
	return translateError(r.resource, err)
}

// Translate maps an error from a custom query built on Query onto the apperrors taxonomy
func (r *Repository[T]) Translate(err error) error {
	return r.translate(err, "")
}
