// Package orm is a thin chainable wrapper over *gorm.DB used by the
// repositories.
package orm

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/dailyfresh/pkg/paginate"
)

// ErrNotFound mirrors gorm.ErrRecordNotFound so callers need not import gorm.
var ErrNotFound = gorm.ErrRecordNotFound

type Query struct {
	db *gorm.DB
}

// Use starts a query on db; repositories are constructed with their own handle.
func Use(db *gorm.DB) *Query { return &Query{db: db} }

func (q *Query) WithContext(ctx context.Context) *Query {
	return &Query{db: q.db.WithContext(ctx)}
}

func (q *Query) Model(v interface{}) *Query {
	return &Query{db: q.db.Model(v)}
}

func (q *Query) Where(query interface{}, args ...interface{}) *Query {
	return &Query{db: q.db.Where(query, args...)}
}

func (q *Query) Order(value interface{}) *Query {
	return &Query{db: q.db.Order(value)}
}

func (q *Query) Limit(n int) *Query {
	return &Query{db: q.db.Limit(n)}
}

func (q *Query) Preload(query string, args ...interface{}) *Query {
	return &Query{db: q.db.Preload(query, args...)}
}

func (q *Query) Get(dest interface{}) error {
	return q.db.Find(dest).Error
}

func (q *Query) First(dest interface{}) error {
	return q.db.First(dest).Error
}

func (q *Query) Count() (int64, error) {
	var n int64
	err := q.db.Session(&gorm.Session{}).Count(&n).Error
	return n, err
}

func (q *Query) Create(v interface{}) error {
	return q.db.Create(v).Error
}

// Update sets one column on the rows matched so far.
func (q *Query) Update(column string, value interface{}) (int64, error) {
	res := q.db.Update(column, value)
	return res.RowsAffected, res.Error
}

// Transaction runs fn in a transaction on the query's connection.
func (q *Query) Transaction(fn func(tx *Query) error) error {
	return q.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Query{db: tx})
	})
}

// Paginate counts the matched rows, clamps rawPage into range and loads
// that page into dest. The query must already have a Model set.
func (q *Query) Paginate(rawPage string, perPage int, dest interface{}) (paginate.Page, error) {
	total, err := q.Count()
	if err != nil {
		return paginate.Page{}, err
	}
	numPages := paginate.NumPages(total, perPage)
	number := paginate.Clamp(rawPage, numPages)

	if err := q.db.Session(&gorm.Session{}).Offset(paginate.Offset(number, perPage)).Limit(perPage).Find(dest).Error; err != nil {
		return paginate.Page{}, err
	}
	return paginate.New(number, numPages), nil
}

// IsNotFound reports whether err is a missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
