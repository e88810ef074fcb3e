package option

import (
	"gorm.io/gorm"
)

// QueryOption customizes a gorm statement built by the generic repository.
type QueryOption interface {
	Apply(*gorm.DB) *gorm.DB
}

type orderBy struct {
	expr string
}

func (o orderBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Order(o.expr)
}

func OrderBy(expr string) QueryOption {
	return orderBy{expr: expr}
}

type limit struct {
	n int
}

func (l limit) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(l.n)
}

func Limit(n int) QueryOption {
	return limit{n: n}
}
