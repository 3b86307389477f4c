// Package repository stores the service's documents in MongoDB.
//
// FindByID methods return (nil, nil) when the document does not exist.
package repository

import (
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Pagination normalizes page and limit query values.
func Pagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func pageOptions(page, limit int, sort bson.D) *options.FindOptionsBuilder {
	page, limit = Pagination(page, limit)
	opts := options.Find()
	opts.SetSort(sort)
	opts.SetSkip(int64((page - 1) * limit))
	opts.SetLimit(int64(limit))
	return opts
}
