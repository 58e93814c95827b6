package leaderboard

import (
	"fmt"

	"github.com/kailas-cloud/elodash/internal/domain/record"
)

// PageRequest asks for one fixed-size window of a collection.
type PageRequest struct {
	index int
	size  int
}

// NewPageRequest validates and creates a PageRequest.
// size must be at least 1. index is 1-based and is clamped by Paginate, so
// any value is accepted here.
func NewPageRequest(index, size int) (PageRequest, error) {
	if size < 1 {
		return PageRequest{}, fmt.Errorf("page size must be at least 1, got %d", size)
	}
	return PageRequest{index: index, size: size}, nil
}

// Index returns the requested 1-based page index.
func (p PageRequest) Index() int { return p.index }

// Size returns the page size.
func (p PageRequest) Size() int { return p.size }

// Page describes the window returned by Paginate.
type Page struct {
	Index      int
	Size       int
	TotalItems int
	TotalPages int
}

// TotalPages returns ceil(count/size). An empty collection has one, empty,
// page. size below 1 is treated as 1.
func TotalPages(count, size int) int {
	if size < 1 {
		size = 1
	}
	if count <= 0 {
		return 1
	}
	return (count + size - 1) / size
}

// Paginate returns the requested page of records and its descriptor.
// The page index is clamped to [1, TotalPages] against len(records) on every
// call.
func Paginate(records []record.Record, req PageRequest) ([]record.Record, Page) {
	size := req.size
	if size < 1 {
		size = 1
	}
	total := len(records)
	pages := TotalPages(total, size)

	index := req.index
	if index < 1 {
		index = 1
	}
	if index > pages {
		index = pages
	}

	start := (index - 1) * size
	end := min(start+size, total)

	items := make([]record.Record, end-start)
	copy(items, records[start:end])

	return items, Page{Index: index, Size: size, TotalItems: total, TotalPages: pages}
}
