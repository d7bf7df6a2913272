// Package repository provides typed access to the watched collections over
// the generic document store.
package repository

import (
	"fmt"
	"sort"
	"time"

	"github.com/agrocampo/campo-api/internal/domain"
)

// The document store has no sort or offset semantics, so listing loads the
// collection and pages in memory. Acceptable at this dataset size.

func clampPaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	return page, pageSize
}

func pageSlice[T any](items []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func sortByCreatedDesc[T any](items []T, createdAt func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]).After(createdAt(items[j]))
	})
}

func notFoundErr(what, id string) error {
	return fmt.Errorf("%w: %s %s no existe", domain.ErrNotFound, what, id)
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}
