package store

import (
	"context"

	"github.com/viniciusvds1/rubro-news-pipeline/internal/domain"
)

// Package store provides access to the durable content store.

// CategoryNews is the content class this pipeline writes.
const CategoryNews = "noticias"

// DedupStatus tags the outcome of a title lookup so callers cannot conflate
// "duplicate absent" with "store unreachable".
type DedupStatus int

const (
	// DedupFresh means no record shares the title; the candidate may proceed.
	DedupFresh DedupStatus = iota
	// DedupFound means a record with the same title already exists.
	DedupFound
	// DedupError means the lookup itself failed.
	DedupError
)

// DedupResult carries the lookup outcome and, for DedupError, the cause.
type DedupResult struct {
	Status DedupStatus
	Err    error
}

// ContentStore is the pipeline's view of the news table.
type ContentStore interface {
	CheckTitle(ctx context.Context, title string) DedupResult
	InsertArticle(ctx context.Context, rec domain.ContentRecord) error
	Close() error
}
