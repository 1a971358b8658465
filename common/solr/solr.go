// Copyright (C) Solr Tools Contributors 2019-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package solr implements a generic connection to the collections of a Solr
// cluster, narrowed to the operations the tools need so tests can substitute
// their own engines.
package solr

import "fmt"

// CursorMarkStart is the cursor value that starts a paginated query from the
// beginning of its sorted result stream.
const CursorMarkStart = "*"

// Query describes one page request against a collection. Pagination state
// lives in the query value itself, so each caller must hold its own copy.
type Query struct {
	// Q is the main query string.
	Q string

	// FilterQueries restrict the result set without affecting scoring.
	FilterQueries []string

	// PartitionKeys names the field(s) a hash filter query partitions on.
	PartitionKeys string

	// Sort is the sort specification. Cursor pagination requires a total
	// order, so the sort must include the collection's unique key.
	Sort string

	// Rows is the page size.
	Rows int

	// CursorMark is the resume token for this page; CursorMarkStart for
	// the first page.
	CursorMark string
}

// Results holds one page of query results.
type Results struct {
	// Docs are the documents of this page, in sort order.
	Docs []Document

	// NumFound is the total number of documents matching the query.
	NumFound int64

	// NextCursorMark resumes pagination after this page. When it equals
	// the cursor mark that produced the page, the stream is exhausted.
	NextCursorMark string
}

// Client issues operations against a single collection. Implementations must
// be safe for concurrent use: every call keeps its state on its own stack so
// independent callers cannot corrupt each other's cursors or results.
type Client interface {
	// Query runs one page fetch and returns its results.
	Query(query Query) (*Results, error)

	// Add submits a document for indexing. The write is not durable or
	// visible until a Commit.
	Add(doc Document) error

	// Commit makes all previously added documents durable and visible to
	// subsequent queries.
	Commit() error

	// Close releases the client's resources. Only the owner of the client
	// may call it.
	Close()
}

// HashPartitionFilter returns the filter query that restricts results to the
// partition owned by one worker. The engine hashes the partition key of every
// document, so the partitions of all workers are disjoint and exhaustive.
func HashPartitionFilter(worker, totalWorkers int) string {
	return fmt.Sprintf("{!hash workers=%d worker=%d}", totalWorkers, worker)
}
