// Copyright (C) Solr Tools Contributors 2019-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package solrreindex

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/solr-tools/solr-tools/common/solr"
)

// fakeCollection is an in-memory solr.Client emulating the behavior the
// reindex depends on: hash partition filter queries, cursor pagination, and
// the add/commit visibility cycle. Its methods are safe for concurrent use.
type fakeCollection struct {
	mu sync.Mutex

	// docs is the committed, queryable content, sorted by unique key.
	docs []solr.Document

	// pending holds added documents that have not been committed yet.
	pending []solr.Document

	commits int
	queries int

	// failQueries and failAdds force the respective operations to error.
	failQueries bool
	failAdds    bool
}

var _ solr.Client = (*fakeCollection)(nil)

func newFakeCollection(docs ...solr.Document) *fakeCollection {
	sorted := append([]solr.Document{}, docs...)
	sort.Slice(sorted, func(i, j int) bool {
		return fmt.Sprintf("%v", sorted[i].ID()) < fmt.Sprintf("%v", sorted[j].ID())
	})
	return &fakeCollection{docs: sorted}
}

// partitionOf assigns a document id to one of totalWorkers partitions. The
// exact hash does not matter as long as it is stable, every id lands in
// exactly one partition, and the union of partitions is the whole collection.
func partitionOf(id interface{}, totalWorkers int) int {
	h := fnv.New32a()
	fmt.Fprintf(h, "%v", id)
	return int(h.Sum32() % uint32(totalWorkers))
}

func (f *fakeCollection) Query(query solr.Query) (*solr.Results, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failQueries {
		return nil, errors.New("injected query failure")
	}
	f.queries++

	matching := f.docs
	for _, fq := range query.FilterQueries {
		var workers, worker int
		if _, err := fmt.Sscanf(fq, "{!hash workers=%d worker=%d}", &workers, &worker); err != nil {
			return nil, errors.Errorf("unsupported filter query %q", fq)
		}
		if query.PartitionKeys != solr.IDField {
			return nil, errors.Errorf("hash filter without partitionKeys=%v", solr.IDField)
		}
		var partition []solr.Document
		for _, doc := range matching {
			if partitionOf(doc.ID(), workers) == worker {
				partition = append(partition, doc)
			}
		}
		matching = partition
	}

	// cursor marks encode the offset of the next unseen document; echoing
	// the caller's mark back signals an exhausted stream, like the real
	// engine does
	offset := 0
	if query.CursorMark != solr.CursorMarkStart {
		if _, err := fmt.Sscanf(query.CursorMark, "offset-%d", &offset); err != nil {
			return nil, errors.Errorf("bad cursor mark %q", query.CursorMark)
		}
	}
	if query.Sort == "" {
		return nil, errors.New("cursor pagination requires a sort")
	}

	end := offset + query.Rows
	if end > len(matching) {
		end = len(matching)
	}
	page := matching[offset:end]

	nextMark := query.CursorMark
	if len(page) > 0 {
		nextMark = fmt.Sprintf("offset-%d", end)
	}

	return &solr.Results{
		Docs:           append([]solr.Document{}, page...),
		NumFound:       int64(len(matching)),
		NextCursorMark: nextMark,
	}, nil
}

func (f *fakeCollection) Add(doc solr.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAdds {
		return errors.New("injected add failure")
	}
	f.pending = append(f.pending, append(solr.Document{}, doc...))
	return nil
}

func (f *fakeCollection) Commit() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.docs = append(f.docs, f.pending...)
	f.pending = nil
	f.commits++
	return nil
}

func (f *fakeCollection) Close() {}

func (f *fakeCollection) committedDocs() []solr.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]solr.Document{}, f.docs...)
}

func (f *fakeCollection) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries
}

func (f *fakeCollection) commitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commits
}

// sourceDocs builds n documents with zero-padded ids, a title, and an engine
// assigned version field.
func sourceDocs(n int) []solr.Document {
	docs := make([]solr.Document, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, solr.Document{
			{Name: solr.IDField, Value: fmt.Sprintf("doc-%04d", i)},
			{Name: "title", Value: fmt.Sprintf("title %d", i)},
			{Name: solr.VersionField, Value: json.Number(fmt.Sprintf("16494832033%02d", i))},
		})
	}
	return docs
}
