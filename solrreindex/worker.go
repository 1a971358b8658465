// Copyright (C) Solr Tools Contributors 2019-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package solrreindex

import (
	"fmt"

	"github.com/solr-tools/solr-tools/common/log"
	"github.com/solr-tools/solr-tools/common/progress"
	"github.com/solr-tools/solr-tools/common/solr"
)

// partitionWorker copies one hash partition of the source collection. Each
// worker owns a disjoint slice of the document space, so workers never see
// each other's documents and need no coordination beyond the final join.
type partitionWorker struct {
	id           int
	totalWorkers int
	source       string

	readClient  solr.Client
	writeClient solr.Client
	manager     progress.Manager

	// docsCopied and err are written by run and read by the coordinator
	// only after the join, so they need no synchronization.
	docsCopied int64
	err        error
}

// run copies the worker's partition, recording any failure on the worker
// rather than propagating it.
func (w *partitionWorker) run() {
	log.Logvf(log.DebugLow, "worker %v starting on partition %v of %v",
		w.id, w.id, w.totalWorkers)

	if err := w.copyPartition(); err != nil {
		w.err = err
		log.Logvf(log.Always, "worker %v failed after copying %v documents: %v",
			w.id, w.docsCopied, err)
		return
	}

	log.Logvf(log.DebugLow, "worker %v finished, copied %v documents",
		w.id, w.docsCopied)
}

// copyPartition walks the worker's partition with a cursor and writes every
// document to the destination, committing once at the end. The cursor has
// reached the end of the partition when the server echoes back the cursor
// it was given.
func (w *partitionWorker) copyPartition() error {
	query := solr.Query{
		Q:             "*:*",
		FilterQueries: []string{solr.HashPartitionFilter(w.id, w.totalWorkers)},
		PartitionKeys: solr.IDField,
		Sort:          fmt.Sprintf("%s asc", solr.IDField),
		Rows:          pageSize,
		CursorMark:    solr.CursorMarkStart,
	}

	var counter *progress.Counter
	for {
		results, err := w.readClient.Query(query)
		if err != nil {
			return err
		}

		if counter == nil && w.manager != nil {
			counter = progress.NewCounter(results.NumFound)
			barName := fmt.Sprintf("%s (worker %v)", w.source, w.id)
			w.manager.Attach(barName, counter)
			defer w.manager.Detach(barName)
		}

		for _, doc := range results.Docs {
			log.Logvf(log.DebugHigh, "worker %v copying document %v", w.id, doc.ID())
			doc.Remove(solr.VersionField)
			if err := w.writeClient.Add(doc); err != nil {
				return err
			}
			w.docsCopied++
			if counter != nil {
				counter.Inc(1)
			}
		}

		if results.NextCursorMark == query.CursorMark {
			break
		}
		query.CursorMark = results.NextCursorMark
	}

	return w.writeClient.Commit()
}
