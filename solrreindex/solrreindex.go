// Copyright (C) Solr Tools Contributors 2019-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package solrreindex copies every document of one collection into another,
// spreading the work across hash-partitioned parallel workers.
package solrreindex

import (
	"time"

	"github.com/pkg/errors"
	"github.com/solr-tools/solr-tools/common/log"
	"github.com/solr-tools/solr-tools/common/options"
	"github.com/solr-tools/solr-tools/common/progress"
	"github.com/solr-tools/solr-tools/common/solr"
	"gopkg.in/tomb.v2"
)

// pageSize is the fixed number of documents fetched per page. It bounds
// per-request memory; it has no effect on which documents are copied.
const pageSize = 50

// SolrReindex is a container for the user-specified options and internal
// state used for running solrreindex.
type SolrReindex struct {
	// generic solr tool options
	ToolOptions *options.ToolOptions

	// reindex-specific options
	ReindexOptions *ReindexOptions

	// ReadClient is bound to the source collection. If unset, Reindex
	// connects one using ToolOptions.
	ReadClient solr.Client

	// WriteClient is bound to the destination collection. If unset,
	// Reindex connects one using ToolOptions.
	WriteClient solr.Client

	// ProgressManager may be set to report per-partition copy progress.
	ProgressManager progress.Manager
}

// WorkerResult reports the outcome of a single partition worker.
type WorkerResult struct {
	// Worker is the worker's partition index.
	Worker int

	// DocsCopied is the number of documents the worker submitted to the
	// destination before finishing or failing.
	DocsCopied int64

	// Err is the error that ended the worker early, or nil. A worker
	// that fails does not retry and does not roll back documents it
	// already wrote.
	Err error
}

// Result aggregates the outcome of every partition worker of a run.
type Result struct {
	Workers []WorkerResult
}

// DocsCopied returns the total number of documents submitted across all
// workers.
func (r *Result) DocsCopied() int64 {
	var total int64
	for _, worker := range r.Workers {
		total += worker.DocsCopied
	}
	return total
}

// Failed returns the results of the workers that ended with an error.
func (r *Result) Failed() []WorkerResult {
	var failed []WorkerResult
	for _, worker := range r.Workers {
		if worker.Err != nil {
			failed = append(failed, worker)
		}
	}
	return failed
}

// ValidateSettings returns an error if the reindex is misconfigured. It runs
// before any connection is attempted.
func (sr *SolrReindex) ValidateSettings() error {
	if sr.ReindexOptions == nil {
		return errors.New("no reindex options specified")
	}
	if sr.ReindexOptions.Source == "" {
		return errors.New("must specify a source collection with --source")
	}
	if sr.ReindexOptions.Dest == "" {
		return errors.New("must specify a destination collection with --dest")
	}
	if sr.ReindexOptions.NumWorkers < 1 {
		return errors.Errorf("--numWorkers must be at least 1, got %v",
			sr.ReindexOptions.NumWorkers)
	}
	if sr.ReadClient == nil || sr.WriteClient == nil {
		if sr.ToolOptions == nil || sr.ToolOptions.Host == "" {
			return errors.New("must specify at least one host with --host")
		}
	}
	return nil
}

// Connect establishes the read client against the source collection and the
// write client against the destination collection. Clients that were
// pre-assigned are kept as-is; with both pre-assigned no options are needed
// and nothing is dialed.
func (sr *SolrReindex) Connect() error {
	if sr.ReadClient != nil && sr.WriteClient != nil {
		return nil
	}

	timeout := time.Duration(sr.ToolOptions.Timeout) * time.Second

	if sr.ReadClient == nil {
		readClient, err := solr.NewCloudClient(solr.ClientOptions{
			Addresses:  sr.ToolOptions.Addresses(),
			Collection: sr.ReindexOptions.Source,
			Timeout:    timeout,
			Username:   sr.ToolOptions.Auth.Username,
			Password:   sr.ToolOptions.Auth.Password,
		})
		if err != nil {
			return errors.Wrap(err, "error connecting to source collection")
		}
		sr.ReadClient = readClient
	}

	if sr.WriteClient == nil {
		writeClient, err := solr.NewCloudClient(solr.ClientOptions{
			Addresses:  sr.ToolOptions.Addresses(),
			Collection: sr.ReindexOptions.Dest,
			Timeout:    timeout,
			Username:   sr.ToolOptions.Auth.Username,
			Password:   sr.ToolOptions.Auth.Password,
		})
		if err != nil {
			sr.ReadClient.Close()
			sr.ReadClient = nil
			return errors.Wrap(err, "error connecting to destination collection")
		}
		sr.WriteClient = writeClient
	}

	return nil
}

// Close releases both clients. Workers only ever borrow them, so this is the
// single place they are closed.
func (sr *SolrReindex) Close() {
	if sr.ReadClient != nil {
		sr.ReadClient.Close()
		sr.ReadClient = nil
	}
	if sr.WriteClient != nil {
		sr.WriteClient.Close()
		sr.WriteClient = nil
	}
}

// Reindex copies the source collection into the destination collection and
// returns the per-worker results. Worker errors do not fail the run; they
// are recorded on the result and leave that partition partially copied. The
// returned error covers configuration and connection failures only.
func (sr *SolrReindex) Reindex() (*Result, error) {
	if err := sr.ValidateSettings(); err != nil {
		return nil, errors.Wrap(err, "error validating settings")
	}
	if err := sr.Connect(); err != nil {
		return nil, err
	}

	numWorkers := sr.ReindexOptions.NumWorkers
	log.Logvf(log.Info, "spawning %v partition workers for %v",
		numWorkers, sr.ReindexOptions.Source)

	workers := make([]*partitionWorker, numWorkers)
	for i := 0; i < numWorkers; i++ {
		workers[i] = &partitionWorker{
			id:           i,
			totalWorkers: numWorkers,
			source:       sr.ReindexOptions.Source,
			readClient:   sr.ReadClient,
			writeClient:  sr.WriteClient,
			manager:      sr.ProgressManager,
		}
	}

	// All workers are spawned from inside one tracked goroutine, so the
	// tomb stays alive for the whole fan-out even if an early worker
	// finishes before the later ones are registered.
	var workerTomb tomb.Tomb
	workerTomb.Go(func() error {
		for _, worker := range workers {
			worker := worker
			workerTomb.Go(func() error {
				// a failed worker only abandons its own partition,
				// so never pass its error to the tomb
				worker.run()
				return nil
			})
		}
		return nil
	})

	// join barrier: every worker has terminated once Wait returns
	if err := workerTomb.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Workers: make([]WorkerResult, numWorkers)}
	for i, worker := range workers {
		result.Workers[i] = WorkerResult{
			Worker:     worker.id,
			DocsCopied: worker.docsCopied,
			Err:        worker.err,
		}
	}
	return result, nil
}
