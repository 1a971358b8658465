// Copyright (C) Solr Tools Contributors 2019-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Main package for the solrreindex tool.
package main

import (
	"os"
	"time"

	"github.com/solr-tools/solr-tools/common/log"
	"github.com/solr-tools/solr-tools/common/password"
	"github.com/solr-tools/solr-tools/common/progress"
	"github.com/solr-tools/solr-tools/common/signals"
	"github.com/solr-tools/solr-tools/common/util"
	"github.com/solr-tools/solr-tools/solrreindex"
)

const (
	progressBarLength   = 24
	progressBarWaitTime = time.Second
)

var (
	VersionStr = "built-without-version-string"
	GitCommit  = "build-without-git-commit"
)

func main() {
	opts, err := solrreindex.ParseOptions(os.Args[1:], VersionStr, GitCommit)
	if err != nil {
		log.Logvf(log.Always, "error parsing command line options: %v", err)
		log.Logvf(log.Always, "try 'solrreindex --help' for more information")
		os.Exit(util.ExitBadOptions)
	}

	log.SetVerbosity(opts.Verbosity)
	signals.Handle()

	// print help, if specified
	if opts.PrintHelp(false) {
		return
	}

	// print version, if specified
	if opts.PrintVersion() {
		return
	}

	// ask for the password if a username was given without one
	if opts.Auth.Username != "" && opts.Auth.Password == "" {
		pass, err := password.Prompt()
		if err != nil {
			log.Logvf(log.Always, "error reading password: %v", err)
			os.Exit(util.ExitError)
		}
		opts.Auth.Password = pass
	}

	progressManager := progress.NewBarWriter(log.Writer(0), progressBarWaitTime, progressBarLength)
	progressManager.Start()
	defer progressManager.Stop()

	reindexer := solrreindex.SolrReindex{
		ToolOptions:     opts.ToolOptions,
		ReindexOptions:  opts.ReindexOptions,
		ProgressManager: progressManager,
	}
	defer reindexer.Close()

	if err = reindexer.ValidateSettings(); err != nil {
		log.Logvf(log.Always, "error validating settings: %v", err)
		log.Logvf(log.Always, "try 'solrreindex --help' for more information")
		os.Exit(util.ExitBadOptions)
	}

	if err = reindexer.Connect(); err != nil {
		log.Logvf(log.Always, "%v", err)
		os.Exit(util.ExitError)
	}

	log.Logvf(log.Always, "reindexing %v into %v with %v worker(s)",
		opts.Source, opts.Dest, opts.NumWorkers)

	result, err := reindexer.Reindex()
	if err != nil {
		log.Logvf(log.Always, "Failed: %v", err)
		os.Exit(util.ExitError)
	}

	numDocs := result.DocsCopied()
	if numDocs == 1 {
		log.Logvf(log.Always, "copied %v document", numDocs)
	} else {
		log.Logvf(log.Always, "copied %v documents", numDocs)
	}

	for _, failed := range result.Failed() {
		log.Logvf(log.Always, "worker %v did not finish its partition: %v",
			failed.Worker, failed.Err)
	}
}
