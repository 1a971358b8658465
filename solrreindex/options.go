// Copyright (C) Solr Tools Contributors 2019-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package solrreindex

import (
	"github.com/pkg/errors"
	"github.com/solr-tools/solr-tools/common/options"
)

// Usage describes the basic usage of the solrreindex tool.
var Usage = `--host <hostname> --source <collection> --dest <collection> [options]

Copy every document of a source collection into a destination collection, partitioned across parallel workers.`

// ReindexOptions defines the set of options for configuring a reindex run.
type ReindexOptions struct {
	// Source is the collection documents are read from.
	Source string `short:"s" long:"source" value-name:"<collection>" description:"name of the source collection"`

	// Dest is the collection documents are written to.
	Dest string `short:"d" long:"dest" value-name:"<collection>" description:"name of the destination collection"`

	// NumWorkers is the number of partition workers copying in parallel.
	NumWorkers int `short:"n" long:"numWorkers" value-name:"<count>" default:"1" description:"number of partition workers copying in parallel (defaults to 1)"`
}

// Name returns a human-readable group name for reindex options.
func (*ReindexOptions) Name() string {
	return "reindex"
}

// Options contains all the possible options used to configure solrreindex.
type Options struct {
	*options.ToolOptions
	*ReindexOptions
}

// ParseOptions reads the command line arguments and returns the parsed
// options along with any positional arguments left over.
func ParseOptions(rawArgs []string, versionStr, gitCommit string) (Options, error) {
	toolOpts := options.New("solrreindex", versionStr, gitCommit, Usage,
		options.EnabledOptions{Auth: true, Connection: true})

	reindexOpts := &ReindexOptions{}
	toolOpts.AddOptions(reindexOpts)

	extraArgs, err := toolOpts.ParseArgs(rawArgs)
	if err != nil {
		return Options{}, err
	}
	if len(extraArgs) != 0 {
		return Options{}, errors.Errorf("too many positional arguments: %v", extraArgs)
	}

	return Options{toolOpts, reindexOpts}, nil
}
