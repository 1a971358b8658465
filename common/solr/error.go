// Copyright (C) Solr Tools Contributors 2019-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package solr

import "fmt"

// ConnectionError reports that a client could not be constructed, either
// because no host was reachable or because the collection does not exist.
type ConnectionError struct {
	Collection string
	Err        error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("error connecting to collection %q: %v", e.Collection, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError reports a failed page fetch.
type QueryError struct {
	Collection string
	Err        error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("error querying collection %q: %v", e.Collection, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// WriteError reports a failed document submission.
type WriteError struct {
	Collection string
	Err        error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("error writing to collection %q: %v", e.Collection, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// CommitError reports a failed commit.
type CommitError struct {
	Collection string
	Err        error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("error committing collection %q: %v", e.Collection, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }
