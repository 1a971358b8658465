// Copyright (C) Solr Tools Contributors 2019-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package signals handles termination signals for the tools.
package signals

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/solr-tools/solr-tools/common/log"
	"github.com/solr-tools/solr-tools/common/util"
)

// Handle starts a goroutine which listens for termination signals and exits
// the process when one is received. It returns a channel that can be closed
// to stop listening.
func Handle() chan struct{} {
	return HandleWithInterrupt(nil)
}

// HandleWithInterrupt is like Handle, but runs the given cleanup function
// before exiting when a signal is received.
func HandleWithInterrupt(cleanup func()) chan struct{} {
	finishedChan := make(chan struct{})
	go handleSignals(cleanup, finishedChan)
	return finishedChan
}

func handleSignals(cleanup func(), finishedChan chan struct{}) {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		log.Logvf(log.Always, "signal '%s' received; forcefully terminating", sig)
		if cleanup != nil {
			cleanup()
		}
		os.Exit(util.ExitKill)
	case <-finishedChan:
	}
}
