// Copyright (C) Solr Tools Contributors 2019-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package progress exposes utilities to asynchronously monitor and display
// processing progress.
package progress

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Bar rendering characters.
const (
	BarFilling = "#"
	BarEmpty   = "."
	BarLeft    = "["
	BarRight   = "]"
)

// DefaultWaitTime is the default amount of time to wait between writes.
const DefaultWaitTime = 3 * time.Second

// Bar is a tool for concurrently monitoring the progress
// of a task with a simple linear ASCII visualization
type Bar struct {
	// Name is an identifier printed along with the bar
	Name string

	// BarLength is the number of characters used to print the bar
	BarLength int

	// Watching is the object that implements the Progressor to expose the
	// values necessary for calculation
	Watching Progressor

	// Writer is where the Bar is written out to
	Writer io.Writer

	// WaitTime is the time to wait between writing the bar
	WaitTime time.Duration

	stopChan     chan struct{}
	stopChanSync chan struct{}
	isStarted    bool
	isStopped    bool
}

// Start starts the Bar goroutine. Once Start is called, a bar will be written
// to the given Writer at regular intervals. The goroutine can only be stopped
// manually using the Stop() method. The Bar must be set up before calling this.
// Panics if Start has already been called.
func (pb *Bar) Start() {
	pb.validate()
	pb.isStarted = true

	pb.stopChan = make(chan struct{})
	pb.stopChanSync = make(chan struct{})
	go pb.start()
}

// validate does a set of sanity checks against the progress bar, and panics
// if the bar is unfit for use.
func (pb *Bar) validate() {
	if pb.Watching == nil {
		panic("Cannot use a progress.Bar with a nil Watching")
	}
	if pb.Writer == nil {
		panic("Cannot use a progress.Bar with a nil Writer")
	}
	if pb.isStarted {
		panic("progress.Bar was already started")
	}
	if pb.isStopped {
		panic("progress.Bar was already stopped")
	}
}

// Stop kills the Bar goroutine, stopping it from writing.
// Generally called as
//
//	myBar.Start()
//	defer myBar.Stop()
//
// to stop leakage.
// Panics if Stop has already been called.
func (pb *Bar) Stop() {
	if pb.isStopped {
		panic("progress.Bar was already stopped")
	}
	close(pb.stopChan)
	// wait for the final render to complete before returning
	<-pb.stopChanSync
	pb.isStopped = true
}

func (pb *Bar) start() {
	if pb.WaitTime <= 0 {
		pb.WaitTime = DefaultWaitTime
	}
	ticker := time.NewTicker(pb.WaitTime)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pb.renderToWriter()
		case <-pb.stopChan:
			// the final render on stop makes the bar's completed state visible
			pb.renderToWriter()
			close(pb.stopChanSync)
			return
		}
	}
}

// renderToWriter writes the bar to the Bar's writer in a single Write call.
func (pb *Bar) renderToWriter() {
	//nolint:errcheck
	pb.Writer.Write([]byte(pb.renderString()))
}

func (pb *Bar) renderString() string {
	current, max := pb.Watching.Progress()
	if max <= 0 {
		// no max amount is known, so just render the count
		return fmt.Sprintf("%v\t%v", pb.Name, current)
	}
	percent := float64(current) / float64(max)
	return fmt.Sprintf("%v %v %v/%v (%2.1f%%)",
		pb.Name,
		drawBar(pb.BarLength, percent),
		current,
		max,
		percent*100,
	)
}

// drawBar returns a drawn progress bar of a given width, with the given
// percentage filled, clamped to [0%, 100%].
func drawBar(width int, percent float64) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 1 {
		percent = 1
	}
	fillWidth := int(percent * float64(width))
	emptyWidth := width - fillWidth
	return BarLeft +
		strings.Repeat(BarFilling, fillWidth) +
		strings.Repeat(BarEmpty, emptyWidth) +
		BarRight
}
