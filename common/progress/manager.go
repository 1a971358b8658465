// Copyright (C) Solr Tools Contributors 2019-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package progress

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Manager handles thread-safe attaching and detaching of progress bar
// watches on namespaces.
type Manager interface {
	Attach(name string, progressor Progressor)
	Detach(name string)
}

// BarWriter implements Manager. It periodically prints the status of every
// bar attached to it on separate lines of the same writer.
type BarWriter struct {
	sync.Mutex

	writer    io.Writer
	waitTime  time.Duration
	barLength int

	bars     []*Bar
	stopChan chan struct{}
}

// NewBarWriter returns an initialized BarWriter with the given bar length,
// which writes to the given writer every waitTime.
func NewBarWriter(w io.Writer, waitTime time.Duration, barLength int) *BarWriter {
	return &BarWriter{
		writer:    w,
		waitTime:  waitTime,
		barLength: barLength,
	}
}

// Attach registers the given progressor with the manager under the given name.
func (manager *BarWriter) Attach(name string, progressor Progressor) {
	pb := &Bar{
		Name:      name,
		BarLength: manager.barLength,
		Watching:  progressor,
	}

	manager.Lock()
	defer manager.Unlock()
	manager.bars = append(manager.bars, pb)
}

// Detach removes the progressor with the given name from the manager. Insert
// order is preserved for consistent ordering of the printed bars.
func (manager *BarWriter) Detach(name string) {
	manager.Lock()
	defer manager.Unlock()

	updatedBars := make([]*Bar, 0, len(manager.bars))
	for _, bar := range manager.bars {
		if bar.Name != name {
			updatedBars = append(updatedBars, bar)
		}
	}

	manager.bars = updatedBars
}

// Start kicks off a goroutine that periodically renders all attached bars.
func (manager *BarWriter) Start() {
	if manager.writer == nil {
		panic("Cannot use a progress.BarWriter with an unset Writer")
	}
	manager.stopChan = make(chan struct{})

	go manager.start()
}

func (manager *BarWriter) start() {
	if manager.waitTime <= 0 {
		manager.waitTime = DefaultWaitTime
	}
	ticker := time.NewTicker(manager.waitTime)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			manager.renderAllBars()
		case <-manager.stopChan:
			return
		}
	}
}

// Stop ends the goroutine behind Start.
func (manager *BarWriter) Stop() {
	close(manager.stopChan)
}

// renderAllBars writes each bar on its own line, followed by a trailing
// newline when more than one bar is being tracked, to keep the multi-bar
// grids visually separated.
func (manager *BarWriter) renderAllBars() {
	manager.Lock()
	defer manager.Unlock()

	for _, bar := range manager.bars {
		//nolint:errcheck
		manager.writer.Write([]byte(bar.renderString() + "\n"))
	}
	if len(manager.bars) > 1 {
		//nolint:errcheck
		fmt.Fprintln(manager.writer)
	}
}
