// Copyright (C) Solr Tools Contributors 2019-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package progress

import "sync/atomic"

// Progressor can be implemented to allow an object to hook up to a progress.Bar.
type Progressor interface {
	// Progress returns a pair of integers: the amount completed and the total
	// amount to reach 100%. This method is called by progress.Bar to determine
	// what percentage to display.
	Progress() (current, max int64)
}

// Updateable is an interface which exposes the ability for a progressing
// value to be incremented, or reset.
type Updateable interface {
	// Inc increments the current progress counter by the given amount.
	Inc(amount int64)

	// Set resets the progress counter to the given amount.
	Set(amount int64)
}

// Counter is an implementation of Progressor, which is thread-safe.
type Counter struct {
	max     int64
	current int64
}

// NewCounter constructs a Counter with the given maximum.
func NewCounter(max int64) *Counter {
	return &Counter{max: max}
}

// Inc increments the counter's current value by the given amount.
func (c *Counter) Inc(amount int64) {
	atomic.AddInt64(&c.current, amount)
}

// Set sets the counter's current value.
func (c *Counter) Set(amount int64) {
	atomic.StoreInt64(&c.current, amount)
}

// Progress returns the current and maximum values of the counter.
func (c *Counter) Progress() (int64, int64) {
	return atomic.LoadInt64(&c.current), c.max
}
