// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import "sync"

// cleanupList collects teardown actions. They run exactly once, in reverse
// registration order, no matter whether the deferred call or a signal
// triggered shutdown path gets there first.
type cleanupList struct {
	mu    sync.Mutex
	once  sync.Once
	funcs []func()
}

func (c *cleanupList) add(f func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.funcs = append(c.funcs, f)
}

func (c *cleanupList) run() {
	c.once.Do(func() {
		c.mu.Lock()
		funcs := c.funcs
		c.mu.Unlock()

		for i := len(funcs) - 1; i >= 0; i-- {
			funcs[i]()
		}
	})
}
