// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanupListRunsOnce(t *testing.T) {
	var calls []int

	list := &cleanupList{}
	list.add(func() { calls = append(calls, 1) })
	list.add(func() { calls = append(calls, 2) })

	list.run()
	list.run()

	assert.Equal(t, []int{2, 1}, calls)
}

func TestCleanupListConcurrentRun(t *testing.T) {
	counter := 0

	list := &cleanupList{}
	list.add(func() { counter++ })

	var wg sync.WaitGroup

	for range 4 {
		wg.Add(1)

		go func() {
			defer wg.Done()
			list.run()
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, counter)
}
