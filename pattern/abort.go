// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package pattern

import "sync/atomic"

// AbortSignal is polled by long searches. It may be set from another
// goroutine.
type AbortSignal struct {
	flag atomic.Bool
}

// Set raises or clears the signal.
func (a *AbortSignal) Set(v bool) { a.flag.Store(v) }

// Aborted reports whether the signal is raised. A nil signal never is.
func (a *AbortSignal) Aborted() bool { return a != nil && a.flag.Load() }
