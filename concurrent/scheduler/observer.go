/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package scheduler

// Observer receives notifications on scheduler state transitions. Implementations must return
// quickly and must not call back into the scheduler that invoked them. Hooks fire only on
// enqueue/completion/close transitions, never once per poll, so an Observer never sits on the
// steady-state task-driving path.
type Observer interface {
	// OnTaskEnqueued fires each time Submit accepts a new task.
	OnTaskEnqueued()

	// OnTaskCompleted fires each time a task's Poll returns a final value or error.
	OnTaskCompleted()

	// OnClosed fires once, the first time Close transitions the scheduler out of its open state.
	OnClosed()
}

type noopObserver struct{}

func (noopObserver) OnTaskEnqueued()  {}
func (noopObserver) OnTaskCompleted() {}
func (noopObserver) OnClosed()        {}

var defaultObserver Observer = noopObserver{}
