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

package future

// select2 implements the Future returned by Select. It is the building block external
// combinators use to race a cancellable operation against a timer or other completion signal:
// whichever input future reports ready first wins, the loser is simply never polled again.
type select2 struct {
	a, b   Future
	aDone  bool
	bDone  bool
}

// SelectResult carries the winner's index (0 for the first future passed to Select, 1 for the
// second) alongside its value.
type SelectResult struct {
	Index int
	Value interface{}
}

// Poll implements Future.
func (f *select2) Poll(ctx *Context) (PollResult, error) {
	if !f.aDone {
		result, err := f.a.Poll(ctx)
		if err != nil {
			return nil, err
		}
		if result != PollResultPending {
			f.aDone = true
			return SelectResult{Index: 0, Value: result}, nil
		}
	}

	if !f.bDone {
		result, err := f.b.Poll(ctx)
		if err != nil {
			return nil, err
		}
		if result != PollResultPending {
			f.bDone = true
			return SelectResult{Index: 1, Value: result}, nil
		}
	}

	return PollResultPending, nil
}

// Select creates a Future that resolves as soon as either a or b does, reporting which one won.
// The loser is left unpolled; if it still needs to run to completion (e.g. to release resources)
// the caller is responsible for driving it separately.
func Select(a, b Future) Future {
	return &select2{a: a, b: b}
}
