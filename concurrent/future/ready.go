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

// readyFuture is a Future that is immediately ready the first time it is polled.
type readyFuture struct {
	value  interface{}
	err    error
	polled bool
}

// Poll implements Future.
func (f *readyFuture) Poll(ctx *Context) (PollResult, error) {
	if f.polled {
		// Contract violation: a finished future must not be polled again.
		panic("future: Ready/Err future polled after completion")
	}
	f.polled = true

	if f.err != nil {
		return nil, f.err
	}
	return f.value, nil
}

// Ready creates a Future that resolves immediately to value the first time it is polled.
func Ready(value interface{}) Future {
	return &readyFuture{value: value}
}

// Err creates a Future that resolves immediately to err the first time it is polled.
func Err(err error) Future {
	return &readyFuture{err: err}
}
