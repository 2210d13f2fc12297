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

// A PollResult indicates whether a value is available or not.
type PollResult interface{}

// pollPendingResult serves as type for PollResultPending.
type pollPendingResult int

// IsReady implements PollResult.
func (pollPendingResult) IsReady() bool {
	return false
}

// pollResult implements PollResult.
func (pollPendingResult) pollResult() {}

// PollResultPending is a special value which will be recognized by executor to indicate that value
// of the future is not ready yet.
const PollResultPending = pollPendingResult(0)

// streamNoneResult serves as type for StreamResultNone.
type streamNoneResult int

// IsReady implements PollResult. A terminated stream is considered "ready" -- its caller should
// stop polling, not retry.
func (streamNoneResult) IsReady() bool {
	return true
}

func (streamNoneResult) pollResult() {}

// StreamResultNone is returned by Stream.PollNext to indicate the stream is exhausted. It is
// terminal: the stream must not be polled again once this value has been observed.
const StreamResultNone = streamNoneResult(0)
