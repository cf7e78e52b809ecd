package token

import (
	"fmt"
	"strconv"

	"promptctx/notify"
)

// TruncationMarker is appended to context that was cut at the token budget.
const TruncationMarker = "\n--- Project context truncated due to token limit ---\n"

// Truncator cuts text to a token budget at the tokenizer level and reports
// the outcome through a notification sink.
type Truncator struct {
	codec    Codec
	notifier notify.Notifier
}

// NewTruncator creates a Truncator. The notifier receives user-facing
// messages about the final token count or the truncation event.
func NewTruncator(codec Codec, notifier notify.Notifier) *Truncator {
	return &Truncator{codec: codec, notifier: notifier}
}

// Truncate returns text cut to at most budget tokens. Text within budget is
// returned unchanged. When countOnly is true no marker is appended and no
// notification is sent; the result is used purely to measure.
func (t *Truncator) Truncate(text string, budget int, countOnly bool) string {
	ids := t.codec.Encode(text)
	if len(ids) <= budget {
		if !countOnly {
			t.notifier.Notify(fmt.Sprintf("Added. Project context %s tokens", FormatCount(len(ids))))
		}
		return text
	}

	if !countOnly {
		t.notifier.Notify(fmt.Sprintf(
			"Project context truncated due to token limit, was %s tokens but limit is %s tokens. "+
				"You can exclude directories or files in the settings.",
			FormatCount(len(ids)), FormatCount(budget)))
	}

	truncated := t.codec.Decode(ids[:budget])
	if countOnly {
		return truncated
	}
	return truncated + TruncationMarker
}

// FormatCount renders n with comma grouping, e.g. 1234567 -> "1,234,567".
func FormatCount(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		return s
	}
	if len(s) <= 3 {
		return s
	}
	var out []byte
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
