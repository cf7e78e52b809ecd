// Package token provides exact token counting and token-level truncation
// for assembled project context, using the cl100k_base BPE encoding.
package token

import (
	"fmt"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Codec counts and converts between text and token ids. Decoding a prefix
// of an encoding yields a valid text prefix, which is what budget
// truncation relies on.
type Codec interface {
	Count(text string) int
	Encode(text string) []int
	Decode(ids []int) string
}

// Tiktoken is a Codec backed by the cl100k_base encoding.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken loads the cl100k_base encoding table.
func NewTiktoken() (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("loading cl100k_base encoding: %w", err)
	}
	return &Tiktoken{enc: enc}, nil
}

// Count returns the number of tokens in text.
func (t *Tiktoken) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// Encode converts text to token ids.
func (t *Tiktoken) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

// Decode converts token ids back to text.
func (t *Tiktoken) Decode(ids []int) string {
	return t.enc.Decode(ids)
}
