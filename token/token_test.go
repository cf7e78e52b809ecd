package token

import "testing"

// newTestTiktoken skips the test when the encoding table is not available
// (first use downloads it).
func newTestTiktoken(t *testing.T) *Tiktoken {
	t.Helper()
	codec, err := NewTiktoken()
	if err != nil {
		t.Skipf("cl100k_base encoding unavailable: %v", err)
	}
	return codec
}

func Test_Tiktoken_RoundTrip(t *testing.T) {
	codec := newTestTiktoken(t)

	for _, text := range []string{
		"hello world",
		"func main() {\n\tfmt.Println(\"hi\")\n}\n",
		"multi\nline\ntext with  spaces",
	} {
		if got := codec.Decode(codec.Encode(text)); got != text {
			t.Errorf("round trip mismatch:\n in: %q\nout: %q", text, got)
		}
	}
}

func Test_Tiktoken_CountMatchesEncodeLength(t *testing.T) {
	codec := newTestTiktoken(t)

	text := "the quick brown fox jumps over the lazy dog"
	if codec.Count(text) != len(codec.Encode(text)) {
		t.Error("Count must equal len(Encode)")
	}
	if codec.Count("") != 0 {
		t.Error("empty text must count zero tokens")
	}
}

func Test_Tiktoken_PrefixDecodeIsTextPrefix(t *testing.T) {
	codec := newTestTiktoken(t)

	text := "A directory tree:\nroot/\n  src/\n    main.go\n"
	ids := codec.Encode(text)
	if len(ids) < 4 {
		t.Skip("text too short for a meaningful prefix")
	}
	prefix := codec.Decode(ids[:len(ids)/2])
	if len(prefix) == 0 || prefix != text[:len(prefix)] {
		t.Errorf("decoded prefix is not a text prefix: %q", prefix)
	}
}
