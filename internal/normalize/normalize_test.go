package normalize

import "testing"

func TestToken(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in, want string
	}{
		{"Hello", "hello"},
		{"don't", "don't"},
		{"ice-breaker", "icebreaker"},
		{"U.S.A.", "usa"},
		{"“quoted”", "quoted"},
		{"co-operate", "cooperate"},
		{"  spaced  ", "spaced"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Token(c.in); got != c.want {
			t.Errorf("Token(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTokenIdempotent(t *testing.T) {
	t.Parallel()
	inputs := []string{"Hello,", "don't", "ice-breaker", "U.S.A.", "1912", "“Quoted”"}
	for _, in := range inputs {
		once := Token(in)
		twice := Token(once)
		if once != twice {
			t.Errorf("Token not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestTokenize(t *testing.T) {
	t.Parallel()
	got := Tokenize(`"Hello," he said, "world."`)
	want := []string{"hello", "he", "said", "world"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Tokenize()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTokenizeMatchesUnquoted(t *testing.T) {
	t.Parallel()
	a := Tokenize(`"Hello," he said, "world."`)
	b := Tokenize(`Hello, he said, world.`)
	if len(a) != len(b) {
		t.Fatalf("quoted tokenization diverges from unquoted: %v vs %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("token[%d]: %q != %q", i, a[i], b[i])
		}
	}
}

func TestIsNumeric(t *testing.T) {
	t.Parallel()
	if !IsNumeric("1912") {
		t.Error("expected 1912 to be numeric")
	}
	if IsNumeric("nineteen") {
		t.Error("expected nineteen to not be numeric")
	}
	if IsNumeric("") {
		t.Error("expected empty string to not be numeric")
	}
}
