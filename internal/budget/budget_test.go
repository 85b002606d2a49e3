package budget

import "testing"

func TestEstimateTokensFromChars(t *testing.T) {
	cases := []struct {
		chars int
		want  int
	}{
		{0, 0},
		{-5, 0},
		{1, 1},
		{4, 1},
		{5, 2},
		{4000, 1000},
	}
	for _, c := range cases {
		if got := EstimateTokensFromChars(c.chars); got != c.want {
			t.Errorf("EstimateTokensFromChars(%d) = %d, want %d", c.chars, got, c.want)
		}
	}
}

func TestEstimateTokens_CountsRunes(t *testing.T) {
	// 8 runes, 16 bytes
	if got := EstimateTokens("ääääääää"); got != 2 {
		t.Fatalf("EstimateTokens = %d, want 2", got)
	}
}

func TestModelContextTokens(t *testing.T) {
	cases := map[string]int{
		"gpt-4o-mini":       128_000,
		"gemini-2.5-flash":  1_000_000,
		"claude-sonnet-4-5": 200_000,
		"GPT-3.5-Turbo":     16_384,
		"some-local-model":  8192,
		"":                  8192,
	}
	for name, want := range cases {
		if got := ModelContextTokens(name); got != want {
			t.Errorf("ModelContextTokens(%q) = %d, want %d", name, got, want)
		}
	}
}

func TestFitsInContext(t *testing.T) {
	if !FitsInContext("gpt-4o", 1024, 2000) {
		t.Fatalf("small prompt should fit")
	}
	// 8192 - 512 headroom - 1024 output leaves 6656
	if FitsInContext("unknown", 1024, 6656) {
		t.Fatalf("prompt filling the remainder must not fit")
	}
	if !FitsInContext("unknown", 1024, 6655) {
		t.Fatalf("prompt one below the remainder should fit")
	}
}
