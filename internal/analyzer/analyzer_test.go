package analyzer

import "testing"

// TestAnalyze tests word counting over various markup shapes.
func TestAnalyze(t *testing.T) {
	t.Parallel()

	a := New()

	tests := []struct {
		name   string
		markup string
		want   int
	}{
		{
			name:   "plain paragraph",
			markup: `<html><body><p>one two three</p></body></html>`,
			want:   3,
		},
		{
			name:   "script content is not counted",
			markup: `<html><body><p>visible words</p><script>var hidden = "not words";</script></body></html>`,
			want:   2,
		},
		{
			name:   "style content is not counted",
			markup: `<html><head><style>p { color: red; }</style></head><body>just these three</body></html>`,
			want:   3,
		},
		{
			name:   "noscript content is not counted",
			markup: `<html><body>shown<noscript>enable javascript please</noscript></body></html>`,
			want:   1,
		},
		{
			name:   "whitespace runs collapse",
			markup: "<html><body><p>one</p>\n\n\t<p>  two   three </p></body></html>",
			want:   3,
		},
		{
			name:   "empty document",
			markup: "",
			want:   0,
		},
		{
			name:   "text across nested elements",
			markup: `<div>alpha <span>beta</span> <a href="/x">gamma delta</a></div>`,
			want:   4,
		},
		{
			name:   "malformed markup is parsed best-effort",
			markup: `<html><body><p>broken <div>but still counted`,
			want:   4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := a.Analyze(tt.markup)
			if got.WordCount != tt.want {
				t.Errorf("expected %d words, got %d", tt.want, got.WordCount)
			}
		})
	}
}

// TestAnalyzeIdempotent verifies the analyzer is a pure function:
// analyzing the same markup twice yields identical counts.
func TestAnalyzeIdempotent(t *testing.T) {
	t.Parallel()

	a := New()
	markup := `<html><body><h1>Title</h1><p>some words here</p><script>x()</script></body></html>`

	first := a.Analyze(markup)
	second := a.Analyze(markup)

	if first.WordCount != second.WordCount {
		t.Errorf("word count changed between runs: %d then %d", first.WordCount, second.WordCount)
	}
}

// TestAnalyzeMeasuresElapsed verifies analysis time is reported.
func TestAnalyzeMeasuresElapsed(t *testing.T) {
	t.Parallel()

	a := New()
	got := a.Analyze(`<html><body><p>words</p></body></html>`)

	if got.Elapsed < 0 {
		t.Errorf("expected non-negative elapsed time, got %v", got.Elapsed)
	}
}
