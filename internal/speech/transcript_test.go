package speech

import "testing"

func intPtr(v int) *int { return &v }

func positional(sn int, text string) *messageResult {
	return &messageResult{
		SN: intPtr(sn),
		WS: []resultSegment{{CW: []resultWord{{W: text}}}},
	}
}

func TestTranscriptOrderedConcat(t *testing.T) {
	b := newTranscriptBuilder()
	b.apply(positional(3, "C"))
	b.apply(positional(1, "A"))
	b.apply(positional(2, "B"))

	if got := b.text(); got != "ABC" {
		t.Errorf("expected ABC, got %q", got)
	}
}

func TestTranscriptReplaceDirective(t *testing.T) {
	b := newTranscriptBuilder()
	b.apply(positional(1, "A"))
	b.apply(positional(2, "B"))
	b.apply(positional(3, "C"))
	b.apply(positional(4, "D"))

	rpl := positional(2, "XY")
	rpl.PGS = "rpl"
	rpl.RG = []int{2, 3}
	b.apply(rpl)

	if got := b.text(); got != "AXYD" {
		t.Errorf("expected AXYD after replace, got %q", got)
	}
}

func TestTranscriptFallbackOnlyWhenEmpty(t *testing.T) {
	b := newTranscriptBuilder()

	fallback := &messageResult{WS: []resultSegment{{CW: []resultWord{{W: "guess"}}}}}
	b.apply(fallback)
	if got := b.text(); got != "guess" {
		t.Errorf("expected fallback text, got %q", got)
	}

	b.apply(positional(1, "real"))
	if got := b.text(); got != "real" {
		t.Errorf("expected positional text to win, got %q", got)
	}

	late := &messageResult{WS: []resultSegment{{CW: []resultWord{{W: "corrupt"}}}}}
	b.apply(late)
	if got := b.text(); got != "real" {
		t.Errorf("non-positional fragment corrupted positional transcript: %q", got)
	}
}

func TestTranscriptIgnoresEmptyFragments(t *testing.T) {
	b := newTranscriptBuilder()
	b.apply(positional(1, "A"))
	b.apply(&messageResult{SN: intPtr(2)}) // no segments
	if got := b.text(); got != "A" {
		t.Errorf("expected A, got %q", got)
	}
}

func TestFinalChoice(t *testing.T) {
	cases := []struct {
		name       string
		finalText  string
		reconciled string
		want       string
	}{
		{"final longer wins", "打车三十五元整", "打车三十五", "打车三十五元整"},
		{"equal length keeps final", "ABC", "XYZ", "ABC"},
		{"reconciled longer wins", "短", "更长的转写", "更长的转写"},
		{"empty final keeps reconciled", "", "有内容", "有内容"},
		{"both empty", "", "", ""},
		{"whitespace-only final loses", "   ", "文本", "文本"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := finalChoice(tc.finalText, tc.reconciled); got != tc.want {
				t.Errorf("finalChoice(%q, %q) = %q, want %q", tc.finalText, tc.reconciled, got, tc.want)
			}
		})
	}
}

func TestSegmentTextConcatenatesSubWords(t *testing.T) {
	segments := []resultSegment{
		{CW: []resultWord{{W: "今天"}, {W: "打车"}}},
		{CW: []resultWord{{W: "35"}, {W: "元"}}},
	}
	if got := segmentText(segments); got != "今天打车35元" {
		t.Errorf("unexpected concatenation: %q", got)
	}
}
