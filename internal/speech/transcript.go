package speech

import (
	"sort"
	"strings"
)

// transcriptBuilder reconciles incremental recognizer results into a running
// transcript. Fragments are keyed by the server-assigned sequence number; a
// replace directive ("pgs":"rpl") deletes the contiguous span named by its
// "rg" range before the new fragment is inserted, modeling server-side
// correction of earlier hypotheses.
type transcriptBuilder struct {
	segments map[int]string
	fallback string
}

func newTranscriptBuilder() *transcriptBuilder {
	return &transcriptBuilder{segments: make(map[int]string)}
}

// apply folds one result into the builder. Results without a sequence number
// are kept only as a non-positional fallback and never disturb a reconciled
// positional transcript.
func (b *transcriptBuilder) apply(res *messageResult) {
	if res == nil {
		return
	}

	text := segmentText(res.WS)
	if text == "" {
		return
	}

	if res.SN == nil {
		if len(b.segments) == 0 {
			b.fallback = text
		}
		return
	}

	if res.PGS == "rpl" && len(res.RG) == 2 {
		for sn := res.RG[0]; sn <= res.RG[1]; sn++ {
			delete(b.segments, sn)
		}
	}
	b.segments[*res.SN] = text
}

// text recomputes the running transcript by concatenating the remaining
// fragments in ascending sequence order.
func (b *transcriptBuilder) text() string {
	if len(b.segments) == 0 {
		return b.fallback
	}

	keys := make([]int, 0, len(b.segments))
	for sn := range b.segments {
		keys = append(keys, sn)
	}
	sort.Ints(keys)

	var sb strings.Builder
	for _, sn := range keys {
		sb.WriteString(b.segments[sn])
	}
	return sb.String()
}

func trimmedRuneLen(s string) int {
	return len([]rune(strings.TrimSpace(s)))
}

// finalChoice picks between the final message's own text and the reconciled
// transcript. The final message sometimes repeats a cleaner full-utterance
// hypothesis instead of a delta, so the longer trimmed text wins, with ties
// going to the final text.
func finalChoice(finalText, reconciled string) string {
	if trimmedRuneLen(finalText) >= trimmedRuneLen(reconciled) {
		if finalText != "" {
			return finalText
		}
	}
	if reconciled != "" {
		return reconciled
	}
	return finalText
}
