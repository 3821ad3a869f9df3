package orchestrator

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Assemble orders results by chunk index and joins their text with sep.
// Failed chunks contribute an empty string so positions are kept, and are
// listed in Transcript.Failed. Every index in [0, n) must appear exactly once.
func Assemble(results []ChunkResult, n int, sep string) (Transcript, error) {
	if len(results) != n {
		return Transcript{}, fmt.Errorf("%w: got %d results for %d chunks", ErrAssembly, len(results), n)
	}
	sorted := slices.Clone(results)
	slices.SortStableFunc(sorted, func(a, b ChunkResult) int { return cmp.Compare(a.Index, b.Index) })

	parts := make([]string, n)
	var failedIdx []int
	for i, r := range sorted {
		switch {
		case r.Index < 0 || r.Index >= n:
			return Transcript{}, fmt.Errorf("%w: chunk index %d out of range [0, %d)", ErrAssembly, r.Index, n)
		case r.Index < i:
			return Transcript{}, fmt.Errorf("%w: duplicate result for chunk %d", ErrAssembly, r.Index)
		case r.Index > i:
			return Transcript{}, fmt.Errorf("%w: missing result for chunk %d", ErrAssembly, i)
		}
		if r.Status == StatusSuccess {
			parts[i] = r.Text
		} else {
			failedIdx = append(failedIdx, i)
		}
	}
	return Transcript{
		Text:   strings.Join(parts, sep),
		Failed: failedIdx,
		Chunks: n,
	}, nil
}
