package conversation

import (
	"cmp"
	"slices"
	"strings"

	"github.com/diogo/streamchat/internal/models"
)

// Reassembler collects the text chunks of one streamed reply.
//
// Chunks may arrive out of order. Text orders them by ascending offset with a
// stable sort, so chunks sharing an offset keep their arrival order. Duplicate
// offsets are not deduplicated.
type Reassembler struct {
	chunks []models.TextChunk
}

// Add stores a fragment
func (r *Reassembler) Add(text string, offset int64) {
	r.chunks = append(r.chunks, models.TextChunk{Text: text, Offset: offset})
}

// Text returns the fragments ordered by offset and concatenated with no separator
func (r *Reassembler) Text() string {
	if len(r.chunks) == 0 {
		return ""
	}

	sorted := slices.Clone(r.chunks)
	slices.SortStableFunc(sorted, func(a, b models.TextChunk) int {
		return cmp.Compare(a.Offset, b.Offset)
	})

	var sb strings.Builder
	for _, c := range sorted {
		sb.WriteString(c.Text)
	}
	return sb.String()
}

// Clear discards all fragments
func (r *Reassembler) Clear() {
	r.chunks = nil
}

// Len returns the number of stored fragments
func (r *Reassembler) Len() int {
	return len(r.chunks)
}

// Chunks returns the fragments in arrival order
func (r *Reassembler) Chunks() []models.TextChunk {
	return slices.Clone(r.chunks)
}
