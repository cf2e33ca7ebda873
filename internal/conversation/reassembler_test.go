package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/streamchat/internal/models"
)

func TestReassemblerOrdersByOffset(t *testing.T) {
	var r Reassembler
	r.Add("b", 1)
	r.Add("a", 0)

	assert.Equal(t, "ab", r.Text())
	assert.Equal(t, 2, r.Len())
}

func TestReassemblerInsertionOrderDoesNotMatter(t *testing.T) {
	chunks := []models.TextChunk{
		{Text: "The ", Offset: 0},
		{Text: "quick ", Offset: 4},
		{Text: "brown ", Offset: 10},
		{Text: "fox", Offset: 16},
	}

	orders := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{2, 0, 3, 1},
		{1, 3, 0, 2},
	}

	for _, order := range orders {
		var r Reassembler
		for _, i := range order {
			r.Add(chunks[i].Text, chunks[i].Offset)
		}
		assert.Equal(t, "The quick brown fox", r.Text(), "order %v", order)
	}
}

func TestReassemblerDuplicateOffsetsKeepArrivalOrder(t *testing.T) {
	var r Reassembler
	r.Add("x", 5)
	r.Add("first", 2)
	r.Add("second", 2)
	r.Add("third", 2)

	assert.Equal(t, "firstsecondthirdx", r.Text())
}

func TestReassemblerTextDoesNotReorderStorage(t *testing.T) {
	var r Reassembler
	r.Add("b", 1)
	r.Add("a", 0)
	_ = r.Text()

	chunks := r.Chunks()
	require.Len(t, chunks, 2)
	assert.Equal(t, "b", chunks[0].Text)
	assert.Equal(t, "a", chunks[1].Text)
}

func TestReassemblerClear(t *testing.T) {
	var r Reassembler
	assert.Equal(t, "", r.Text())

	r.Add("hello", 0)
	r.Clear()

	assert.Equal(t, 0, r.Len())
	assert.Equal(t, "", r.Text())
}

func TestReassemblerNegativeAndLargeOffsets(t *testing.T) {
	var r Reassembler
	r.Add("end", 1<<40)
	r.Add("start", -3)
	r.Add("mid", 0)

	assert.Equal(t, "startmidend", r.Text())
}
