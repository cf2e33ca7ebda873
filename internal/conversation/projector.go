package conversation

import (
	"slices"

	"github.com/diogo/streamchat/internal/models"
)

// Project derives the list to render: the finalized messages, plus a
// trailing typing entry while a reply is streaming. It never modifies its input.
func Project(messages []models.Message, turn TurnState) []models.Message {
	s, ok := turn.(*Streaming)
	if !ok || s == nil {
		return slices.Clone(messages)
	}

	out := make([]models.Message, 0, len(messages)+1)
	out = append(out, messages...)
	return append(out, models.Message{
		Role:        models.RoleAI,
		Text:        s.Text(),
		StatusLabel: s.Status(),
		InProgress:  true,
		Kind:        models.KindNormal,
	})
}
