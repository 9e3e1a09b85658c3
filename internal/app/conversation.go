package app

import "greatlibrary/internal/model"

// trimConversation keeps the most recent limit turns, dropping from the
// front. A non-positive limit disables trimming.
func trimConversation(turns []model.Turn, limit int) []model.Turn {
	if limit <= 0 || len(turns) <= limit {
		return turns
	}
	return turns[len(turns)-limit:]
}
