package history

import "github.com/amishk599/sponsorscout/internal/model"

// NopHistory is used when history.enabled is false. It records nothing.
type NopHistory struct{}

func NewNopHistory() *NopHistory { return &NopHistory{} }

func (h *NopHistory) Record(model.HistoryEntry) error          { return nil }
func (h *NopHistory) Recent(int) ([]model.HistoryEntry, error) { return nil, nil }
