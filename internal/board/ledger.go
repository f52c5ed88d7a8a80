package board

import (
	"fmt"
	"strings"
	"time"
)

// LedgerKey builds the key used by the sweep ledgers.
func LedgerKey(taskID string, detail any) string {
	return fmt.Sprintf("%s|%v", taskID, detail)
}

// MarkGenerated records that the recurrence sweep produced the occurrence
// of taskID on date. It reports false if that pair was already recorded.
func (s *State) MarkGenerated(taskID, date string) bool {
	key := LedgerKey(taskID, date)
	if _, ok := s.Generated[key]; ok {
		return false
	}
	s.Generated[key] = s.now()
	return true
}

// MarkNotified records that the reminder at offset minutes for taskID
// fired. It reports false if that pair was already recorded.
func (s *State) MarkNotified(taskID string, offset int) bool {
	key := LedgerKey(taskID, offset)
	if _, ok := s.Notified[key]; ok {
		return false
	}
	s.Notified[key] = s.now()
	return true
}

// PruneLedgers drops ledger entries for tasks that no longer exist in
// either collection.
func (s *State) PruneLedgers() int {
	pruned := 0
	for _, ledger := range []map[string]time.Time{s.Generated, s.Notified} {
		for key := range ledger {
			id, _, _ := strings.Cut(key, "|")
			if !s.hasID(id) {
				delete(ledger, key)
				pruned++
			}
		}
	}
	return pruned
}
