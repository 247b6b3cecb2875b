package memory

import (
	"context"
	"sync"

	"github.com/chatvault/chatvault/internal/domain/entity"
	"github.com/chatvault/chatvault/internal/domain/repository"
)

// MessageStore provides an in-memory implementation of
// repository.MessageStore. Thread-safe for concurrent access.
type MessageStore struct {
	mu      sync.RWMutex
	records map[string]*entity.MessageRecord // message id -> record
	order   []string                         // insertion order, for cap eviction
	deleted map[string][]string              // channel id -> deleted ids
	edited  map[string][]string              // channel id -> edited ids

	maxMessages   int // total record cap, 0 = unlimited
	maxPerChannel int // deleted/edited index cap per channel, 0 = unlimited
}

// NewMessageStore creates a new in-memory message store with the given
// retention caps.
func NewMessageStore(maxMessages, maxPerChannel int) *MessageStore {
	return &MessageStore{
		records:       make(map[string]*entity.MessageRecord),
		deleted:       make(map[string][]string),
		edited:        make(map[string][]string),
		maxMessages:   maxMessages,
		maxPerChannel: maxPerChannel,
	}
}

// SaveMessage persists a record, replacing any existing record with the
// same id. A tombstone never overwrites a record that has a body.
func (s *MessageStore) SaveMessage(ctx context.Context, rec *entity.MessageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[rec.ID]; ok {
		if rec.Message == nil && existing.Message != nil {
			return nil
		}
	} else {
		s.order = append(s.order, rec.ID)
	}

	// Store a copy to prevent external mutations of the record itself.
	recCopy := *rec
	s.records[rec.ID] = &recCopy

	s.evictOverCap()
	return nil
}

// Message retrieves a record by message id.
func (s *MessageStore) Message(ctx context.Context, id string) (*entity.MessageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	recCopy := *rec
	return &recCopy, nil
}

// RecordDeleted appends a message id to the channel's deleted index.
func (s *MessageStore) RecordDeleted(ctx context.Context, channelID, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted[channelID] = s.appendToIndex(s.deleted[channelID], messageID)
	return nil
}

// RecordEdited appends a message id to the channel's edited index.
func (s *MessageStore) RecordEdited(ctx context.Context, channelID, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edited[channelID] = s.appendToIndex(s.edited[channelID], messageID)
	return nil
}

// DeletedIDs returns the channel's deleted index in observation order.
func (s *MessageStore) DeletedIDs(ctx context.Context, channelID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyIDs(s.deleted[channelID]), nil
}

// EditedIDs returns the channel's edited index in observation order.
func (s *MessageStore) EditedIDs(ctx context.Context, channelID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyIDs(s.edited[channelID]), nil
}

// DeleteMessage removes a record and its index entries.
func (s *MessageStore) DeleteMessage(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return repository.ErrNotFound
	}

	delete(s.records, id)
	s.removeFromOrder(id)
	s.deleted[rec.ChannelID] = removeID(s.deleted[rec.ChannelID], id)
	s.edited[rec.ChannelID] = removeID(s.edited[rec.ChannelID], id)
	return nil
}

// Stats returns aggregate archive counts.
func (s *MessageStore) Stats(ctx context.Context) (*entity.ArchiveStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := entity.NewArchiveStats()
	for _, rec := range s.records {
		if rec.Message != nil {
			stats.Messages++
		} else {
			stats.Tombstones++
		}
	}
	for ch, ids := range s.deleted {
		if len(ids) > 0 {
			stats.DeletedByChannel[ch] = len(ids)
		}
	}
	for ch, ids := range s.edited {
		if len(ids) > 0 {
			stats.EditedByChannel[ch] = len(ids)
		}
	}
	return stats, nil
}

// appendToIndex adds id to an index slice, skipping duplicates and
// trimming the oldest entries beyond the per-channel cap.
func (s *MessageStore) appendToIndex(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	ids = append(ids, id)
	if s.maxPerChannel > 0 && len(ids) > s.maxPerChannel {
		evicted := ids[:len(ids)-s.maxPerChannel]
		for _, old := range evicted {
			delete(s.records, old)
			s.removeFromOrder(old)
		}
		ids = append([]string(nil), ids[len(ids)-s.maxPerChannel:]...)
	}
	return ids
}

// evictOverCap drops the oldest records beyond the total cap.
func (s *MessageStore) evictOverCap() {
	if s.maxMessages <= 0 {
		return
	}
	for len(s.order) > s.maxMessages {
		oldest := s.order[0]
		s.order = s.order[1:]
		rec, ok := s.records[oldest]
		if !ok {
			continue
		}
		delete(s.records, oldest)
		s.deleted[rec.ChannelID] = removeID(s.deleted[rec.ChannelID], oldest)
		s.edited[rec.ChannelID] = removeID(s.edited[rec.ChannelID], oldest)
	}
}

func (s *MessageStore) removeFromOrder(id string) {
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

func copyIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
