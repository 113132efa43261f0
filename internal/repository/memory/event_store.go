package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medaimane/AthleticEdge/internal/entity"
	"github.com/medaimane/AthleticEdge/internal/repository"
)

type eventStore struct {
	mu      sync.RWMutex
	streams map[string][]entity.EventStoreRecord
	now     func() time.Time
}

// NewEventStore creates an in-memory EventStore.
func NewEventStore() repository.EventStore {
	return &eventStore{streams: make(map[string][]entity.EventStoreRecord), now: time.Now}
}

func (s *eventStore) SaveEvents(ctx context.Context, streamID string, streamType string, expectedVersion int, events []entity.Event) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stream := s.streams[streamID]
	if len(stream) != expectedVersion {
		return fmt.Errorf("stream %s at version %d, expected %d: %w", streamID, len(stream), expectedVersion, entity.ErrConcurrentUpdate)
	}

	now := s.now()
	for i, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", event.EventType(), err)
		}
		stream = append(stream, entity.EventStoreRecord{
			ID:         uuid.NewString(),
			StreamID:   streamID,
			StreamType: streamType,
			Version:    expectedVersion + i + 1,
			EventType:  event.EventType(),
			Payload:    payload,
			CreatedAt:  now,
		})
	}
	s.streams[streamID] = stream
	return nil
}

func (s *eventStore) LoadEvents(ctx context.Context, streamID string) ([]entity.EventStoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]entity.EventStoreRecord(nil), s.streams[streamID]...), nil
}
