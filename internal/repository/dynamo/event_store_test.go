package dynamo

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medaimane/AthleticEdge/internal/entity"
)

func TestEventStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	table := newFakeTable()
	store := NewEventStore(table, "orders")
	placed := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveEvents(ctx, "ord-1", entity.StreamTypeOrder, 0, []entity.Event{
		entity.OrderPlaced{OrderID: "ord-1", PlacedAt: placed},
	}))
	require.NoError(t, store.SaveEvents(ctx, "ord-1", entity.StreamTypeOrder, 1, []entity.Event{
		entity.OrderStatusChanged{OrderID: "ord-1", From: entity.OrderStatusPending, To: entity.OrderStatusShipped},
	}))

	records, err := store.LoadEvents(ctx, "ord-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].Version)
	assert.Equal(t, "OrderPlaced", records[0].EventType)
	assert.Equal(t, 2, records[1].Version)
	assert.Equal(t, "OrderStatusChanged", records[1].EventType)
	assert.Equal(t, entity.StreamTypeOrder, records[1].StreamType)
	assert.NotEmpty(t, records[0].ID)

	var changed entity.OrderStatusChanged
	require.NoError(t, json.Unmarshal(records[1].Payload, &changed))
	assert.Equal(t, entity.OrderStatusShipped, changed.To)

	agg := entity.NewOrderAggregate("ord-1")
	require.NoError(t, agg.Rehydrate(records))
	assert.Equal(t, entity.OrderStatusShipped, agg.Status)
}

func TestEventStore_VersionConflicts(t *testing.T) {
	ctx := context.Background()
	store := NewEventStore(newFakeTable(), "orders")
	placed := []entity.Event{entity.OrderPlaced{OrderID: "ord-1"}}
	changed := []entity.Event{entity.OrderStatusChanged{OrderID: "ord-1", To: entity.OrderStatusShipped}}

	require.NoError(t, store.SaveEvents(ctx, "ord-1", entity.StreamTypeOrder, 0, placed))

	tests := []struct {
		name     string
		expected int
		events   []entity.Event
	}{
		{"stale version", 0, placed},
		{"version ahead of stream", 3, changed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.SaveEvents(ctx, "ord-1", entity.StreamTypeOrder, tt.expected, tt.events)
			assert.ErrorIs(t, err, entity.ErrConcurrentUpdate)
		})
	}

	records, err := store.LoadEvents(ctx, "ord-1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestEventStore_StreamSharesTableWithOrder(t *testing.T) {
	ctx := context.Background()
	table := newFakeTable()
	orders := NewOrderRepository(table, "orders")
	store := NewEventStore(table, "orders")

	require.NoError(t, orders.Create(ctx, order("ord-1", "u1", time.Now())))
	require.NoError(t, store.SaveEvents(ctx, "ord-1", entity.StreamTypeOrder, 0, []entity.Event{entity.OrderPlaced{OrderID: "ord-1"}}))

	records, err := store.LoadEvents(ctx, "ord-1")
	require.NoError(t, err)
	assert.Len(t, records, 1)

	got, err := orders.FindByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	empty, err := store.LoadEvents(ctx, "ord-2")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
