package dynamo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medaimane/AthleticEdge/internal/entity"
)

// fakeTable is a single-table stand-in that understands the handful of
// expressions the repositories issue. Items are keyed by PK and SK.
type fakeTable struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
}

func newFakeTable() *fakeTable {
	return &fakeTable{items: make(map[string]map[string]types.AttributeValue)}
}

func str(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func keyOf(item map[string]types.AttributeValue) string {
	return str(item["PK"]) + "|" + str(item["SK"])
}

func (f *fakeTable) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.items[keyOf(in.Item)]; exists {
		return nil, &types.ConditionalCheckFailedException{Message: strPtr("exists")}
	}
	f.items[keyOf(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeTable) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dynamodb.GetItemOutput{Item: f.items[keyOf(in.Key)]}, nil
}

func (f *fakeTable) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pk := str(in.ExpressionAttributeValues[":pk"])
	prefix := str(in.ExpressionAttributeValues[":prefix"])
	sortKey := "SK"
	if in.IndexName != nil {
		sortKey = "GSI1SK"
	}

	var out []map[string]types.AttributeValue
	for _, item := range f.items {
		if in.IndexName != nil && str(item["GSI1PK"]) == pk {
			out = append(out, item)
		}
		if in.IndexName == nil && str(item["PK"]) == pk && strings.HasPrefix(str(item["SK"]), prefix) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		less := strings.Compare(str(out[i][sortKey]), str(out[j][sortKey])) < 0
		if in.ScanIndexForward != nil && !*in.ScanIndexForward {
			return !less
		}
		return less
	})
	return &dynamodb.QueryOutput{Items: out}, nil
}

func (f *fakeTable) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[keyOf(in.Key)]
	if !ok {
		return nil, &types.ConditionalCheckFailedException{Message: strPtr("missing")}
	}
	item["status"] = in.ExpressionAttributeValues[":status"]
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeTable) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, keyOf(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

// TransactWriteItems applies condition checks and conditional puts all or
// nothing.
func (f *fakeTable) TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range in.TransactItems {
		if w.ConditionCheck != nil {
			if _, ok := f.items[keyOf(w.ConditionCheck.Key)]; !ok {
				return nil, &types.TransactionCanceledException{Message: strPtr("condition check failed")}
			}
		}
		if w.Put != nil {
			if _, exists := f.items[keyOf(w.Put.Item)]; exists {
				return nil, &types.TransactionCanceledException{Message: strPtr("item exists")}
			}
		}
	}
	for _, w := range in.TransactItems {
		if w.Put != nil {
			f.items[keyOf(w.Put.Item)] = w.Put.Item
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func strPtr(s string) *string { return &s }

func order(id, user string, at time.Time) *entity.Order {
	return &entity.Order{
		ID:           id,
		UserID:       user,
		Status:       entity.OrderStatusPending,
		Shipping:     entity.ShippingDetails{FirstName: "Jamie", Email: "jamie@example.com", Country: "US"},
		Payment:      &entity.PaymentSummary{CardLast4: "3456", ExpiryDate: "09/27"},
		ShippingTier: entity.ShippingExpress,
		Subtotal:     decimal.RequireFromString("129.99"),
		ShippingCost: decimal.RequireFromString("30.00"),
		Tax:          decimal.RequireFromString("13.00"),
		Total:        decimal.RequireFromString("172.99"),
		Items: []entity.OrderItem{{
			ProductID: "prod-001", ProductName: "Air Zoom SuperRep", ProductBrand: "Nike",
			Price: decimal.RequireFromString("129.99"), Quantity: 1, Size: "9",
		}},
		CreatedAt: at,
	}
}

func TestOrderRecord_KeysAndMoney(t *testing.T) {
	at := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	rec := toRecord(order("ord-1", "u1", at))

	assert.Equal(t, "ORDER#ord-1", rec.PK)
	assert.Equal(t, "METADATA", rec.SK)
	assert.Equal(t, "USER#u1", rec.GSI1PK)
	assert.Equal(t, "ORDER#2026-04-01T12:00:00.000000000Z#ord-1", rec.GSI1SK)
	assert.Equal(t, "172.99", rec.Total)
	assert.Equal(t, "129.99", rec.Items[0].Price)

	guest := toRecord(order("ord-2", "", at))
	assert.Empty(t, guest.GSI1PK)
}

func TestOrderRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(newFakeTable(), "orders")
	at := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, order("ord-1", "u1", at)))
	assert.ErrorIs(t, repo.Create(ctx, order("ord-1", "u1", at)), entity.ErrConcurrentUpdate)

	got, err := repo.FindByID(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, entity.ShippingExpress, got.ShippingTier)
	assert.True(t, decimal.RequireFromString("172.99").Equal(got.Total))
	assert.True(t, at.Equal(got.CreatedAt))
	require.NotNil(t, got.Payment)
	assert.Equal(t, "3456", got.Payment.CardLast4)
	assert.Equal(t, "Jamie", got.Shipping.FirstName)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "9", got.Items[0].Size)

	_, err = repo.FindByID(ctx, "missing")
	assert.True(t, entity.IsNotFound(err))
}

func TestOrderRepository_FindByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(newFakeTable(), "orders")
	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, order("ord-a", "u1", base)))
	require.NoError(t, repo.Create(ctx, order("ord-b", "u1", base.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, order("ord-c", "u2", base.Add(2*time.Hour))))

	orders, err := repo.FindByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ord-b", orders[0].ID)
	assert.Equal(t, "ord-a", orders[1].ID)
}

func TestOrderRepository_FindByUserSubSecond(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(newFakeTable(), "orders")
	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, order("ord-older", "u1", base)))
	require.NoError(t, repo.Create(ctx, order("ord-newer", "u1", base.Add(500*time.Millisecond))))
	require.NoError(t, repo.Create(ctx, order("ord-newest", "u1", base.Add(time.Second+time.Nanosecond))))

	orders, err := repo.FindByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "ord-newest", orders[0].ID)
	assert.Equal(t, "ord-newer", orders[1].ID)
	assert.Equal(t, "ord-older", orders[2].ID)
}

func TestOrderRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(newFakeTable(), "orders")
	require.NoError(t, repo.Create(ctx, order("ord-1", "u1", time.Now())))

	require.NoError(t, repo.Delete(ctx, "ord-1"))
	_, err := repo.FindByID(ctx, "ord-1")
	assert.True(t, entity.IsNotFound(err))

	orders, err := repo.FindByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.NoError(t, repo.Delete(ctx, "ord-1"))
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(newFakeTable(), "orders")
	require.NoError(t, repo.Create(ctx, order("ord-1", "u1", time.Now())))

	require.NoError(t, repo.UpdateStatus(ctx, "ord-1", entity.OrderStatusDelivered))
	got, err := repo.FindByID(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDelivered, got.Status)

	assert.True(t, entity.IsNotFound(repo.UpdateStatus(ctx, "missing", entity.OrderStatusShipped)))
}
