package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"

	"github.com/medaimane/AthleticEdge/internal/entity"
	"github.com/medaimane/AthleticEdge/internal/repository"
)

const (
	metadataSK = "METADATA"
	userIndex  = "GSI1"

	// sortableTime is fixed width, so GSI1SK strings order the same way as
	// the instants they encode. RFC3339Nano trims trailing zeros and does not.
	sortableTime = "2006-01-02T15:04:05.000000000Z07:00"
)

// API is the subset of the DynamoDB client the repository uses.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// NewClient loads the default AWS configuration for region. A non-empty
// endpoint points the client at DynamoDB Local or LocalStack.
func NewClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

type orderRepository struct {
	client    API
	tableName string
}

// NewOrderRepository creates an OrderRepository on a single table keyed by
// PK/SK, with a GSI1 index for per-user listings.
func NewOrderRepository(client API, tableName string) repository.OrderRepository {
	return &orderRepository{client: client, tableName: tableName}
}

type itemRecord struct {
	ProductID    string `dynamodbav:"product_id"`
	ProductName  string `dynamodbav:"product_name"`
	ProductBrand string `dynamodbav:"product_brand"`
	Price        string `dynamodbav:"price"`
	Quantity     int    `dynamodbav:"quantity"`
	Size         string `dynamodbav:"size,omitempty"`
	Color        string `dynamodbav:"color,omitempty"`
}

// orderRecord is the stored shape of an order. Money is kept as decimal
// strings so no float rounding happens in the table.
type orderRecord struct {
	PK           string                 `dynamodbav:"PK"`
	SK           string                 `dynamodbav:"SK"`
	GSI1PK       string                 `dynamodbav:"GSI1PK,omitempty"`
	GSI1SK       string                 `dynamodbav:"GSI1SK,omitempty"`
	ID           string                 `dynamodbav:"id"`
	UserID       string                 `dynamodbav:"user_id,omitempty"`
	Status       string                 `dynamodbav:"status"`
	Shipping     entity.ShippingDetails `dynamodbav:"shipping_details"`
	Payment      *entity.PaymentSummary `dynamodbav:"payment_details,omitempty"`
	ShippingTier string                 `dynamodbav:"shipping_tier"`
	Subtotal     string                 `dynamodbav:"subtotal"`
	ShippingCost string                 `dynamodbav:"shipping"`
	Tax          string                 `dynamodbav:"tax"`
	Total        string                 `dynamodbav:"total"`
	Items        []itemRecord           `dynamodbav:"items"`
	CreatedAt    string                 `dynamodbav:"created_at"`
}

func orderPK(id string) string { return "ORDER#" + id }

func userPK(userID string) string { return "USER#" + userID }

func metadataKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: orderPK(id)},
		"SK": &types.AttributeValueMemberS{Value: metadataSK},
	}
}

func toRecord(o *entity.Order) orderRecord {
	created := o.CreatedAt.UTC().Format(time.RFC3339Nano)
	rec := orderRecord{
		PK:           orderPK(o.ID),
		SK:           metadataSK,
		ID:           o.ID,
		UserID:       o.UserID,
		Status:       string(o.Status),
		Shipping:     o.Shipping,
		Payment:      o.Payment,
		ShippingTier: string(o.ShippingTier),
		Subtotal:     o.Subtotal.String(),
		ShippingCost: o.ShippingCost.String(),
		Tax:          o.Tax.String(),
		Total:        o.Total.String(),
		CreatedAt:    created,
	}
	// Guest orders stay out of the user index.
	if o.UserID != "" {
		rec.GSI1PK = userPK(o.UserID)
		rec.GSI1SK = "ORDER#" + o.CreatedAt.UTC().Format(sortableTime) + "#" + o.ID
	}
	for _, it := range o.Items {
		rec.Items = append(rec.Items, itemRecord{
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			ProductBrand: it.ProductBrand,
			Price:        it.Price.String(),
			Quantity:     it.Quantity,
			Size:         it.Size,
			Color:        it.Color,
		})
	}
	return rec
}

func (rec orderRecord) toOrder() (*entity.Order, error) {
	o := &entity.Order{
		ID:           rec.ID,
		UserID:       rec.UserID,
		Status:       entity.OrderStatus(rec.Status),
		Shipping:     rec.Shipping,
		Payment:      rec.Payment,
		ShippingTier: entity.ShippingTier(rec.ShippingTier),
		Items:        make([]entity.OrderItem, 0, len(rec.Items)),
	}
	var err error
	for dst, src := range map[*decimal.Decimal]string{
		&o.Subtotal: rec.Subtotal, &o.ShippingCost: rec.ShippingCost, &o.Tax: rec.Tax, &o.Total: rec.Total,
	} {
		if *dst, err = decimal.NewFromString(src); err != nil {
			return nil, fmt.Errorf("failed to parse amount of order %s: %w", rec.ID, err)
		}
	}
	if o.CreatedAt, err = time.Parse(time.RFC3339Nano, rec.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at of order %s: %w", rec.ID, err)
	}
	for _, it := range rec.Items {
		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			return nil, fmt.Errorf("failed to parse item price of order %s: %w", rec.ID, err)
		}
		o.Items = append(o.Items, entity.OrderItem{
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			ProductBrand: it.ProductBrand,
			Price:        price,
			Quantity:     it.Quantity,
			Size:         it.Size,
			Color:        it.Color,
		})
	}
	return o, nil
}

func (r *orderRepository) Create(ctx context.Context, o *entity.Order) error {
	av, err := attributevalue.MarshalMap(toRecord(o))
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("order %s already exists: %w", o.ID, entity.ErrConcurrentUpdate)
	}
	if err != nil {
		return fmt.Errorf("failed to put order %s: %w", o.ID, err)
	}
	return nil
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       metadataKey(id),
	})
	if err != nil {
		return fmt.Errorf("failed to delete order %s: %w", id, err)
	}
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            metadataKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return nil, entity.NewNotFoundError("order", id)
	}

	var rec orderRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order %s: %w", id, err)
	}
	return rec.toOrder()
}

func (r *orderRepository) FindByUser(ctx context.Context, userID string) ([]entity.Order, error) {
	var (
		orders []entity.Order
		start  map[string]types.AttributeValue
	)
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String(userIndex),
			KeyConditionExpression: aws.String("GSI1PK = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: userPK(userID)},
			},
			ScanIndexForward:  aws.Bool(false),
			ExclusiveStartKey: start,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query orders of user %s: %w", userID, err)
		}

		var recs []orderRecord
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &recs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal orders: %w", err)
		}
		for _, rec := range recs {
			o, err := rec.toOrder()
			if err != nil {
				return nil, err
			}
			orders = append(orders, *o)
		}

		if len(out.LastEvaluatedKey) == 0 {
			return orders, nil
		}
		start = out.LastEvaluatedKey
	}
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      metadataKey(id),
		UpdateExpression:         aws.String("SET #status = :status"),
		ConditionExpression:      aws.String("attribute_exists(PK)"),
		ExpressionAttributeNames: map[string]string{"#status": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(status)},
		},
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return entity.NewNotFoundError("order", id)
	}
	if err != nil {
		return fmt.Errorf("failed to update status of order %s: %w", id, err)
	}
	return nil
}
