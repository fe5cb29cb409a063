package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const (
	ordersCollection = "orders"
	opTimeout        = 5 * time.Second
)

// orderItemDoc — позиция заказа в document-хранилище.
type orderItemDoc struct {
	ProductID  string `bson:"productId"`
	Quantity   int32  `bson:"quantity"`
	PriceMinor int64  `bson:"priceMinor"`
}

// orderDoc — хранимый документ заказа.
type orderDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	OrderRef         string             `bson:"orderRef"`
	CustomerName     string             `bson:"customerName"`
	Email            string             `bson:"email,omitempty"`
	PhoneNumberOne   string             `bson:"phoneNumberOne"`
	PhoneNumberTwo   string             `bson:"phoneNumberTwo,omitempty"`
	Address          string             `bson:"address"`
	City             string             `bson:"city"`
	State            string             `bson:"state,omitempty"`
	Comment          string             `bson:"comment,omitempty"`
	Items            []orderItemDoc     `bson:"items"`
	DeliveryFeeMinor int64              `bson:"deliveryFeeMinor"`
	TotalMinor       int64              `bson:"totalMinor"`
	Status           string             `bson:"status"`
	CreatedAt        time.Time          `bson:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt"`
}

type orderRepository struct {
	collection *mongo.Collection
}

// NewOrderRepository создаёт document-store реализацию OrderRepository
// и гарантирует уникальный индекс по orderRef.
func NewOrderRepository(ctx context.Context, store *Store) (domain.OrderRepository, error) {
	collection := store.Database().Collection(ordersCollection)

	indexCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := collection.Indexes().CreateOne(indexCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "orderRef", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("ensure orderRef index: %w", err)
	}

	return &orderRepository{collection: collection}, nil
}

func (r *orderRepository) Create(order domain.Order) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	doc := toDoc(order)
	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Order{}, domain.ErrOrderRefTaken
		}
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return domain.Order{}, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	order.ID = id.Hex()
	return order, nil
}

func (r *orderRepository) Get(id string) (domain.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var doc orderDoc
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("find order: %w", err)
	}
	return fromDoc(doc), nil
}

func (r *orderRepository) GetByRef(orderRef string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var doc orderDoc
	if err := r.collection.FindOne(ctx, bson.M{"orderRef": orderRef}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("find order by ref: %w", err)
	}
	return fromDoc(doc), nil
}

func (r *orderRepository) List(limit int) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := make([]domain.Order, 0)
	for cursor.Next(ctx) {
		var doc orderDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode order: %w", err)
		}
		orders = append(orders, fromDoc(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

func (r *orderRepository) Update(order domain.Order) error {
	oid, err := primitive.ObjectIDFromHex(order.ID)
	if err != nil {
		return domain.ErrOrderNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	items := make([]orderItemDoc, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemDoc{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			PriceMinor: item.PriceMinor,
		})
	}

	// orderRef и createdAt неизменяемы и в $set не входят.
	res, err := r.collection.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"customerName":     order.CustomerName,
		"email":            order.Email,
		"phoneNumberOne":   order.PhoneNumberOne,
		"phoneNumberTwo":   order.PhoneNumberTwo,
		"address":          order.Address,
		"city":             order.City,
		"state":            order.State,
		"comment":          order.Comment,
		"items":            items,
		"deliveryFeeMinor": order.DeliveryFeeMinor,
		"totalMinor":       order.TotalMinor,
		"status":           string(order.Status),
		"updatedAt":        order.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) Delete(id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrOrderNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// UpdateStatusMany выполняется одной server-side операцией UpdateMany:
// все подошедшие документы обновляются атомарно со стороны хранилища.
func (r *orderRepository) UpdateStatusMany(ids []string, status domain.OrderStatus, exclude []domain.OrderStatus) (int64, error) {
	oids, err := toObjectIDs(ids)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	filter := bson.M{"_id": bson.M{"$in": oids}}
	if len(exclude) > 0 {
		excluded := make([]string, 0, len(exclude))
		for _, s := range exclude {
			excluded = append(excluded, string(s))
		}
		filter["status"] = bson.M{"$nin": excluded}
	}

	res, err := r.collection.UpdateMany(ctx, filter, bson.M{"$set": bson.M{
		"status":    string(status),
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return 0, fmt.Errorf("bulk status update: %w", err)
	}
	return res.ModifiedCount, nil
}

// DeleteMany удаляет документы одной server-side операцией.
func (r *orderRepository) DeleteMany(ids []string) (int64, error) {
	oids, err := toObjectIDs(ids)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return 0, fmt.Errorf("bulk delete: %w", err)
	}
	return res.DeletedCount, nil
}

func toObjectIDs(ids []string) ([]primitive.ObjectID, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, domain.ErrMalformedOrderID
		}
		oids = append(oids, oid)
	}
	return oids, nil
}

func toDoc(order domain.Order) orderDoc {
	items := make([]orderItemDoc, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemDoc{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			PriceMinor: item.PriceMinor,
		})
	}

	return orderDoc{
		OrderRef:         order.OrderRef,
		CustomerName:     order.CustomerName,
		Email:            order.Email,
		PhoneNumberOne:   order.PhoneNumberOne,
		PhoneNumberTwo:   order.PhoneNumberTwo,
		Address:          order.Address,
		City:             order.City,
		State:            order.State,
		Comment:          order.Comment,
		Items:            items,
		DeliveryFeeMinor: order.DeliveryFeeMinor,
		TotalMinor:       order.TotalMinor,
		Status:           string(order.Status),
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
}

func fromDoc(doc orderDoc) domain.Order {
	items := make([]domain.OrderItem, 0, len(doc.Items))
	for _, item := range doc.Items {
		items = append(items, domain.OrderItem{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			PriceMinor: item.PriceMinor,
		})
	}

	return domain.Order{
		ID:               doc.ID.Hex(),
		OrderRef:         doc.OrderRef,
		CustomerName:     doc.CustomerName,
		Email:            doc.Email,
		PhoneNumberOne:   doc.PhoneNumberOne,
		PhoneNumberTwo:   doc.PhoneNumberTwo,
		Address:          doc.Address,
		City:             doc.City,
		State:            doc.State,
		Comment:          doc.Comment,
		Items:            items,
		DeliveryFeeMinor: doc.DeliveryFeeMinor,
		TotalMinor:       doc.TotalMinor,
		Status:           domain.OrderStatus(doc.Status),
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
}

var _ domain.OrderRepository = (*orderRepository)(nil)
