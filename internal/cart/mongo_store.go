package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ankurrera/auto-speed-shop-sub000/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists carts across sessions in a MongoDB collection, one
// document per user.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		collection: db.Collection("carts"),
	}
}

// ConnectMongoDB opens and pings a MongoDB connection.
func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

func (m *MongoStore) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart domain.Cart

	filter := bson.M{"user_id": userID}
	err := m.collection.FindOne(ctx, filter).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return &cart, nil
}

func (m *MongoStore) AddItem(ctx context.Context, userID string, item domain.CartLine) error {
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}

	now := time.Now()
	filter := bson.M{"user_id": userID}

	var existing domain.Cart
	err := m.collection.FindOne(ctx, filter).Decode(&existing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			item.AddedAt = now
			cart := &domain.Cart{
				UserID:    userID,
				Items:     []domain.CartLine{item},
				CreatedAt: now,
				UpdatedAt: now,
			}
			if _, err := m.collection.InsertOne(ctx, cart); err != nil {
				return fmt.Errorf("failed to create cart with item: %w", err)
			}
			return nil
		}
		return fmt.Errorf("failed to check existing cart: %w", err)
	}

	// Merge into the existing (id, kind) line if there is one
	if line := existing.Find(item.Ref); line != nil {
		update := bson.M{
			"$inc": bson.M{"items.$[line].quantity": item.Quantity},
			"$set": bson.M{"updated_at": now},
		}
		opts := options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{"line.ref.id": item.Ref.ID, "line.ref.kind": item.Ref.Kind}},
		})
		if _, err := m.collection.UpdateOne(ctx, filter, update, opts); err != nil {
			return fmt.Errorf("failed to merge cart item: %w", err)
		}
		return nil
	}

	item.AddedAt = now
	update := bson.M{
		"$push": bson.M{"items": item},
		"$set":  bson.M{"updated_at": now},
	}
	if _, err := m.collection.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

func (m *MongoStore) AdjustQuantity(ctx context.Context, userID string, ref domain.CatalogRef, delta int) error {
	var cart domain.Cart
	filter := bson.M{"user_id": userID}

	err := m.collection.FindOne(ctx, filter).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		return fmt.Errorf("failed to get cart: %w", err)
	}

	line := cart.Find(ref)
	if line == nil {
		return nil
	}

	if line.Quantity+delta < 1 {
		return m.RemoveItem(ctx, userID, ref)
	}

	update := bson.M{
		"$inc": bson.M{"items.$[line].quantity": delta},
		"$set": bson.M{"updated_at": time.Now()},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"line.ref.id": ref.ID, "line.ref.kind": ref.Kind}},
	})
	if _, err := m.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to adjust quantity: %w", err)
	}
	return nil
}

func (m *MongoStore) RemoveItem(ctx context.Context, userID string, ref domain.CatalogRef) error {
	filter := bson.M{"user_id": userID}
	update := bson.M{
		"$pull": bson.M{"items": bson.M{"ref.id": ref.ID, "ref.kind": ref.Kind}},
		"$set":  bson.M{"updated_at": time.Now()},
	}

	// $pull on a missing line matches nothing, which is the wanted no-op
	if _, err := m.collection.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

func (m *MongoStore) ClearCart(ctx context.Context, userID string) error {
	if _, err := m.collection.DeleteOne(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
