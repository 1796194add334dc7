package records

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/emogo-app/core/internal/models"
)

// Store is the persistence contract for mood records: insert one, list all
// in insertion order, fetch one by id.
type Store interface {
	Insert(ctx context.Context, rec *models.RecordModel) (primitive.ObjectID, error)
	ListAll(ctx context.Context) ([]models.RecordModel, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.RecordModel, error)
}

// MongoStore keeps records in a MongoDB collection.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(col *mongo.Collection) *MongoStore { return &MongoStore{col: col} }

func (m *MongoStore) Insert(ctx context.Context, rec *models.RecordModel) (primitive.ObjectID, error) {
	res, err := m.col.InsertOne(ctx, rec)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id, nil
}

// ListAll returns every record ascending by _id, which follows creation
// order. Video bytes are projected out; listings only need video_present.
func (m *MongoStore) ListAll(ctx context.Context) ([]models.RecordModel, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.M{"video_data": 0})

	cur, err := m.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []models.RecordModel
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (m *MongoStore) Get(ctx context.Context, id primitive.ObjectID) (*models.RecordModel, error) {
	var rec models.RecordModel
	if err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// DumpAll returns every record with video bytes included, for archival.
func (m *MongoStore) DumpAll(ctx context.Context) ([]models.RecordModel, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cur, err := m.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []models.RecordModel
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}
