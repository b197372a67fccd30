package blobstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jaftdelgado/aureum-services/internal/common"
	"github.com/jaftdelgado/aureum-services/internal/server/models"
)

type blobDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Filename    string             `bson:"filename"`
	ContentType string             `bson:"content_type"`
	Data        []byte             `bson:"image_data"`
}

type collectionFunc func(ctx context.Context) (*mongo.Collection, error)

// MongoStore keeps blobs as documents of one collection. Ids are the hex
// form of the document ObjectID.
type MongoStore struct {
	collection collectionFunc
	ping       func(ctx context.Context) error
}

// NewMongoStore stores blobs in collection through client.
func NewMongoStore(client *MongoClient, collection string) *MongoStore {
	return &MongoStore{
		collection: func(ctx context.Context) (*mongo.Collection, error) {
			return client.Collection(ctx, collection)
		},
		ping: client.Ping,
	}
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *MongoStore) Put(ctx context.Context, blob *models.Blob) (string, error) {
	coll, err := s.collection(ctx)
	if err != nil {
		return "", err
	}

	res, err := coll.InsertOne(ctx, blobDocument{
		Filename:    blob.Filename,
		ContentType: blob.ContentType,
		Data:        blob.Data,
	})
	if err != nil {
		return "", fmt.Errorf("mongo insert: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("mongo insert: unexpected id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*models.Blob, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.ErrorNotFound
	}

	coll, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}

	var doc blobDocument
	if err := coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("mongo find: %w", err)
	}

	return &models.Blob{
		ID:          doc.ID.Hex(),
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		Data:        doc.Data,
	}, nil
}

// Delete removes the blob. Deleting an unknown id is not an error.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}

	coll, err := s.collection(ctx)
	if err != nil {
		return err
	}

	if _, err := coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	return nil
}
