package blobstore

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoClient is a shared handle to one MongoDB deployment. It dials on
// first use; a successful connection is then reused by every caller, while
// a failed dial is retried by the next caller. Create one per process and
// pass it to the stores that need it.
type MongoClient struct {
	uri         string
	database    string
	tlsInsecure bool

	mu     sync.Mutex
	client *mongo.Client
}

// mongoConnect is a seam for tests.
var mongoConnect = func(ctx context.Context, opts ...*options.ClientOptions) (*mongo.Client, error) {
	return mongo.Connect(ctx, opts...)
}

// NewMongoClient does not contact the server. tlsInsecure disables
// certificate verification and is meant for development deployments only.
func NewMongoClient(uri, database string, tlsInsecure bool) *MongoClient {
	return &MongoClient{uri: uri, database: database, tlsInsecure: tlsInsecure}
}

func (c *MongoClient) connect(ctx context.Context) (*mongo.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	opts := options.Client().ApplyURI(c.uri)
	if c.tlsInsecure {
		opts.SetTLSConfig(&tls.Config{InsecureSkipVerify: true})
	}

	client, err := mongoConnect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	c.client = client
	return client, nil
}

// Collection returns the named collection of the configured database,
// connecting first if needed.
func (c *MongoClient) Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(c.database).Collection(name), nil
}

func (c *MongoClient) Ping(ctx context.Context) error {
	client, err := c.connect(ctx)
	if err != nil {
		return err
	}
	return client.Ping(ctx, readpref.Primary())
}

// Disconnect closes the connection if one was made.
func (c *MongoClient) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	err := c.client.Disconnect(ctx)
	c.client = nil
	return err
}
