package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"ouvidoria-analytics/src/domain"
	"ouvidoria-analytics/src/infra/mongodb"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCacheStore materializa o cache na collection aggregation_cache:
// { key (única), data (payload opaco), expiresAt (indexado) }.
type MongoCacheStore struct {
	collection *mongo.Collection
}

type cacheEntry struct {
	Key       string           `bson:"key"`
	Data      primitive.Binary `bson:"data"`
	ExpiresAt time.Time        `bson:"expiresAt"`
}

func NewMongoCacheStore(db *mongo.Database) *MongoCacheStore {
	return &MongoCacheStore{collection: db.Collection(mongodb.CacheCollection)}
}

// EnsureIndexes cria o índice único de key e o índice de expiresAt usado
// pela varredura de expirados. Idempotente; chamado na subida do processo.
func (s *MongoCacheStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "expiresAt", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("MongoCacheStore.EnsureIndexes - failed to create indexes: %w", err)
	}

	return nil
}

func (s *MongoCacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	filter := bson.M{
		"key":       key,
		"expiresAt": bson.M{"$gt": time.Now().UTC()},
	}

	var entry cacheEntry
	err := s.collection.FindOne(ctx, filter).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("MongoCacheStore.Get - lookup failed for key %s: %w", key, err)
	}

	return entry.Data.Data, true, nil
}

func (s *MongoCacheStore) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	update := bson.M{
		"$set": bson.M{
			"data":      primitive.Binary{Data: payload},
			"expiresAt": time.Now().UTC().Add(ttl),
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := s.collection.UpdateOne(ctx, bson.M{"key": key}, update, opts); err != nil {
		return fmt.Errorf("MongoCacheStore.Set - upsert failed for key %s: %w", key, err)
	}

	return nil
}

func (s *MongoCacheStore) DeleteByPattern(ctx context.Context, pattern string) (int64, error) {
	prefix := PatternPrefix(pattern)

	// Prefixo ancorado; QuoteMeta evita que fingerprints com metacaracteres
	// virem regex acidental
	filter := bson.M{"key": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}}

	result, err := s.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("MongoCacheStore.DeleteByPattern - delete failed for pattern %s: %w", pattern, err)
	}

	return result.DeletedCount, nil
}

func (s *MongoCacheStore) DeleteExpired(ctx context.Context) (int64, error) {
	filter := bson.M{"expiresAt": bson.M{"$lt": time.Now().UTC()}}

	result, err := s.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("MongoCacheStore.DeleteExpired - sweep failed: %w", err)
	}

	return result.DeletedCount, nil
}

// Stats resume o estado da collection de cache (total/ativas/expiradas).
func (s *MongoCacheStore) Stats(ctx context.Context) (domain.CacheStats, error) {
	total, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return domain.CacheStats{}, fmt.Errorf("MongoCacheStore.Stats - total count failed: %w", err)
	}

	expired, err := s.collection.CountDocuments(ctx, bson.M{"expiresAt": bson.M{"$lt": time.Now().UTC()}})
	if err != nil {
		return domain.CacheStats{}, fmt.Errorf("MongoCacheStore.Stats - expired count failed: %w", err)
	}

	return domain.CacheStats{
		Total:   total,
		Active:  total - expired,
		Expired: expired,
	}, nil
}
