package test_seeder

import (
	"context"
	"fmt"

	"ouvidoria-analytics/src/domain"
	"ouvidoria-analytics/src/infra/mongodb"

	"go.mongodb.org/mongo-driver/bson"
)

// InsertManifestations inserts a batch of manifestations for testing
func (ts TestSeeder) InsertManifestations(ctx context.Context, manifestations []domain.Manifestation) {
	documents := make([]interface{}, 0, len(manifestations))
	for _, m := range manifestations {
		documents = append(documents, m)
	}

	if _, err := ts.db.Collection(mongodb.RecordsCollection).InsertMany(ctx, documents); err != nil {
		panic(fmt.Sprintf("Seeder.InsertManifestations failed: %v", err))
	}
}

// CountCacheEntries counts cache entries whose key starts with prefix
func (ts TestSeeder) CountCacheEntries(ctx context.Context, prefix string) int64 {
	filter := bson.M{}
	if prefix != "" {
		filter = bson.M{"key": bson.M{"$regex": "^" + prefix}}
	}

	count, err := ts.db.Collection(mongodb.CacheCollection).CountDocuments(ctx, filter)
	if err != nil {
		panic(fmt.Sprintf("Seeder.CountCacheEntries failed: %v", err))
	}

	return count
}
