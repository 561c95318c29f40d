package test_seeder

import (
	"context"
	"fmt"

	"ouvidoria-analytics/src/infra/mongodb"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type TestSeeder struct {
	db *mongo.Database
}

func New(db *mongo.Database) TestSeeder {
	return TestSeeder{db: db}
}

func (ts TestSeeder) TruncateCollections(ctx context.Context) {
	collections := []string{
		mongodb.RecordsCollection,
		mongodb.CacheCollection,
	}

	for _, collection := range collections {
		if _, err := ts.db.Collection(collection).DeleteMany(ctx, bson.M{}); err != nil {
			panic(fmt.Sprintf("Failed to truncate %s: %v", collection, err))
		}
	}
}
