package mongodb

import (
	"context"
	"fmt"
	"log/slog"

	"ouvidoria-analytics/src/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChangeStreamFeed expõe o change stream da collection de registros como um
// feed de domain.ChangeEvent. Uma chamada a Watch bloqueia até o stream cair
// ou o contexto ser cancelado; o loop de reconexão fica a cargo do watcher.
type ChangeStreamFeed struct {
	logger     *slog.Logger
	db         *mongo.Database
	collection string
}

func NewChangeStreamFeed(logger *slog.Logger, db *mongo.Database, collection string) *ChangeStreamFeed {
	return &ChangeStreamFeed{
		logger:     logger,
		db:         db,
		collection: collection,
	}
}

type changeDocument struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID interface{} `bson:"_id"`
	} `bson:"documentKey"`
	FullDocument      map[string]interface{} `bson:"fullDocument"`
	UpdateDescription struct {
		UpdatedFields map[string]interface{} `bson:"updatedFields"`
		RemovedFields []string               `bson:"removedFields"`
	} `bson:"updateDescription"`
}

// Watch abre o change stream filtrado a insert/update/replace/delete e
// entrega cada evento traduzido ao handler. Erros do handler são logados e
// não derrubam o stream; erro do próprio stream é retornado ao chamador.
func (f *ChangeStreamFeed) Watch(ctx context.Context, handler func(context.Context, domain.ChangeEvent) error) error {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "operationType", Value: bson.D{
				{Key: "$in", Value: bson.A{"insert", "update", "replace", "delete"}},
			}},
		}}},
	}

	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	stream, err := f.db.Collection(f.collection).Watch(ctx, pipeline, opts)
	if err != nil {
		return fmt.Errorf("ChangeStreamFeed.Watch - failed to open change stream: %w", err)
	}
	defer stream.Close(context.Background())

	f.logger.Info("Change stream opened", "collection", f.collection)

	for stream.Next(ctx) {
		var doc changeDocument
		if err := stream.Decode(&doc); err != nil {
			f.logger.Error("Failed to decode change stream event", "error", err)
			continue
		}

		event := domain.ChangeEvent{
			EventID:       uuid.New().String(),
			Operation:     domain.OperationType(doc.OperationType),
			DocumentID:    fmt.Sprintf("%v", doc.DocumentKey.ID),
			UpdatedFields: doc.UpdateDescription.UpdatedFields,
			RemovedFields: doc.UpdateDescription.RemovedFields,
			FullDocument:  doc.FullDocument,
		}

		if err := handler(ctx, event); err != nil {
			f.logger.Error("Change event handler failed",
				"error", err,
				"event_id", event.EventID,
				"operation", event.Operation)
		}
	}

	if err := stream.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("ChangeStreamFeed.Watch - change stream failed: %w", err)
	}

	return nil
}
