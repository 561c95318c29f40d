package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ouvidoria-analytics/src/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// Acima deste número de estágios a agregação pode estourar o limite de
	// memória do servidor; libera spill para disco.
	diskUseStageThreshold = 10

	// Código do servidor para MaxTimeMSExpired.
	maxTimeExpiredCode = 50
)

// AnalyticsQueryRepository executa pipelines de agregação contra a collection
// de registros. É a única operação de longa latência do motor: roda com teto
// de execução e loga queries lentas.
type AnalyticsQueryRepository struct {
	logger        *slog.Logger
	db            *mongo.Database
	maxTime       time.Duration
	slowThreshold time.Duration
}

func NewAnalyticsQueryRepository(logger *slog.Logger, db *mongo.Database, maxTime, slowThreshold time.Duration) *AnalyticsQueryRepository {
	return &AnalyticsQueryRepository{
		logger:        logger,
		db:            db,
		maxTime:       maxTime,
		slowThreshold: slowThreshold,
	}
}

// Aggregate roda o pipeline e devolve os documentos crus do resultado.
// Pipelines com muitos estágios ganham allowDiskUse automaticamente; estouro
// do teto de execução vira domain.ErrQueryTimeout.
func (r *AnalyticsQueryRepository) Aggregate(ctx context.Context, collection string, pipeline mongo.Pipeline) ([]bson.M, error) {
	opts := options.Aggregate().
		SetAllowDiskUse(len(pipeline) > diskUseStageThreshold).
		SetMaxTime(r.maxTime)

	started := time.Now()

	cursor, err := r.db.Collection(collection).Aggregate(ctx, pipeline, opts)
	if err != nil {
		return nil, r.wrapQueryError("AnalyticsQueryRepository.Aggregate", collection, err)
	}
	defer cursor.Close(ctx)

	var results []bson.M
	if err := cursor.All(ctx, &results); err != nil {
		return nil, r.wrapQueryError("AnalyticsQueryRepository.Aggregate", collection, err)
	}

	if duration := time.Since(started); duration > r.slowThreshold {
		r.logger.Warn("Slow aggregation",
			"collection", collection,
			"duration_ms", duration.Milliseconds(),
			"stages", len(pipeline))
	}

	return results, nil
}

// DistinctValues devolve os valores distintos não vazios de um campo,
// ordenados alfabeticamente.
func (r *AnalyticsQueryRepository) DistinctValues(ctx context.Context, collection string, field string) ([]string, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$" + field}}}},
		bson.D{{Key: "$match", Value: bson.D{{Key: "_id", Value: bson.D{
			{Key: "$nin", Value: bson.A{nil, ""}},
		}}}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "value", Value: "$_id"},
		}}},
	}

	results, err := r.Aggregate(ctx, collection, pipeline)
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(results))
	for _, item := range results {
		if value, ok := item["value"].(string); ok && value != "" {
			values = append(values, value)
		}
	}

	return values, nil
}

func (r *AnalyticsQueryRepository) wrapQueryError(op, collection string, err error) error {
	if r.isTimeout(err) {
		return fmt.Errorf("%s - collection %s: %w", op, collection, domain.ErrQueryTimeout)
	}

	return fmt.Errorf("%s - collection %s: %w", op, collection, err)
}

func (r *AnalyticsQueryRepository) isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == maxTimeExpiredCode {
		return true
	}

	return mongo.IsTimeout(err)
}
