package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"ouvidoria-analytics/src/domain"
	"ouvidoria-analytics/src/services/smartcache"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// QueryExecutor é a fatia do repositório de agregações que o serviço
// consome; em teste entra um executor falso sem MongoDB.
type QueryExecutor interface {
	Aggregate(ctx context.Context, collection string, pipeline mongo.Pipeline) ([]bson.M, error)
	DistinctValues(ctx context.Context, collection string, field string) ([]string, error)
}

// AnalyticsService liga builder -> executor -> shaper por trás do
// SmartCache. Cada operação é um endpoint da tabela de TTL.
type AnalyticsService struct {
	logger     *slog.Logger
	executor   QueryExecutor
	cache      *smartcache.SmartCache
	collection string
}

func NewAnalyticsService(logger *slog.Logger, executor QueryExecutor, cache *smartcache.SmartCache, collection string) *AnalyticsService {
	return &AnalyticsService{
		logger:     logger,
		executor:   executor,
		cache:      cache,
		collection: collection,
	}
}

// Overview computa (ou serve do cache) o overview multi-faceta completo.
func (s *AnalyticsService) Overview(ctx context.Context, filters *domain.FilterSet) (json.RawMessage, error) {
	return s.cache.GetOrCompute(ctx, "overview", "", filters, func(ctx context.Context) (interface{}, error) {
		pipeline := BuildOverviewPipeline(filters, time.Now().UTC())

		results, err := s.executor.Aggregate(ctx, s.collection, pipeline)
		if err != nil {
			return nil, fmt.Errorf("AnalyticsService.Overview - aggregation failed: %w", err)
		}

		return ShapeOverview(firstDocument(results)), nil
	})
}

// StatusSummary computa (ou serve do cache) a quebra por status com total.
func (s *AnalyticsService) StatusSummary(ctx context.Context, filters *domain.FilterSet) (json.RawMessage, error) {
	return s.cache.GetOrCompute(ctx, "status", "", filters, func(ctx context.Context) (interface{}, error) {
		pipeline := BuildStatusPipeline(filters)

		results, err := s.executor.Aggregate(ctx, s.collection, pipeline)
		if err != nil {
			return nil, fmt.Errorf("AnalyticsService.StatusSummary - aggregation failed: %w", err)
		}

		return ShapeStatusSummary(firstDocument(results)), nil
	})
}

// DistinctValues computa (ou serve do cache) os valores distintos de um
// campo do vocabulário. O campo entra no fingerprint da chave; o TTL é o do
// endpoint distinct (valores distintos mudam pouco).
func (s *AnalyticsService) DistinctValues(ctx context.Context, field string) (json.RawMessage, error) {
	if !domain.IsRelevantField(field) {
		return nil, fmt.Errorf("AnalyticsService.DistinctValues - field %q: %w", field, domain.ErrInvalidFilter)
	}

	return s.cache.GetOrCompute(ctx, "distinct", field, nil, func(ctx context.Context) (interface{}, error) {
		values, err := s.executor.DistinctValues(ctx, s.collection, field)
		if err != nil {
			return nil, fmt.Errorf("AnalyticsService.DistinctValues - query failed: %w", err)
		}

		if values == nil {
			values = []string{}
		}

		return domain.DistinctValuesResult{Field: field, Values: values}, nil
	})
}

func firstDocument(results []bson.M) bson.M {
	if len(results) == 0 {
		return bson.M{}
	}
	return results[0]
}
