package analytics

import (
	"time"

	"ouvidoria-analytics/src/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Tetos de cardinalidade por faceta. Fazem parte do contrato do endpoint:
// facetas de ranking devolvem top 5, as demais o teto listado (0 = sem teto).
const (
	statusFacetLimit  = 20
	temaFacetLimit    = 5
	assuntoFacetLimit = 20
	orgaosFacetLimit  = 5
	tipoFacetLimit    = 0
	canalFacetLimit   = 10
	priorityNoLimit   = 0
	unidadeFacetLimit = 5

	monthBuckets = 24
	dayBuckets   = 30
)

// BuildOverviewPipeline monta o pipeline de overview: um $match derivado dos
// filtros seguido de um único $facet que computa todas as quebras sobre a
// mesma base filtrada, de modo que as facetas de uma resposta sejam
// mutuamente consistentes. now delimita as janelas móveis (últimos N dias).
func BuildOverviewPipeline(filters *domain.FilterSet, now time.Time) mongo.Pipeline {
	pipeline := mongo.Pipeline{}

	if match := buildMatch(filters); len(match) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}

	pipeline = append(pipeline, bson.D{{Key: "$facet", Value: bson.D{
		{Key: "porStatus", Value: fieldBreakdownFacet(domain.FieldStatus, statusFacetLimit)},
		{Key: "porMes", Value: monthFacet()},
		{Key: "porDia", Value: dayFacet(now)},
		{Key: "porTema", Value: fieldBreakdownFacet(domain.FieldTema, temaFacetLimit)},
		{Key: "porAssunto", Value: fieldBreakdownFacet(domain.FieldAssunto, assuntoFacetLimit)},
		{Key: "porOrgaos", Value: fieldBreakdownFacet(domain.FieldOrgaos, orgaosFacetLimit)},
		{Key: "porTipo", Value: fieldBreakdownFacet(domain.FieldTipoDeManifestacao, tipoFacetLimit)},
		{Key: "porCanal", Value: fieldBreakdownFacet(domain.FieldCanal, canalFacetLimit)},
		{Key: "porPrioridade", Value: fieldBreakdownFacet(domain.FieldPrioridade, priorityNoLimit)},
		{Key: "porUnidadeCadastro", Value: fieldBreakdownFacet(domain.FieldUnidadeCadastro, unidadeFacetLimit)},
		{Key: "total", Value: bson.A{bson.M{"$count": "total"}}},
		{Key: "last7Days", Value: lastDaysFacet(7, now)},
		{Key: "last30Days", Value: lastDaysFacet(30, now)},
	}}})

	return pipeline
}

// BuildStatusPipeline monta o pipeline do endpoint status: quebra por status
// e total, sobre a mesma base filtrada.
func BuildStatusPipeline(filters *domain.FilterSet) mongo.Pipeline {
	pipeline := mongo.Pipeline{}

	if match := buildMatch(filters); len(match) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}

	pipeline = append(pipeline, bson.D{{Key: "$facet", Value: bson.D{
		{Key: "porStatus", Value: fieldBreakdownFacet(domain.FieldStatus, statusFacetLimit)},
		{Key: "total", Value: bson.A{bson.M{"$count": "total"}}},
	}}})

	return pipeline
}

// buildMatch traduz o FilterSet para o $match inicial. O intervalo de datas
// incide sobre createdAt (Date) e dataCriacaoIso (string ISO, comparável
// lexicograficamente) em $or, porque parte da base só tem um dos dois.
func buildMatch(filters *domain.FilterSet) bson.M {
	match := bson.M{}
	if filters == nil {
		return match
	}

	for _, field := range filters.Fields() {
		cond, _ := filters.Condition(field)
		switch cond.Kind {
		case domain.ConditionEquals:
			match[string(field)] = cond.Value
		case domain.ConditionIn:
			match[string(field)] = bson.M{"$in": cond.Values}
		}
	}

	dateRange := filters.DateRange()
	if !dateRange.IsZero() {
		isoBounds := bson.M{}
		createdBounds := bson.M{}

		if dateRange.From != "" {
			isoBounds["$gte"] = dateRange.From
			if from, err := time.Parse("2006-01-02", dateRange.From); err == nil {
				createdBounds["$gte"] = from.UTC()
			}
		}
		if dateRange.To != "" {
			isoBounds["$lte"] = dateRange.To
			if to, err := time.Parse("2006-01-02", dateRange.To); err == nil {
				// limite inclusivo: fim do dia
				createdBounds["$lt"] = to.UTC().Add(24 * time.Hour)
			}
		}

		match["$or"] = bson.A{
			bson.M{"createdAt": createdBounds},
			bson.M{domain.DateFieldISO: isoBounds},
		}
	}

	return match
}

// fieldBreakdownFacet é a quebra padrão por campo: descarta valores
// nulos/vazios, agrupa, ordena por contagem decrescente e aplica o teto.
func fieldBreakdownFacet(field domain.Field, limit int) bson.A {
	stages := bson.A{
		bson.M{"$match": bson.M{string(field): bson.M{
			"$exists": true,
			"$nin":    bson.A{nil, ""},
		}}},
		bson.M{"$group": bson.M{"_id": "$" + string(field), "count": bson.M{"$sum": 1}}},
		bson.M{"$sort": bson.M{"count": -1}},
	}

	if limit > 0 {
		stages = append(stages, bson.M{"$limit": limit})
	}

	return stages
}

// monthFacet agrega por mês do campo de data derivado, devolvendo os 24
// buckets mais recentes em ordem cronológica crescente.
func monthFacet() bson.A {
	return bson.A{
		bson.M{"$addFields": bson.M{"dateField": eventDateExpr()}},
		bson.M{"$match": bson.M{"dateField": bson.M{"$ne": nil}}},
		bson.M{"$group": bson.M{
			"_id": bson.M{
				"year":  bson.M{"$year": "$dateField"},
				"month": bson.M{"$month": "$dateField"},
			},
			"count": bson.M{"$sum": 1},
		}},
		bson.M{"$project": bson.M{
			"_id":   0,
			"count": 1,
			"month": bson.M{"$concat": bson.A{
				bson.M{"$toString": "$_id.year"},
				"-",
				bson.M{"$cond": bson.A{
					bson.M{"$lt": bson.A{"$_id.month", 10}},
					bson.M{"$concat": bson.A{"0", bson.M{"$toString": "$_id.month"}}},
					bson.M{"$toString": "$_id.month"},
				}},
			}},
		}},
		// Recorta os buckets mais recentes antes de voltar à ordem cronológica
		bson.M{"$sort": bson.M{"month": -1}},
		bson.M{"$limit": monthBuckets},
		bson.M{"$sort": bson.M{"month": 1}},
	}
}

// dayFacet agrega por dia do campo de data derivado dentro da janela móvel
// de 30 dias, em ordem cronológica crescente. A janela pode tocar 31 dias de
// calendário; o recorte descarta o mais antigo, nunca o mais recente.
func dayFacet(now time.Time) bson.A {
	return bson.A{
		bson.M{"$addFields": bson.M{"dateField": eventDateExpr()}},
		bson.M{"$match": bson.M{"dateField": bson.M{
			"$ne":  nil,
			"$gte": now.Add(-time.Duration(dayBuckets) * 24 * time.Hour),
		}}},
		bson.M{"$group": bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$dateField"}},
			"count": bson.M{"$sum": 1},
		}},
		bson.M{"$project": bson.M{"_id": 0, "date": "$_id", "count": 1}},
		bson.M{"$sort": bson.M{"date": -1}},
		bson.M{"$limit": dayBuckets},
		bson.M{"$sort": bson.M{"date": 1}},
	}
}

// lastDaysFacet conta os registros com data derivada dentro da janela móvel
// de days dias.
func lastDaysFacet(days int, now time.Time) bson.A {
	return bson.A{
		bson.M{"$addFields": bson.M{"dateField": eventDateExpr()}},
		bson.M{"$match": bson.M{"dateField": bson.M{
			"$ne":  nil,
			"$gte": now.Add(-time.Duration(days) * 24 * time.Hour),
		}}},
		bson.M{"$count": "total"},
	}
}
