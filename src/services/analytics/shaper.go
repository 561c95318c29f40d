package analytics

import (
	"ouvidoria-analytics/src/domain"

	"go.mongodb.org/mongo-driver/bson"
)

// ShapeOverview molda o documento cru do $facet no contrato estável do
// dashboard. Função pura: sem I/O, sem estado. Facetas ausentes ou vazias
// viram arrays vazios, nunca null, para o front não precisar de null-check.
func ShapeOverview(raw bson.M) domain.OverviewResult {
	result := domain.OverviewResult{
		TotalManifestations:      scalarCount(raw, "total"),
		Last7Days:                scalarCount(raw, "last7Days"),
		Last30Days:               scalarCount(raw, "last30Days"),
		ManifestationsByStatus:   []domain.StatusCount{},
		ManifestationsByMonth:    []domain.MonthCount{},
		ManifestationsByDay:      []domain.DayCount{},
		ManifestationsByTheme:    []domain.ThemeCount{},
		ManifestationsBySubject:  []domain.SubjectCount{},
		ManifestationsByOrgan:    []domain.OrganCount{},
		ManifestationsByType:     []domain.TypeCount{},
		ManifestationsByChannel:  []domain.ChannelCount{},
		ManifestationsByPriority: []domain.PriorityCount{},
		ManifestationsByUnit:     []domain.UnitCount{},
	}

	for _, item := range facetItems(raw, "porStatus") {
		value := stringValue(item["_id"])
		result.ManifestationsByStatus = append(result.ManifestationsByStatus, domain.StatusCount{
			Status:   value,
			Count:    int64Value(item["count"]),
			LegacyID: value,
		})
	}

	for _, item := range facetItems(raw, "porMes") {
		value := stringValue(item["month"])
		result.ManifestationsByMonth = append(result.ManifestationsByMonth, domain.MonthCount{
			Month:    value,
			Count:    int64Value(item["count"]),
			YM:       value,
			LegacyID: value,
		})
	}

	for _, item := range facetItems(raw, "porDia") {
		value := stringValue(item["date"])
		result.ManifestationsByDay = append(result.ManifestationsByDay, domain.DayCount{
			Date:     value,
			Count:    int64Value(item["count"]),
			LegacyID: value,
		})
	}

	for _, item := range facetItems(raw, "porTema") {
		value := stringValue(item["_id"])
		result.ManifestationsByTheme = append(result.ManifestationsByTheme, domain.ThemeCount{
			Theme:    value,
			Count:    int64Value(item["count"]),
			LegacyID: value,
		})
	}

	for _, item := range facetItems(raw, "porAssunto") {
		value := stringValue(item["_id"])
		result.ManifestationsBySubject = append(result.ManifestationsBySubject, domain.SubjectCount{
			Subject:  value,
			Count:    int64Value(item["count"]),
			Assunto:  value,
			LegacyID: value,
		})
	}

	for _, item := range facetItems(raw, "porOrgaos") {
		value := stringValue(item["_id"])
		result.ManifestationsByOrgan = append(result.ManifestationsByOrgan, domain.OrganCount{
			Organ:    value,
			Count:    int64Value(item["count"]),
			Orgaos:   value,
			LegacyID: value,
		})
	}

	for _, item := range facetItems(raw, "porTipo") {
		result.ManifestationsByType = append(result.ManifestationsByType, domain.TypeCount{
			Type:  stringValue(item["_id"]),
			Count: int64Value(item["count"]),
		})
	}

	for _, item := range facetItems(raw, "porCanal") {
		result.ManifestationsByChannel = append(result.ManifestationsByChannel, domain.ChannelCount{
			Channel: stringValue(item["_id"]),
			Count:   int64Value(item["count"]),
		})
	}

	for _, item := range facetItems(raw, "porPrioridade") {
		result.ManifestationsByPriority = append(result.ManifestationsByPriority, domain.PriorityCount{
			Priority: stringValue(item["_id"]),
			Count:    int64Value(item["count"]),
		})
	}

	for _, item := range facetItems(raw, "porUnidadeCadastro") {
		value := stringValue(item["_id"])
		result.ManifestationsByUnit = append(result.ManifestationsByUnit, domain.UnitCount{
			Unit:            value,
			Count:           int64Value(item["count"]),
			UnidadeCadastro: value,
		})
	}

	return result
}

// ShapeStatusSummary molda o resultado do pipeline de status.
func ShapeStatusSummary(raw bson.M) domain.StatusSummary {
	summary := domain.StatusSummary{
		Total:    scalarCount(raw, "total"),
		ByStatus: []domain.StatusCount{},
	}

	for _, item := range facetItems(raw, "porStatus") {
		value := stringValue(item["_id"])
		summary.ByStatus = append(summary.ByStatus, domain.StatusCount{
			Status:   value,
			Count:    int64Value(item["count"]),
			LegacyID: value,
		})
	}

	return summary
}

// facetItems extrai os documentos de uma faceta, tolerando os tipos que o
// driver devolve para arrays (bson.A ou []bson.M).
func facetItems(raw bson.M, name string) []bson.M {
	if raw == nil {
		return nil
	}

	switch value := raw[name].(type) {
	case bson.A:
		items := make([]bson.M, 0, len(value))
		for _, element := range value {
			if doc, ok := element.(bson.M); ok {
				items = append(items, doc)
			}
		}
		return items
	case []bson.M:
		return value
	case []interface{}:
		items := make([]bson.M, 0, len(value))
		for _, element := range value {
			if doc, ok := element.(bson.M); ok {
				items = append(items, doc)
			}
		}
		return items
	default:
		return nil
	}
}

// scalarCount lê facetas escalares no formato [{<campo>: n}] (saída de
// $count), vazias quando não há registros na janela.
func scalarCount(raw bson.M, name string) int64 {
	items := facetItems(raw, name)
	if len(items) == 0 {
		return 0
	}

	for _, value := range items[0] {
		if n := int64Value(value); n != 0 {
			return n
		}
	}

	return 0
}

// int64Value normaliza os tipos numéricos que o BSON entrega para contagens.
func int64Value(value interface{}) int64 {
	switch n := value.(type) {
	case int32:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func stringValue(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}
