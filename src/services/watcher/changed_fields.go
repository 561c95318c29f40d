package watcher

import (
	"strings"

	"ouvidoria-analytics/src/domain"
)

// ChangedFields deriva o conjunto de campos lógicos tocados por um evento do
// change feed, já na ordem estável do vocabulário:
//
//   - insert/replace: campos relevantes presentes com valor não nulo no
//     documento novo;
//   - update: campos atualizados (com prefixos de operador removidos e
//     caminhos aninhados truncados no primeiro segmento) mais campos
//     removidos, intersectados com o vocabulário;
//   - delete: todos os campos relevantes — não há documento antigo para
//     inspecionar, então assume o pior caso (invalidar a mais é aceitável,
//     a menos não).
func ChangedFields(event domain.ChangeEvent) []domain.Field {
	touched := make(map[domain.Field]bool)

	switch event.Operation {
	case domain.OperationInsert, domain.OperationReplace:
		for _, field := range domain.RelevantFields() {
			if value, ok := event.FullDocument[string(field)]; ok && !isEmptyValue(value) {
				touched[field] = true
			}
		}

	case domain.OperationUpdate:
		for path := range event.UpdatedFields {
			if field, ok := normalizeFieldPath(path); ok {
				touched[field] = true
			}
		}
		for _, path := range event.RemovedFields {
			if field, ok := normalizeFieldPath(path); ok {
				touched[field] = true
			}
		}

	case domain.OperationDelete:
		for _, field := range domain.RelevantFields() {
			touched[field] = true
		}
	}

	fields := make([]domain.Field, 0, len(touched))
	for _, field := range domain.RelevantFields() {
		if touched[field] {
			fields = append(fields, field)
		}
	}

	return fields
}

// normalizeFieldPath reduz um caminho de campo vindo do feed ao campo
// lógico de topo: remove prefixos de operador ($set., $unset.) e trunca
// caminhos aninhados no primeiro segmento. Só campos de topo do vocabulário
// são rastreados; update aninhado sob um campo relevante conta como mudança
// naquele campo.
func normalizeFieldPath(path string) (domain.Field, bool) {
	path = strings.TrimPrefix(path, "$set.")
	path = strings.TrimPrefix(path, "$unset.")

	if i := strings.IndexByte(path, '.'); i >= 0 {
		path = path[:i]
	}

	if !domain.IsRelevantField(path) {
		return "", false
	}

	return domain.Field(path), true
}

func isEmptyValue(value interface{}) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return s == ""
	}
	return false
}
