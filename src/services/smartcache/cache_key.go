package smartcache

import (
	"crypto/md5"
	"encoding/hex"

	"ouvidoria-analytics/src/domain"
)

// DefaultSchemaVersion sobe quando o contrato moldado de saída muda; as
// entradas antigas ficam inalcançáveis (não são purgadas ativamente).
const DefaultSchemaVersion = "v1"

// tamanho do fingerprint em caracteres hex; suficiente para a cardinalidade
// esperada de combinações de filtro (centenas por endpoint)
const fingerprintLength = 8

// Fingerprint calcula o hash fixo da assinatura normalizada de filtros.
// qualifier discrimina variações do mesmo endpoint (ex.: o campo do
// endpoint distinct) sem abrir entrada nova na tabela de TTL.
func Fingerprint(qualifier string, filters *domain.FilterSet) string {
	normalized := ""
	if filters != nil {
		normalized = filters.Normalize()
	}
	if qualifier != "" {
		normalized = qualifier + "|" + normalized
	}

	hash := md5.Sum([]byte(normalized))
	return hex.EncodeToString(hash[:])[:fingerprintLength]
}

// MakeKey deriva a chave de cache opaca: endpoint:fingerprint:versão.
// Estável para filtros iguais em qualquer ordem de inserção.
func MakeKey(endpoint, qualifier string, filters *domain.FilterSet, schemaVersion string) string {
	return endpoint + ":" + Fingerprint(qualifier, filters) + ":" + schemaVersion
}
