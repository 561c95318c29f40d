package domain

// Contrato de saída estável consumido pelo dashboard. Os campos duplicados
// (ym, assunto, orgaos, _id, ...) são aliases legados que o front espera;
// estão listados por faceta e não podem sumir sem subir a versão do schema
// de cache.

type StatusCount struct {
	Status   string `json:"status"`
	Count    int64  `json:"count"`
	LegacyID string `json:"_id"`
}

type MonthCount struct {
	Month    string `json:"month"`
	Count    int64  `json:"count"`
	YM       string `json:"ym"`
	LegacyID string `json:"_id"`
}

type DayCount struct {
	Date     string `json:"date"`
	Count    int64  `json:"count"`
	LegacyID string `json:"_id"`
}

type ThemeCount struct {
	Theme    string `json:"theme"`
	Count    int64  `json:"count"`
	LegacyID string `json:"_id"`
}

type SubjectCount struct {
	Subject  string `json:"subject"`
	Count    int64  `json:"count"`
	Assunto  string `json:"assunto"`
	LegacyID string `json:"_id"`
}

type OrganCount struct {
	Organ    string `json:"organ"`
	Count    int64  `json:"count"`
	Orgaos   string `json:"orgaos"`
	LegacyID string `json:"_id"`
}

type TypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

type ChannelCount struct {
	Channel string `json:"channel"`
	Count   int64  `json:"count"`
}

type PriorityCount struct {
	Priority string `json:"priority"`
	Count    int64  `json:"count"`
}

type UnitCount struct {
	Unit            string `json:"unit"`
	Count           int64  `json:"count"`
	UnidadeCadastro string `json:"unidadeCadastro"`
}

// OverviewResult é o payload moldado do endpoint overview. Toda faceta sem
// registros vem como array vazio, nunca null.
type OverviewResult struct {
	TotalManifestations      int64           `json:"totalManifestations"`
	Last7Days                int64           `json:"last7Days"`
	Last30Days               int64           `json:"last30Days"`
	ManifestationsByStatus   []StatusCount   `json:"manifestationsByStatus"`
	ManifestationsByMonth    []MonthCount    `json:"manifestationsByMonth"`
	ManifestationsByDay      []DayCount      `json:"manifestationsByDay"`
	ManifestationsByTheme    []ThemeCount    `json:"manifestationsByTheme"`
	ManifestationsBySubject  []SubjectCount  `json:"manifestationsBySubject"`
	ManifestationsByOrgan    []OrganCount    `json:"manifestationsByOrgan"`
	ManifestationsByType     []TypeCount     `json:"manifestationsByType"`
	ManifestationsByChannel  []ChannelCount  `json:"manifestationsByChannel"`
	ManifestationsByPriority []PriorityCount `json:"manifestationsByPriority"`
	ManifestationsByUnit     []UnitCount     `json:"manifestationsByUnit"`
}

// StatusSummary é o payload moldado do endpoint status.
type StatusSummary struct {
	Total    int64         `json:"total"`
	ByStatus []StatusCount `json:"byStatus"`
}

// DistinctValuesResult é o payload moldado do endpoint distinct.
type DistinctValuesResult struct {
	Field  string   `json:"field"`
	Values []string `json:"values"`
}

// CacheStats resume o estado da collection de cache.
type CacheStats struct {
	Total   int64 `json:"total"`
	Active  int64 `json:"active"`
	Expired int64 `json:"expired"`
}
