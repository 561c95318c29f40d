package debezium

// CDCEvent represents a raw CDC event from the Debezium MongoDB connector.
// After e UpdatedFields chegam como strings de JSON estendido, não como
// objetos aninhados (particularidade do connector de MongoDB).
type CDCEvent struct {
	After             string                `json:"after"`
	UpdateDescription *CDCUpdateDescription `json:"updateDescription"`
	Source            CDCSource             `json:"source"`
	Operation         string                `json:"op"` // c=create, u=update, d=delete, r=read
	TsMs              int64                 `json:"ts_ms"`
}

type CDCUpdateDescription struct {
	UpdatedFields string   `json:"updatedFields"`
	RemovedFields []string `json:"removedFields"`
}

type CDCSource struct {
	Version    string `json:"version"`
	Connector  string `json:"connector"`
	Name       string `json:"name"`
	TsMs       int64  `json:"ts_ms"`
	Snapshot   string `json:"snapshot"`
	DB         string `json:"db"`
	ReplicaSet string `json:"rs"`
	Collection string `json:"collection"`
}
