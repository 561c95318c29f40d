package domain

// OperationType é o tipo de operação reportado pelo change feed.
type OperationType string

const (
	OperationInsert  OperationType = "insert"
	OperationUpdate  OperationType = "update"
	OperationReplace OperationType = "replace"
	OperationDelete  OperationType = "delete"
)

// ChangeEvent é um evento do change feed da collection de registros, já
// traduzido do formato do transporte (change stream ou Debezium/Kafka).
// Consumido uma única vez pelo watcher, nunca persistido.
type ChangeEvent struct {
	EventID       string
	Operation     OperationType
	DocumentID    string
	UpdatedFields map[string]interface{}
	RemovedFields []string
	FullDocument  map[string]interface{}
}
