package debezium

import (
	"encoding/json"
	"fmt"

	"ouvidoria-analytics/src/domain"

	"github.com/google/uuid"
)

// CDCSerializer handles parsing and validation of CDC messages
type CDCSerializer struct {
	IncludeCollections []string
}

// IsCollectionMonitored checks if the collection should be processed
func (s *CDCSerializer) IsCollectionMonitored(collection string) bool {
	for _, included := range s.IncludeCollections {
		if collection == included {
			return true
		}
	}
	return false
}

// ParseCDCEvent deserializes a Kafka message into a CDC event
func (s *CDCSerializer) ParseCDCEvent(messageValue []byte) (*CDCEvent, error) {
	var cdcEvent CDCEvent
	if err := json.Unmarshal(messageValue, &cdcEvent); err != nil {
		return nil, fmt.Errorf("failed to unmarshal CDC event: %w", err)
	}

	if err := s.validateCDCEvent(&cdcEvent); err != nil {
		return nil, fmt.Errorf("invalid CDC event: %w", err)
	}

	return &cdcEvent, nil
}

func (s *CDCSerializer) validateCDCEvent(event *CDCEvent) error {
	if event.Source.Collection == "" {
		return fmt.Errorf("missing source collection")
	}

	if event.Operation == "" {
		return fmt.Errorf("missing operation")
	}

	validOps := map[string]bool{"c": true, "u": true, "d": true, "r": true}
	if !validOps[event.Operation] {
		return fmt.Errorf("invalid operation: %s", event.Operation)
	}

	if (event.Operation == "c" || event.Operation == "r") && event.After == "" {
		return fmt.Errorf("missing 'after' document for operation %s", event.Operation)
	}

	return nil
}

// ShouldProcessEvent checks if the CDC event should be processed
func (s *CDCSerializer) ShouldProcessEvent(event *CDCEvent) bool {
	return s.IsCollectionMonitored(event.Source.Collection)
}

// ToChangeEvent traduz o evento CDC para o evento de domínio consumido pelo
// watcher. documentID vem da chave da mensagem Kafka (chave de partição do
// connector).
func (s *CDCSerializer) ToChangeEvent(documentID string, event *CDCEvent) (domain.ChangeEvent, error) {
	changeEvent := domain.ChangeEvent{
		EventID:    uuid.New().String(),
		Operation:  MapCDCOperation(event.Operation),
		DocumentID: documentID,
	}

	if event.After != "" {
		var fullDocument map[string]interface{}
		if err := json.Unmarshal([]byte(event.After), &fullDocument); err != nil {
			return domain.ChangeEvent{}, fmt.Errorf("failed to unmarshal 'after' document: %w", err)
		}
		changeEvent.FullDocument = fullDocument
	}

	if event.UpdateDescription != nil {
		if event.UpdateDescription.UpdatedFields != "" {
			var updatedFields map[string]interface{}
			if err := json.Unmarshal([]byte(event.UpdateDescription.UpdatedFields), &updatedFields); err != nil {
				return domain.ChangeEvent{}, fmt.Errorf("failed to unmarshal updated fields: %w", err)
			}
			changeEvent.UpdatedFields = updatedFields
		}
		changeEvent.RemovedFields = event.UpdateDescription.RemovedFields
	}

	return changeEvent, nil
}

// MapCDCOperation converts a CDC operation code to the domain operation
func MapCDCOperation(cdcOp string) domain.OperationType {
	switch cdcOp {
	case "c":
		return domain.OperationInsert
	case "u":
		return domain.OperationUpdate
	case "d":
		return domain.OperationDelete
	case "r":
		return domain.OperationInsert // Read (snapshot) treated as insert
	default:
		return domain.OperationType("unknown")
	}
}
