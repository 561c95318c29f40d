package debezium_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"ouvidoria-analytics/src/domain"
	"ouvidoria-analytics/src/infra/debezium"
)

var _ = Describe("CDCSerializer", func() {
	serializer := &debezium.CDCSerializer{IncludeCollections: []string{"records"}}

	Context("ParseCDCEvent", func() {
		When("parsing a valid update event", func() {
			It("should decode the envelope", func() {
				// ARRANGE
				message := []byte(`{
					"op": "u",
					"source": {"db": "ouvidoria", "rs": "rs0", "collection": "records"},
					"updateDescription": {
						"updatedFields": "{\"status\": \"Concluída\"}",
						"removedFields": ["prioridade"]
					},
					"ts_ms": 1756730000000
				}`)

				// ACT
				event, err := serializer.ParseCDCEvent(message)

				// ASSERT
				Expect(err).NotTo(HaveOccurred())
				Expect(event.Operation).To(Equal("u"))
				Expect(event.Source.Collection).To(Equal("records"))
				Expect(event.UpdateDescription.RemovedFields).To(Equal([]string{"prioridade"}))
			})
		})

		When("the payload is not JSON", func() {
			It("should fail", func() {
				_, err := serializer.ParseCDCEvent([]byte(`not json`))
				Expect(err).To(HaveOccurred())
			})
		})

		When("the source collection is missing", func() {
			It("should fail validation", func() {
				_, err := serializer.ParseCDCEvent([]byte(`{"op": "u", "source": {"db": "ouvidoria"}}`))
				Expect(err).To(MatchError(ContainSubstring("missing source collection")))
			})
		})

		When("the operation code is unknown", func() {
			It("should fail validation", func() {
				_, err := serializer.ParseCDCEvent([]byte(`{"op": "x", "source": {"collection": "records"}}`))
				Expect(err).To(MatchError(ContainSubstring("invalid operation")))
			})
		})

		When("a create event has no after document", func() {
			It("should fail validation", func() {
				_, err := serializer.ParseCDCEvent([]byte(`{"op": "c", "source": {"collection": "records"}}`))
				Expect(err).To(MatchError(ContainSubstring("missing 'after' document")))
			})
		})
	})

	Context("ShouldProcessEvent", func() {
		It("should accept monitored collections and reject the rest", func() {
			monitored := &debezium.CDCEvent{Source: debezium.CDCSource{Collection: "records"}}
			other := &debezium.CDCEvent{Source: debezium.CDCSource{Collection: "audit_log"}}

			Expect(serializer.ShouldProcessEvent(monitored)).To(BeTrue())
			Expect(serializer.ShouldProcessEvent(other)).To(BeFalse())
		})
	})

	Context("ToChangeEvent", func() {
		It("should unwrap the JSON-string payloads of the Mongo connector", func() {
			// ARRANGE
			event := &debezium.CDCEvent{
				Operation: "u",
				Source:    debezium.CDCSource{Collection: "records"},
				UpdateDescription: &debezium.CDCUpdateDescription{
					UpdatedFields: `{"status": "Concluída", "descricao": "texto"}`,
					RemovedFields: []string{"prioridade"},
				},
			}

			// ACT
			changeEvent, err := serializer.ToChangeEvent("doc-1", event)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(changeEvent.Operation).To(Equal(domain.OperationUpdate))
			Expect(changeEvent.DocumentID).To(Equal("doc-1"))
			Expect(changeEvent.UpdatedFields).To(HaveKeyWithValue("status", "Concluída"))
			Expect(changeEvent.RemovedFields).To(Equal([]string{"prioridade"}))
			Expect(changeEvent.EventID).NotTo(BeEmpty())
		})

		It("should decode the after document on inserts", func() {
			// ARRANGE
			event := &debezium.CDCEvent{
				Operation: "c",
				After:     `{"status": "Aberta", "tema": "Saúde"}`,
				Source:    debezium.CDCSource{Collection: "records"},
			}

			// ACT
			changeEvent, err := serializer.ToChangeEvent("doc-2", event)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(changeEvent.Operation).To(Equal(domain.OperationInsert))
			Expect(changeEvent.FullDocument).To(HaveKeyWithValue("tema", "Saúde"))
		})

		It("should fail on a malformed after payload", func() {
			// ARRANGE
			event := &debezium.CDCEvent{
				Operation: "c",
				After:     `{broken`,
				Source:    debezium.CDCSource{Collection: "records"},
			}

			// ACT
			_, err := serializer.ToChangeEvent("doc-3", event)

			// ASSERT
			Expect(err).To(HaveOccurred())
		})
	})

	Context("MapCDCOperation", func() {
		It("should map snapshot reads to inserts", func() {
			Expect(debezium.MapCDCOperation("r")).To(Equal(domain.OperationInsert))
		})

		It("should map the remaining codes to their operations", func() {
			Expect(debezium.MapCDCOperation("c")).To(Equal(domain.OperationInsert))
			Expect(debezium.MapCDCOperation("u")).To(Equal(domain.OperationUpdate))
			Expect(debezium.MapCDCOperation("d")).To(Equal(domain.OperationDelete))
		})
	})
})
