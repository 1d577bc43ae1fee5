package utils

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/hlefebvre/coliving-backend/config"
)

var kafkaWriter *kafka.Writer

// ContractEvent is the payload published on the contract-events topic when a
// contract changes state. The notification consumer turns these into emails
// and push messages.
type ContractEvent struct {
	Type           string    `json:"type"` // CONTRACT_SENT, CONTRACT_SIGNED, CONTRACT_ACTIVATED, CONTRACT_TERMINATED
	ContractID     uint      `json:"contract_id"`
	ContractNumber string    `json:"contract_number"`
	BookingID      uint      `json:"booking_id"`
	SignerEmail    string    `json:"signer_email,omitempty"`
	SignerName     string    `json:"signer_name,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// InitializeKafka sets up the shared writer. Kafka is optional: with no
// brokers configured, publishing becomes a no-op and the consumer is not
// started.
func InitializeKafka(cfg *config.Config) {
	if cfg.KafkaBrokers == "" {
		log.Println("ℹ️ Kafka not configured, contract events disabled")
		return
	}

	kafkaWriter = &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(cfg.KafkaBrokers, ",")...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	log.Printf("✅ Kafka writer initialized (topic %s)", cfg.KafkaTopic)
}

// KafkaEnabled reports whether the writer is configured.
func KafkaEnabled() bool {
	return kafkaWriter != nil
}

// PublishContractEvent writes one event; failures are logged, never fatal.
func PublishContractEvent(ctx context.Context, ev ContractEvent) {
	if kafkaWriter == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("❌ Failed to marshal contract event: %v", err)
		return
	}

	err = kafkaWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.ContractNumber),
		Value: payload,
	})
	if err != nil {
		log.Printf("❌ Failed to publish contract event %s: %v", ev.Type, err)
	}
}

// NewContractEventReader builds a reader for the notification consumer.
func NewContractEventReader(cfg *config.Config) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  strings.Split(cfg.KafkaBrokers, ","),
		Topic:    cfg.KafkaTopic,
		GroupID:  "coliving-notifications",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}
