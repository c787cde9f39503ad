package kafka

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"

	"tur-booking/internal/config"
	"tur-booking/internal/models"
)

// Producer streams booking lifecycle events. In mock mode events are only
// logged, which keeps dev setups working without a broker.
type Producer struct {
	createdWriter  *kafka.Writer
	archivedWriter *kafka.Writer
	mockMode       bool
}

func NewProducer(cfg config.KafkaConfig) *Producer {
	if cfg.MockMode || !cfg.Enabled {
		return &Producer{mockMode: true}
	}
	return &Producer{
		createdWriter: kafka.NewWriter(kafka.WriterConfig{
			Brokers: cfg.Brokers,
			Topic:   cfg.Topics.BookingCreated,
		}),
		archivedWriter: kafka.NewWriter(kafka.WriterConfig{
			Brokers: cfg.Brokers,
			Topic:   cfg.Topics.BookingArchived,
		}),
	}
}

// PublishBookingCreated streams the booking creation event to Kafka
func (p *Producer) PublishBookingCreated(booking models.Booking) error {
	msgBytes, err := json.Marshal(booking)
	if err != nil {
		return err
	}

	if p.mockMode {
		log.Printf("KAFKA(mock) [booking_created]: %s", string(msgBytes))
		return nil
	}

	return p.createdWriter.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(booking.ID),
			Value: msgBytes,
		},
	)
}

// PublishBookingArchived streams the archival event to Kafka
func (p *Producer) PublishBookingArchived(record models.HistoryRecord) error {
	msgBytes, err := json.Marshal(record)
	if err != nil {
		return err
	}

	if p.mockMode {
		log.Printf("KAFKA(mock) [booking_archived]: %s", string(msgBytes))
		return nil
	}

	return p.archivedWriter.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(record.ID),
			Value: msgBytes,
		},
	)
}

// Close shuts down the underlying writers.
func (p *Producer) Close() error {
	if p.mockMode {
		return nil
	}
	if err := p.createdWriter.Close(); err != nil {
		return err
	}
	return p.archivedWriter.Close()
}
