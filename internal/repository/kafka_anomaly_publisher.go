package repository

import (
	"context"
	"time"

	"SectorVol/internal/domain/models"
	domrepo "SectorVol/internal/domain/repository"
	pkgkafka "SectorVol/pkg/kafka"
)

var _ domrepo.AnomalyPublisher = (*KafkaAnomalyPublisher)(nil)

type messageProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaAnomalyPublisher sends anomaly reports to a topic keyed by sector.
type KafkaAnomalyPublisher struct {
	producer messageProducer
	topic    string
}

// NewKafkaAnomalyPublisher creates Kafka publisher.
func NewKafkaAnomalyPublisher(producer *pkgkafka.Producer, topic string) *KafkaAnomalyPublisher {
	return &KafkaAnomalyPublisher{producer: producer, topic: topic}
}

type anomalyMessage struct {
	Sector     string              `json:"sector"`
	Start      string              `json:"start"`
	End        string              `json:"end"`
	Tickers    []string            `json:"tickers"`
	Threshold  float64             `json:"threshold"`
	Rows       []models.AnomalyRow `json:"rows"`
	ComputedAt time.Time           `json:"computed_at"`
}

func (p *KafkaAnomalyPublisher) Publish(ctx context.Context, r *models.AnomalyReport) error {
	if r == nil || r.Anomalies.Empty() {
		return nil
	}
	return p.producer.Publish(ctx, p.topic, []byte(r.Sector), anomalyMessage{
		Sector:     r.Sector,
		Start:      r.Start.Format(time.DateOnly),
		End:        r.End.Format(time.DateOnly),
		Tickers:    r.Anomalies.Tickers,
		Threshold:  r.Anomalies.Threshold,
		Rows:       r.Anomalies.Rows,
		ComputedAt: r.ComputedAt,
	})
}

func (p *KafkaAnomalyPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
