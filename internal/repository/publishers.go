package repository

import (
	"context"
	"fmt"

	"FinDash/internal/domain/models"
	pkgkafka "FinDash/pkg/kafka"

	"github.com/segmentio/kafka-go"
)

// ReasonHeader carries ChangeEvent.Reason on change messages.
const ReasonHeader = "reason"

// KafkaPublisher publishes change and forecast events to Kafka.
type KafkaPublisher struct {
	producer       *pkgkafka.Producer
	changesTopic   string
	forecastsTopic string
}

func NewKafkaPublisher(p *pkgkafka.Producer, changesTopic, forecastsTopic string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, changesTopic: changesTopic, forecastsTopic: forecastsTopic}
}

// PublishChange keys by collection so a collection's events stay ordered.
func (k *KafkaPublisher) PublishChange(ctx context.Context, ev models.ChangeEvent) error {
	msg := pkgkafka.Message{
		Key:     []byte(ev.Collection),
		Value:   ev,
		Headers: []kafka.Header{{Key: ReasonHeader, Value: []byte(ev.Reason)}},
	}
	if err := k.producer.PublishBatch(ctx, k.changesTopic, []pkgkafka.Message{msg}); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

func (k *KafkaPublisher) PublishForecast(ctx context.Context, f *models.RevenueForecast) error {
	if k.forecastsTopic == "" {
		return nil
	}
	if err := k.producer.Publish(ctx, k.forecastsTopic, []byte("revenue"), f.Record()); err != nil {
		return fmt.Errorf("publish forecast: %w", err)
	}
	return nil
}

// ChangeApplier consumes change events in process.
type ChangeApplier interface {
	Apply(ctx context.Context, ev models.ChangeEvent) error
}

// LocalPublisher applies change events synchronously when Kafka is disabled.
// Forecast events have no local consumer and are dropped.
type LocalPublisher struct {
	applier ChangeApplier
}

func NewLocalPublisher(a ChangeApplier) *LocalPublisher {
	return &LocalPublisher{applier: a}
}

func (p *LocalPublisher) PublishChange(ctx context.Context, ev models.ChangeEvent) error {
	if p.applier == nil {
		return nil
	}
	return p.applier.Apply(ctx, ev)
}

func (p *LocalPublisher) PublishForecast(context.Context, *models.RevenueForecast) error {
	return nil
}
