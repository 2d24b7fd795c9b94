// Package event 发布车辆生命周期事件。发布失败不影响业务操作。
package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

type Type string

const (
	CarCreated Type = "car.created"
	CarDeleted Type = "car.deleted"
)

type CarEvent struct {
	Type       Type      `json:"type"`
	CarID      string    `json:"carId"`
	UserID     string    `json:"userId"`
	ImageCount int       `json:"imageCount"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, evt CarEvent) error
	Close() error
}

// NopPublisher 未启用事件时使用
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, CarEvent) error { return nil }
func (NopPublisher) Close() error                            { return nil }

// messageWriter kafka.Writer 的子集
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	w messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}}
}

// Publish 以用户 ID 作为分区键，同一用户的事件保持顺序
func (p *KafkaPublisher) Publish(ctx context.Context, evt CarEvent) error {
	msg, err := encode(evt)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }

func encode(evt CarEvent) (kafka.Message, error) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	value, err := json.Marshal(evt)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(evt.UserID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(evt.Type)},
		},
		Time: evt.OccurredAt,
	}, nil
}
