package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer folds order-status messages from the broker into the hub.
type Consumer struct {
	hub    *Hub
	reader messageReader
}

func NewConsumer(hub *Hub, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "order-status",
		GroupID:  "storefront-status",
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{hub: hub, reader: reader}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		fmt.Printf("error closing kafka reader: %v\n", err)
	}
}

func (c *Consumer) processMessage(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Printf("error reading message: %v\n", err)
		return
	}

	var update Update
	if err := json.Unmarshal(m.Value, &update); err != nil {
		fmt.Printf("error parsing status message: %v\n", err)
		return
	}
	if update.OrderID == "" {
		fmt.Println("status message missing order_id")
		return
	}

	c.hub.Publish(update)
}
