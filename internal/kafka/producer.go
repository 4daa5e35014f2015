package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"shop-bot/internal/accounting"
	"shop-bot/internal/models"

	"github.com/segmentio/kafka-go"
)

// Topics carrying shop events. Stats and audit consumers hang off
// these; the services publish best-effort.
const (
	TopicPurchaseLogged = "shop.purchase.logged"
	TopicTicketOpened   = "shop.ticket.opened"
	TopicTicketClosed   = "shop.ticket.closed"
	TopicTicketDeleted  = "shop.ticket.deleted"
	TopicStockUpdated   = "shop.stock.updated"
	TopicStatsUpdated   = "shop.stats.updated"
)

// Topics lists every topic the producer writes, for startup creation.
var Topics = []string{
	TopicPurchaseLogged,
	TopicTicketOpened,
	TopicTicketClosed,
	TopicTicketDeleted,
	TopicStockUpdated,
	TopicStatsUpdated,
}

type Producer struct {
	Writer *kafka.Writer
}

// NewProducer creates a producer that routes messages by per-message
// topic, so one writer serves every shop event.
func NewProducer(brokers []string) *Producer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
	})
	return &Producer{Writer: writer}
}

func (p *Producer) publish(topic, key string, payload any) error {
	msgBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	fmt.Printf("Publishing to Kafka [%s]: %s\n", topic, string(msgBytes))

	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: msgBytes,
		},
	)
}

// PublishPurchaseLogged streams a committed purchase receipt
func (p *Producer) PublishPurchaseLogged(receipt accounting.Receipt) error {
	return p.publish(TopicPurchaseLogged, strconv.FormatInt(receipt.CustomerID, 10), receipt)
}

// PublishTicketOpened streams a ticket creation event
func (p *Producer) PublishTicketOpened(ticket models.Ticket) error {
	return p.publish(TopicTicketOpened, ticket.ID, ticket)
}

// PublishTicketClosed streams a ticket close event
func (p *Producer) PublishTicketClosed(ticket models.Ticket) error {
	return p.publish(TopicTicketClosed, ticket.ID, ticket)
}

// PublishTicketDeleted streams a ticket removal event
func (p *Producer) PublishTicketDeleted(channelID int64, category string) error {
	payload := map[string]any{
		"channel_id": channelID,
		"category":   category,
	}
	return p.publish(TopicTicketDeleted, strconv.FormatInt(channelID, 10), payload)
}

// PublishStockUpdated streams a stock mutation event
func (p *Producer) PublishStockUpdated(action string, item models.StockItem) error {
	payload := map[string]any{
		"action": action,
		"item":   item,
	}
	return p.publish(TopicStockUpdated, item.ID, payload)
}

// PublishStatsUpdated streams the recomputed shop counters
func (p *Producer) PublishStatsUpdated(sales int, earnings int64) error {
	payload := map[string]any{
		"sales":    sales,
		"earnings": earnings,
	}
	return p.publish(TopicStatsUpdated, "stats", payload)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
