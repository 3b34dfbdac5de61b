package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/visioncart/orders/internal/domain"
	"github.com/visioncart/orders/internal/ports"
	"github.com/visioncart/orders/pkg/metrics"
)

// Проверка, что Producer удовлетворяет порту публикации событий.
var _ ports.EventPublisher = (*Producer)(nil)

// messageWriter — минимальный контракт над kafka.Writer для тестов.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderCreatedEvent — событие оформления заказа для inventory-сервиса.
// Ключ партиции — order_id: события одного заказа сохраняют порядок.
type OrderCreatedEvent struct {
	EventID    string      `json:"event_id"`
	OccurredAt time.Time   `json:"occurred_at"`
	OrderID    string      `json:"order_id"`
	UserID     string      `json:"user_id"`
	TotalCents int64       `json:"total_cents"`
	Items      []EventItem `json:"items"`
}

// EventItem — позиция события: количество и снимок цены.
type EventItem struct {
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"price_cents"`
}

// Producer — публикация событий заказа в Kafka (синхронная запись,
// подтверждение от всех реплик).
type Producer struct {
	writer    messageWriter
	topic     string
	log       ports.Logger
	closeOnce sync.Once
}

// NewProducer — конструктор поверх kafka.Writer.
func NewProducer(brokers []string, topic string, log ports.Logger) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		topic: topic,
		log:   log,
	}
}

// PublishOrderCreated — пишет событие order.created.
// Ошибка возвращается вызывающему: решение «ретраить или нет» — его.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	if order == nil {
		return nil
	}

	event := OrderCreatedEvent{
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalCents: order.TotalCents,
		Items:      make([]EventItem, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		event.Items = append(event.Items, EventItem{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			PriceCents: item.PriceCents,
		})
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(order.ID),
		Value: value,
		Time:  event.OccurredAt,
	}); err != nil {
		metrics.KafkaEventsPublished.WithLabelValues(p.topic, "error").Inc()
		return fmt.Errorf("write message: %w", err)
	}

	metrics.KafkaEventsPublished.WithLabelValues(p.topic, "ok").Inc()
	return nil
}

// Close — закрывает writer. Вызывается при остановке приложения.
func (p *Producer) Close() (retErr error) {
	p.closeOnce.Do(func() {
		retErr = p.writer.Close()
	})
	return retErr
}
