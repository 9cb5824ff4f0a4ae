package amqp

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"bankpivot/internal/log"
)

const publishTimeout = 5 * time.Second

// channel is the subset of *amqp091.Channel used for publishing.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

type Client struct {
	conn         *amqp091.Connection
	channel      channel
	exchangeName string
	routingKey   string
	logger       *log.Logger
}

// NewClient dials the broker and declares a durable direct exchange with a
// durable queue named after the routing key.
func NewClient(url, exchangeName, routingKey string, logger *log.Logger) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := setup(ch, exchangeName, routingKey); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	c := newClient(ch, exchangeName, routingKey, logger)
	c.conn = conn
	return c, nil
}

func newClient(ch channel, exchangeName, routingKey string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Discard()
	}
	return &Client{
		channel:      ch,
		exchangeName: exchangeName,
		routingKey:   routingKey,
		logger:       logger.WithComponent(log.ComponentAMQP),
	}
}

func setup(ch *amqp091.Channel, exchangeName, routingKey string) error {
	err := ch.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		routingKey, // name
		true,       // durable
		false,      // delete when unused
		false,      // exclusive
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = ch.QueueBind(routingKey, routingKey, exchangeName, false, nil)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// PublishReportGenerated publishes msg as a persistent JSON message.
func (c *Client) PublishReportGenerated(ctx context.Context, msg *ReportGeneratedMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.routingKey,   // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    msg.RunID,
			Timestamp:    msg.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	c.logger.InfoContext(ctx, "Published report generated message",
		log.FieldRunID, msg.RunID,
		"exchange", c.exchangeName,
		"routing_key", c.routingKey)
	return nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
