// Package kafka publishes and consumes JSON messages on Kafka topics.
package kafka

//go:generate go run go.uber.org/mock/mockgen -source=./kafka.go -destination=./mocks/kafka_mock.go -package=mocks

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aspen/config"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

const (
	defaultMaxAttempts  = 1
	writeBatchTimeout   = 50 * time.Millisecond
	readerCommitTimeout = 5 * time.Second
)

// Message is an outgoing record; Value is encoded as JSON.
type Message struct {
	Key   string
	Value any
}

func (m *Message) ToKafkaMessage(topic string) (kafkaGo.Message, error) {
	value, err := json.Marshal(m.Value)
	if err != nil {
		return kafkaGo.Message{}, fmt.Errorf("failed to marshal message value to JSON: %w", err)
	}

	return kafkaGo.Message{Topic: topic, Key: []byte(m.Key), Value: value}, nil
}

// Decode unmarshals a record's JSON value into T.
func Decode[T any](msg kafkaGo.Message) (T, error) {
	var value T

	if err := json.Unmarshal(msg.Value, &value); err != nil {
		return value, fmt.Errorf("failed to unmarshal Kafka message value from JSON: %w", err)
	}

	return value, nil
}

// Handler processes one record. A returned error is retried before the
// record is committed anyway.
type Handler func(ctx context.Context, msg kafkaGo.Message) error

type Client interface {
	SendMessages(ctx context.Context, topic string, messages ...Message) (err error)
	Consume(ctx context.Context, consumerGroup, topic string, handler Handler)
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkaGo.Message) error
	Close() error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafkaGo.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkaGo.Message) error
	Close() error
}

type readerFactory func(groupID, topic string) messageReader

type kafkaClientImpl struct {
	config    *config.Config
	writer    messageWriter
	newReader readerFactory
	sleep     func(ctx context.Context, d time.Duration) error
}

func New(cfg *config.Config) Client {
	var (
		dialer    = &kafkaGo.Dialer{DualStack: true, Timeout: 10 * time.Second}
		transport = &kafkaGo.Transport{}
	)

	if cfg.Kafka.SASL.Username != "" {
		mechanism := plain.Mechanism{
			Username: cfg.Kafka.SASL.Username,
			Password: cfg.Kafka.SASL.Password,
		}
		dialer.SASLMechanism = mechanism
		transport.SASL = mechanism
	}

	if cfg.Kafka.TLS {
		tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
		dialer.TLS = tlsConfig
		transport.TLS = tlsConfig
	}

	writer := &kafkaGo.Writer{
		Addr:                   kafkaGo.TCP(cfg.Kafka.Brokers...),
		Transport:              transport,
		Balancer:               &kafkaGo.Hash{},
		RequiredAcks:           kafkaGo.RequireAll,
		BatchTimeout:           writeBatchTimeout,
		AllowAutoTopicCreation: true,
	}

	newReader := func(groupID, topic string) messageReader {
		return kafkaGo.NewReader(kafkaGo.ReaderConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       topic,
			GroupID:     groupID,
			Dialer:      dialer,
			StartOffset: kafkaGo.FirstOffset,
		})
	}

	log.Info().Strs("brokers", cfg.Kafka.Brokers).Bool("tls", cfg.Kafka.TLS).Msg("Kafka client initialized")

	return newClient(cfg, writer, newReader)
}

func newClient(cfg *config.Config, writer messageWriter, newReader readerFactory) *kafkaClientImpl {
	return &kafkaClientImpl{
		config:    cfg,
		writer:    writer,
		newReader: newReader,
		sleep:     sleepContext,
	}
}

func (k *kafkaClientImpl) SendMessages(ctx context.Context, topic string, messages ...Message) error {
	if topic == "" {
		return errors.New("kafka topic cannot be empty")
	}

	msgs := make([]kafkaGo.Message, 0, len(messages))

	for _, message := range messages {
		msg, err := message.ToKafkaMessage(topic)
		if err != nil {
			log.Error().Err(err).Str("topic", topic).Str("key", message.Key).Msg("Failed to encode Kafka message")

			return err
		}

		msgs = append(msgs, msg)
	}

	if err := k.writer.WriteMessages(ctx, msgs...); err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to send message to Kafka")

		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	log.Debug().Str("topic", topic).Int("count", len(msgs)).Msg("Sent messages to Kafka")

	return nil
}

// Consume handles records one at a time and commits each after its handler
// finishes, so delivery is at least once. It returns when ctx is done.
func (k *kafkaClientImpl) Consume(ctx context.Context, consumerGroup, topic string, handler Handler) {
	groupID := k.config.Kafka.ConsumerGroup
	if consumerGroup != "" {
		groupID = consumerGroup
	}

	reader := k.newReader(groupID, topic)
	defer func() {
		if err := reader.Close(); err != nil {
			log.Error().Err(err).Str("topic", topic).Msg("Failed to close Kafka reader")
		}
	}()

	logger := log.With().Str("topic", topic).Str("group", groupID).Logger()

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}

			logger.Error().Err(err).Msg("Failed to fetch message from Kafka")

			if k.sleep(ctx, k.backoff()) != nil {
				return
			}

			continue
		}

		if err = k.handle(ctx, handler, msg); err != nil {
			logger.Error().Err(err).Str("key", string(msg.Key)).Int64("offset", msg.Offset).Msg("Giving up on Kafka message")
		}

		commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), readerCommitTimeout)
		err = reader.CommitMessages(commitCtx, msg)

		cancel()

		if err != nil {
			logger.Error().Err(err).Int64("offset", msg.Offset).Msg("Failed to commit Kafka offset")
		}
	}
}

func (k *kafkaClientImpl) handle(ctx context.Context, handler Handler, msg kafkaGo.Message) (err error) {
	attempts := max(k.config.Kafka.MaxAttempts, defaultMaxAttempts)

	for attempt := 1; attempt <= attempts; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}

		if attempt < attempts {
			if sleepErr := k.sleep(ctx, time.Duration(attempt)*k.backoff()); sleepErr != nil {
				return errors.Join(err, sleepErr)
			}
		}
	}

	return fmt.Errorf("after %d attempts: %w", attempts, err)
}

func (k *kafkaClientImpl) backoff() time.Duration {
	return time.Duration(k.config.Kafka.RetryBackoff) * time.Millisecond
}

func (k *kafkaClientImpl) Close() error {
	if err := k.writer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka writer: %w", err)
	}

	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
