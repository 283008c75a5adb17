package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"

	"github.com/huynhanx03/servicequeue/pkg/settings"
)

// KafkaSink publishes records to a topic, keyed by queue name so a queue's
// records stay on one partition in order.
type KafkaSink struct {
	producer sarama.SyncProducer
	topic    string
}

var _ Sink = (*KafkaSink)(nil)

// NewKafkaSink dials the configured brokers.
func NewKafkaSink(cfg settings.Kafka) (*KafkaSink, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, producerConfig(cfg))
	if err != nil {
		return nil, errors.Wrap(err, "create kafka producer")
	}
	return NewKafkaSinkWithProducer(producer, cfg.Topic), nil
}

// NewKafkaSinkWithProducer wraps an existing producer.
func NewKafkaSinkWithProducer(producer sarama.SyncProducer, topic string) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic}
}

func producerConfig(cfg settings.Kafka) *sarama.Config {
	c := sarama.NewConfig()
	c.Producer.Return.Successes = true
	c.Producer.RequiredAcks = sarama.WaitForAll
	c.Producer.Partitioner = sarama.NewHashPartitioner

	if cfg.MaxRetries > 0 {
		c.Producer.Retry.Max = cfg.MaxRetries
	}
	if cfg.RetryBackoff > 0 {
		c.Producer.Retry.Backoff = time.Duration(cfg.RetryBackoff) * time.Millisecond
	}
	if cfg.FlushFrequency > 0 {
		c.Producer.Flush.Frequency = time.Duration(cfg.FlushFrequency) * time.Millisecond
	}
	if cfg.FlushBytes > 0 {
		c.Producer.Flush.Bytes = cfg.FlushBytes
	}
	if cfg.MaxMessageBytes > 0 {
		c.Producer.MaxMessageBytes = cfg.MaxMessageBytes
	}
	if cfg.Timeout > 0 {
		c.Producer.Timeout = time.Duration(cfg.Timeout) * time.Second
		c.Net.DialTimeout = time.Duration(cfg.Timeout) * time.Second
	}
	return c
}

// Write sends the batch in one request.
func (s *KafkaSink) Write(_ context.Context, batch []Record) error {
	if len(batch) == 0 {
		return nil
	}

	msgs := make([]*sarama.ProducerMessage, 0, len(batch))
	for _, rec := range batch {
		b, err := json.Marshal(rec)
		if err != nil {
			return errors.Wrap(err, "marshal audit record")
		}
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic:     s.topic,
			Key:       sarama.StringEncoder(rec.Queue),
			Value:     sarama.ByteEncoder(b),
			Timestamp: rec.At,
		})
	}

	if err := s.producer.SendMessages(msgs); err != nil {
		return errors.Wrapf(err, "publish %d audit records", len(msgs))
	}
	return nil
}

// Close closes the producer.
func (s *KafkaSink) Close() error {
	return s.producer.Close()
}
