package notifsvc

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"

	"github.com/kymani/udahili/core"
)

type kafkaDispatcher struct {
	writer *kafka.Writer
	logger core.Logger
}

var _ core.NotificationDispatcher = (*kafkaDispatcher)(nil)

// NewKafkaDispatcher publishes applicant events to the notification topic;
// a downstream consumer owns actual delivery.
func NewKafkaDispatcher(conf *core.Config, logger core.Logger) core.NotificationDispatcher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(conf.Kafka.Broker),
		Topic:        conf.Kafka.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 10 * time.Second,
	}
	if conf.Kafka.Username != "" {
		writer.Transport = &kafka.Transport{
			SASL: plain.Mechanism{
				Username: conf.Kafka.Username,
				Password: conf.Kafka.Password,
			},
			TLS: &tls.Config{},
		}
	}
	return &kafkaDispatcher{writer: writer, logger: logger}
}

func (d *kafkaDispatcher) Dispatch(notifications ...core.Notification) {
	msgs := make([]kafka.Message, 0, len(notifications))
	for _, n := range notifications {
		value, err := json.Marshal(n)
		if err != nil {
			d.logger.Error("marshaling notification", err)
			continue
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(n.ApplicantID),
			Value: value,
			Time:  n.OccurredAt,
		})
	}
	if len(msgs) == 0 {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// best-effort: a failed publish never unwinds the state change
		if err := d.writer.WriteMessages(ctx, msgs...); err != nil {
			d.logger.Error("publishing notifications", err)
		}
	}()
}
