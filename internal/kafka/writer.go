package kafka

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	kgo "github.com/segmentio/kafka-go"
)

type Writer interface {
	WriteJSON(ctx context.Context, v any) error
	Close() error
}

type writer struct {
	w *kgo.Writer
}

// NewWriter returns a Kafka writer for topic. With no bootstrap servers it
// returns a writer that drops every message, so events stay optional.
// Env overrides:
//   - KAFKA_REQUIRED_ACKS: "none" | "one" | "all" (default "one")
//   - KAFKA_ASYNC: "true" | "false" (default "false")
func NewWriter(bootstrapServers, topic string) Writer {
	var addrs []string
	for _, a := range strings.Split(bootstrapServers, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	if len(addrs) == 0 {
		return Discard
	}

	w := &kgo.Writer{
		Addr:                   kgo.TCP(addrs...),
		Topic:                  topic,
		Balancer:               &kgo.LeastBytes{},
		RequiredAcks:           requiredAcks(os.Getenv("KAFKA_REQUIRED_ACKS")),
		Async:                  strings.EqualFold(os.Getenv("KAFKA_ASYNC"), "true"),
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &writer{w: w}
}

func requiredAcks(s string) kgo.RequiredAcks {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return kgo.RequireNone
	case "all":
		return kgo.RequireAll
	default:
		return kgo.RequireOne
	}
}

// WriteJSON marshals v and writes it as one message. Keyed values use their
// key so events for one post land on one partition.
func (wr *writer) WriteJSON(ctx context.Context, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	msg := kgo.Message{Value: b, Time: time.Now()}
	if k, ok := v.(interface{ Key() string }); ok {
		msg.Key = []byte(k.Key())
	}
	return wr.w.WriteMessages(ctx, msg)
}

func (wr *writer) Close() error { return wr.w.Close() }

type discard struct{}

// Discard accepts and drops every message.
var Discard Writer = discard{}

func (discard) WriteJSON(context.Context, any) error { return nil }
func (discard) Close() error                         { return nil }
