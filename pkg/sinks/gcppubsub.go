package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"cloud.google.com/go/pubsub"
)

// gcpPubSubSink implements the Sink interface for Google Cloud Pub/Sub.
type gcpPubSubSink struct {
	id     string
	typ    string
	topic  *pubsub.Topic
	client *pubsub.Client
	log    Logger
}

// newGCPPubSubSink creates a new Pub/Sub sink with the given configuration.
func newGCPPubSubSink(ctx context.Context, cfg SinkConfig, log Logger) (Sink, error) {
	if cfg.PubSub == nil {
		return nil, fmt.Errorf("sink %q missing pubsub configuration", cfg.ID)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	return &gcpPubSubSink{
		id:     cfg.ID,
		typ:    TypePubSub,
		topic:  client.Topic(cfg.PubSub.Topic),
		client: client,
		log:    ensureLogger(log),
	}, nil
}

func (g *gcpPubSubSink) ID() string   { return g.id }
func (g *gcpPubSubSink) Type() string { return g.typ }

// Send publishes the event to the configured Pub/Sub topic and waits for the
// server acknowledgement.
func (g *gcpPubSubSink) Send(ctx context.Context, evt ContentEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	result := g.topic.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"saved_count": strconv.Itoa(evt.SavedCount),
		},
	})

	if _, err := result.Get(ctx); err != nil {
		g.log.ErrorObj("pubsub sink publish failed", "sink_pubsub_error", map[string]any{
			"sink_id": g.id,
			"error":   err.Error(),
		})
		return fmt.Errorf("publish to pubsub: %w", err)
	}
	g.log.DebugObj("pubsub sink delivered event", "sink_pubsub_delivery", map[string]any{
		"sink_id": g.id,
	})
	return nil
}
