package renderers

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"

	"github.com/samvad-hq/samvad-market-pulse/internal/logger"
)

// pubsubRenderer publishes every frame to a Google Cloud Pub/Sub topic.
type pubsubRenderer struct {
	id     string
	typ    string
	client *pubsub.Client
	topic  *pubsub.Topic
	log    logger.Logger
}

func newPubSubRenderer(ctx context.Context, cfg RendererConfig, deps Deps) (Renderer, error) {
	if cfg.PubSub == nil {
		return nil, fmt.Errorf("renderer %q missing pubsub configuration", cfg.ID)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var opts []option.ClientOption
	if cfg.PubSub.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.PubSub.CredentialsFile))
	}
	if cfg.PubSub.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.PubSub.Endpoint))
	}

	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	return &pubsubRenderer{
		id:     cfg.ID,
		typ:    TypePubSub,
		client: client,
		topic:  client.Topic(cfg.PubSub.Topic),
		log:    logger.Ensure(deps.Log),
	}, nil
}

func (p *pubsubRenderer) ID() string   { return p.id }
func (p *pubsubRenderer) Type() string { return p.typ }

func (p *pubsubRenderer) Render(ctx context.Context, f Frame) error {
	payload, err := marshalFrame(f)
	if err != nil {
		return err
	}

	res := p.topic.Publish(ctx, &pubsub.Message{
		Data:       payload,
		Attributes: frameAttributes(f),
	})
	id, err := res.Get(ctx)
	if err != nil {
		p.log.ErrorObj("pubsub renderer publish failed", "renderer_pubsub_error", map[string]any{
			"renderer_id": p.id,
			"error":       err.Error(),
		})
		return fmt.Errorf("publish to pubsub: %w", err)
	}
	p.log.DebugObj("pubsub renderer delivered frame", "renderer_pubsub_delivery", map[string]any{
		"renderer_id": p.id,
		"message_id":  id,
	})
	return nil
}

// Close flushes pending messages and closes the client.
func (p *pubsubRenderer) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	p.topic.Stop()
	return p.client.Close()
}
