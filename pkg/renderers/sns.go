package renderers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/samvad-hq/samvad-market-pulse/internal/logger"
)

type snsClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// snsRenderer publishes every frame to an SNS topic.
type snsRenderer struct {
	id       string
	topicARN string
	typ      string
	client   snsClient
	log      logger.Logger
}

func newSNSRenderer(ctx context.Context, cfg RendererConfig, deps Deps) (Renderer, error) {
	if cfg.SNS == nil {
		return nil, fmt.Errorf("renderer %q missing sns configuration", cfg.ID)
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.SNS.Region, cfg.SNS.AWSCredentials)
	if err != nil {
		return nil, err
	}

	endpoint := cfg.SNS.Endpoint
	client := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return &snsRenderer{
		id:       cfg.ID,
		typ:      TypeSNS,
		topicARN: cfg.SNS.TopicARN,
		client:   client,
		log:      logger.Ensure(deps.Log),
	}, nil
}

func (s *snsRenderer) ID() string   { return s.id }
func (s *snsRenderer) Type() string { return s.typ }

func (s *snsRenderer) Render(ctx context.Context, f Frame) error {
	payload, err := marshalFrame(f)
	if err != nil {
		return err
	}

	attrs := make(map[string]types.MessageAttributeValue)
	for k, v := range frameAttributes(f) {
		if v == "" {
			continue
		}
		attrs[k] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(v),
		}
	}

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn:          aws.String(s.topicARN),
		Message:           aws.String(string(payload)),
		MessageAttributes: attrs,
	})
	if err != nil {
		s.log.ErrorObj("sns renderer publish failed", "renderer_sns_error", map[string]any{
			"renderer_id": s.id,
			"error":       err.Error(),
		})
		return fmt.Errorf("publish to sns: %w", err)
	}
	s.log.DebugObj("sns renderer delivered frame", "renderer_sns_delivery", map[string]any{
		"renderer_id": s.id,
		"message_id":  aws.ToString(out.MessageId),
	})
	return nil
}
