package renderers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/samvad-hq/samvad-market-pulse/internal/logger"
)

// sqsClient defines the minimal subset of the SQS client used by sqsRenderer.
type sqsClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// sqsRenderer implements the Renderer interface for AWS SQS.
type sqsRenderer struct {
	id       string
	queueURL string
	typ      string
	client   sqsClient
	log      logger.Logger
}

// newSQSRenderer creates a new SQS renderer with the given configuration.
func newSQSRenderer(ctx context.Context, cfg RendererConfig, deps Deps) (Renderer, error) {
	if cfg.SQS == nil {
		return nil, fmt.Errorf("renderer %q missing sqs configuration", cfg.ID)
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.SQS.Region, cfg.SQS.AWSCredentials)
	if err != nil {
		return nil, err
	}

	endpoint := cfg.SQS.Endpoint
	client := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return &sqsRenderer{
		id:       cfg.ID,
		typ:      TypeSQS,
		queueURL: cfg.SQS.QueueURL,
		client:   client,
		log:      logger.Ensure(deps.Log),
	}, nil
}

func (s *sqsRenderer) ID() string   { return s.id }
func (s *sqsRenderer) Type() string { return s.typ }

// Render sends the frame to the configured SQS queue.
func (s *sqsRenderer) Render(ctx context.Context, f Frame) error {
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

	input := &sqs.SendMessageInput{
		QueueUrl:          aws.String(s.queueURL),
		MessageBody:       aws.String(string(payload)),
		MessageAttributes: attrs,
	}

	if _, err := s.client.SendMessage(ctx, input); err != nil {
		s.log.ErrorObj("sqs renderer send failed", "renderer_sqs_error", map[string]any{
			"renderer_id": s.id,
			"error":       err.Error(),
		})
		return fmt.Errorf("send message to sqs: %w", err)
	}
	s.log.DebugObj("sqs renderer delivered frame", "renderer_sqs_delivery", map[string]any{
		"renderer_id": s.id,
		"sequence":    f.Sequence,
	})
	return nil
}
