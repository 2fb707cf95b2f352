package alerts

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sns"

	"github.com/prymal/inventory-metrics/pkg/logger"
)

// Notifier delivers alert payloads to the notification channel.
type Notifier interface {
	Publish(ctx context.Context, payload Payload) error
}

// SNSNotifier publishes alerts to an SNS topic.
type SNSNotifier struct {
	client   *sns.SNS
	topicARN string
}

func NewSNSNotifier(region, topicARN string) (*SNSNotifier, error) {
	if topicARN == "" {
		return nil, fmt.Errorf("alert topic ARN must be provided")
	}
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &SNSNotifier{
		client:   sns.New(sess),
		topicARN: topicARN,
	}, nil
}

func (n *SNSNotifier) Publish(ctx context.Context, payload Payload) error {
	out, err := n.client.PublishWithContext(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(payload.Subject),
		Message:  aws.String(payload.Body),
	})
	if err != nil {
		return fmt.Errorf("sns publish failed: %w", err)
	}
	logger.Log.Info().
		Str("subject", payload.Subject).
		Str("message_id", aws.StringValue(out.MessageId)).
		Msg("alert published")
	return nil
}

// LogNotifier writes alerts to the log instead of a channel. Used for local
// runs and dry runs.
type LogNotifier struct{}

func (LogNotifier) Publish(ctx context.Context, payload Payload) error {
	logger.Log.Info().
		Str("subject", payload.Subject).
		Msg("alert (dry run)\n" + payload.Body)
	return nil
}

var (
	_ Notifier = (*SNSNotifier)(nil)
	_ Notifier = LogNotifier{}
)
