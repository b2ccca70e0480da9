package notify

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/smallbiznis/civitas/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("notify",
	fx.Provide(New),
)

// New returns the SQS notifier when a queue is configured and the log
// notifier otherwise.
func New(cfg config.Config, log *zap.Logger) (Notifier, error) {
	if cfg.NotifySQSQueueURL == "" {
		return NewLogNotifier(log), nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, err
	}
	log.Info("notifications routed to SQS", zap.String("queue_url", cfg.NotifySQSQueueURL))
	return NewSQSNotifier(sqs.NewFromConfig(awsCfg), cfg.NotifySQSQueueURL), nil
}
