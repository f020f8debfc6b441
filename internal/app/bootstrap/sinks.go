package bootstrap

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/wolfman30/marcel-receptionist/internal/archive"
	"github.com/wolfman30/marcel-receptionist/internal/booking"
	"github.com/wolfman30/marcel-receptionist/internal/calllog"
	"github.com/wolfman30/marcel-receptionist/internal/callrecord"
	appconfig "github.com/wolfman30/marcel-receptionist/internal/config"
	"github.com/wolfman30/marcel-receptionist/internal/directory"
	"github.com/wolfman30/marcel-receptionist/internal/notify"
	"github.com/wolfman30/marcel-receptionist/pkg/logging"
)

// BuildSinks returns every configured call record sink. The log sink is
// always present.
func BuildSinks(cfg *appconfig.Config, awsCfg *aws.Config, dir *directory.Directory, logger *logging.Logger) []callrecord.Sink {
	sinks := []callrecord.Sink{callrecord.LogSink{Logger: logger}}

	if awsCfg != nil {
		if cfg.TranscriptBucket != "" {
			sinks = append(sinks, archive.NewS3Store(s3.NewFromConfig(*awsCfg), cfg.TranscriptBucket, logger))
		}
		if cfg.CallLogTable != "" {
			sinks = append(sinks, calllog.NewDynamoStore(dynamodb.NewFromConfig(*awsCfg), cfg.CallLogTable, logger))
		}
		if cfg.BookingQueueURL != "" {
			sinks = append(sinks, booking.NewSQSPublisher(sqs.NewFromConfig(*awsCfg), cfg.BookingQueueURL, logger))
		}
	}

	if sender := buildEmailSender(cfg, awsCfg, logger); sender != nil {
		sinks = append(sinks, notify.NewBookingNotifier(sender, dir, cfg.NotifyFallback, logger))
	}
	return sinks
}

func buildEmailSender(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) notify.EmailSender {
	if cfg.NotifyFromEmail == "" {
		return nil
	}
	if cfg.SESEnabled && awsCfg != nil {
		logger.Info("booking emails via ses", "from", cfg.NotifyFromEmail)
		return notify.NewSESSender(sesv2.NewFromConfig(*awsCfg), notify.SESConfig{
			FromEmail: cfg.NotifyFromEmail,
			FromName:  cfg.NotifyFromName,
		}, logger)
	}
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.NotifyFromEmail,
		FromName:  cfg.NotifyFromName,
	}, logger); sg != nil {
		logger.Info("booking emails via sendgrid", "from", cfg.NotifyFromEmail)
		return sg
	}
	if cfg.Env == "development" {
		logger.Info("booking emails logged only; no provider configured")
		return notify.NewLogSender(logger)
	}
	return nil
}
