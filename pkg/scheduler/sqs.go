package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// MaxDelay is the longest delivery delay SQS supports.
const MaxDelay = 15 * time.Minute

// SQSAPI is the part of the SQS client the scheduler uses.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSScheduler implements the Scheduler interface using AWS SQS.
type SQSScheduler struct {
	Client   SQSAPI
	QueueURL string
}

// NewSQSScheduler creates a new SQSScheduler.
func NewSQSScheduler(client SQSAPI, queueURL string) *SQSScheduler {
	return &SQSScheduler{
		Client:   client,
		QueueURL: queueURL,
	}
}

// Make sure we conform to the interface
var _ Scheduler = (*SQSScheduler)(nil)

// ScheduleConfirmation sends a confirmation message to the SQS queue. Delays
// beyond MaxDelay are clamped.
func (s *SQSScheduler) ScheduleConfirmation(ctx context.Context, providerPaymentID string, delay time.Duration) error {
	body, err := json.Marshal(ConfirmationMessage{ProviderPaymentID: providerPaymentID})
	if err != nil {
		return fmt.Errorf("failed to marshal confirmation for SQS: %w", err)
	}

	if delay > MaxDelay {
		delay = MaxDelay
	}
	if delay < 0 {
		delay = 0
	}

	_, err = s.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:     aws.String(s.QueueURL),
		MessageBody:  aws.String(string(body)),
		DelaySeconds: int32(delay / time.Second),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	return nil
}
