// Package notify sends confirmation messages after an accepted submission.
// Email and SMS channels are independently optional; a send failure never
// unwinds an already-accepted submission.
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"admissions-intake/internal/common/errors"
	"admissions-intake/internal/common/logger"
	"admissions-intake/internal/models"
)

// EmailSender is the SES surface the notifier consumes.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// SMSSender is the SNS surface the notifier consumes.
type SMSSender interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type Notifier struct {
	email     EmailSender // nil disables the email channel
	sms       SMSSender   // nil disables the SMS channel
	fromEmail string
	logger    logger.Logger
}

type NotifierOptions struct {
	Email     EmailSender
	SMS       SMSSender
	FromEmail string
	Logger    logger.Logger
}

func NewNotifier(opts NotifierOptions) *Notifier {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Notifier{
		email:     opts.Email,
		sms:       opts.SMS,
		fromEmail: opts.FromEmail,
		logger:    log,
	}
}

// SendConfirmation notifies the applicant on every enabled channel. Channel
// failures are collected; the first one is returned after all channels ran.
func (n *Notifier) SendConfirmation(ctx context.Context, reference string, record models.AggregatedRecord) error {
	var firstErr error

	if n.email != nil {
		if to, ok := record["email"].(string); ok && to != "" {
			if err := n.sendEmail(ctx, to, reference, record); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}

	if n.sms != nil {
		if phone, ok := record["mobileNumber"].(string); ok && phone != "" {
			if err := n.sendSMS(ctx, phone, reference); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

func (n *Notifier) sendEmail(ctx context.Context, to, reference string, record models.AggregatedRecord) error {
	name, _ := record["firstName"].(string)
	subject := fmt.Sprintf("Admission application %s received", reference)
	body := fmt.Sprintf(
		"Dear %s,\n\nYour admission application has been received.\nApplication reference: %s\n\nPlease keep this reference for future correspondence.",
		name, reference,
	)

	_, err := n.email.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.fromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		n.logger.Error("Confirmation email failed", map[string]interface{}{
			"reference": reference,
			"error":     err.Error(),
		})
		return errors.NewNotificationSendFailedError("email", err)
	}

	n.logger.Info("Confirmation email sent", map[string]interface{}{
		"reference": reference,
	})
	return nil
}

func (n *Notifier) sendSMS(ctx context.Context, phone, reference string) error {
	message := fmt.Sprintf("Your admission application %s has been received.", reference)

	_, err := n.sms.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(phone),
		Message:     aws.String(message),
	})
	if err != nil {
		n.logger.Error("Confirmation SMS failed", map[string]interface{}{
			"reference": reference,
			"error":     err.Error(),
		})
		return errors.NewNotificationSendFailedError("sms", err)
	}

	n.logger.Info("Confirmation SMS sent", map[string]interface{}{
		"reference": reference,
	})
	return nil
}
