package notify

import (
	"context"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"

	"cowin-slot-assistant/internal/common/aws"
)

const subjectPrefix = "[Slot Assistant] "

// SMSNotifier publishes alerts through SNS, to a topic when one is set and
// directly to a phone number otherwise.
type SMSNotifier struct {
	client aws.SNSPublisher
	opts   SMSOptions
}

type SMSOptions struct {
	PhoneNumber string
	TopicARN    string
	SenderID    string
}

func NewSMSNotifier(client aws.SNSPublisher, opts SMSOptions) *SMSNotifier {
	return &SMSNotifier{client: client, opts: opts}
}

func (s *SMSNotifier) Name() string { return "sms" }

func (s *SMSNotifier) Notify(ctx context.Context, alert Alert) error {
	input := &sns.PublishInput{Message: awssdk.String(alert.Message())}
	if s.opts.TopicARN != "" {
		input.TopicArn = awssdk.String(s.opts.TopicARN)
	} else {
		input.PhoneNumber = awssdk.String(s.opts.PhoneNumber)
	}
	if s.opts.SenderID != "" {
		input.MessageAttributes = map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    awssdk.String("String"),
				StringValue: awssdk.String(s.opts.SenderID),
			},
		}
	}
	_, err := s.client.Publish(ctx, input)
	return err
}

type EmailNotifier struct {
	client aws.SESSender
	from   string
	to     string
}

func NewEmailNotifier(client aws.SESSender, from, to string) *EmailNotifier {
	return &EmailNotifier{client: client, from: from, to: to}
}

func (e *EmailNotifier) Name() string { return "email" }

func (e *EmailNotifier) Notify(ctx context.Context, alert Alert) error {
	body := alert.Message()
	_, err := e.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &sestypes.Destination{
			ToAddresses: []string{e.to},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: awssdk.String(subjectPrefix + alert.Location)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: awssdk.String(body)},
			},
		},
		Source: awssdk.String(e.from),
	})
	return err
}
