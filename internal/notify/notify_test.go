package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cowin-slot-assistant/internal/common/config"
	"cowin-slot-assistant/internal/common/logger"
	"cowin-slot-assistant/internal/common/metrics"
)

type MockSNS struct {
	mock.Mock
}

func (m *MockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, params)
	return &sns.PublishOutput{}, args.Error(0)
}

type MockSES struct {
	mock.Mock
}

func (m *MockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	return &ses.SendEmailOutput{}, args.Error(0)
}

type recordedCommand struct {
	name string
	args []string
}

func recordingRunner(calls *[]recordedCommand, err error) CommandRunner {
	return func(ctx context.Context, name string, args ...string) error {
		*calls = append(*calls, recordedCommand{name: name, args: args})
		return err
	}
}

func TestBeeper_Commands(t *testing.T) {
	tests := []struct {
		goos     string
		wantName string
		wantArgs []string
	}{
		{goos: "linux", wantName: "beep", wantArgs: []string{"-f", "660", "-l", "1000"}},
		{goos: "darwin", wantName: "play", wantArgs: []string{"-q", "-n", "synth", "1", "sin", "660"}},
		{goos: "windows", wantName: "powershell", wantArgs: []string{"-NoProfile", "-Command", "[console]::beep(660,1000)"}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			var calls []recordedCommand
			b := NewBeeper(BeeperOptions{
				Duration: time.Second,
				Beeps:    2,
				GOOS:     tt.goos,
				Runner:   recordingRunner(&calls, nil),
			})

			require.NoError(t, b.Notify(context.Background(), Alert{Location: "BBMP", Frequency: 660}))
			require.Len(t, calls, 2)
			assert.Equal(t, tt.wantName, calls[0].name)
			assert.Equal(t, tt.wantArgs, calls[0].args)
		})
	}
}

func TestBeeper_Warning(t *testing.T) {
	var calls []recordedCommand
	b := NewBeeper(BeeperOptions{Duration: 500 * time.Millisecond, Beeps: 2, GOOS: "linux", Runner: recordingRunner(&calls, nil)})

	require.NoError(t, b.Notify(context.Background(), Alert{Frequency: 660, Warning: true}))
	require.Len(t, calls, 2)
	assert.Equal(t, []string{"-f", "1000", "-l", "2000"}, calls[0].args)

	calls = nil
	require.NoError(t, b.Notify(context.Background(), Alert{Frequency: 660}))
	assert.Equal(t, []string{"-f", "660", "-l", "500"}, calls[0].args)
}

func TestBeeper_RunnerFailure(t *testing.T) {
	var calls []recordedCommand
	b := NewBeeper(BeeperOptions{Beeps: 3, GOOS: "linux", Runner: recordingRunner(&calls, errors.New("not found"))})

	err := b.Notify(context.Background(), Alert{Frequency: 440})
	assert.ErrorContains(t, err, "run beep")
	assert.Len(t, calls, 1)
}

func TestSMSNotifier(t *testing.T) {
	t.Run("phone number with sender id", func(t *testing.T) {
		client := new(MockSNS)
		client.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
			return *in.PhoneNumber == "+919999999999" && in.TopicArn == nil &&
				*in.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue == "COWIN"
		})).Return(nil)

		n := NewSMSNotifier(client, SMSOptions{PhoneNumber: "+919999999999", SenderID: "COWIN"})
		require.NoError(t, n.Notify(context.Background(), Alert{Location: "560001", Sessions: 2}))
		client.AssertExpectations(t)
	})

	t.Run("topic", func(t *testing.T) {
		client := new(MockSNS)
		client.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
			return *in.TopicArn == "arn:aws:sns:ap-south-1:123:slots" && in.PhoneNumber == nil &&
				*in.Message == "2 vaccination session(s) available at 560001."
		})).Return(nil)

		n := NewSMSNotifier(client, SMSOptions{TopicARN: "arn:aws:sns:ap-south-1:123:slots"})
		require.NoError(t, n.Notify(context.Background(), Alert{Location: "560001", Sessions: 2}))
		client.AssertExpectations(t)
	})
}

func TestEmailNotifier(t *testing.T) {
	client := new(MockSES)
	client.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return *in.Source == "alerts@example.com" &&
			in.Destination.ToAddresses[0] == "me@example.com" &&
			*in.Message.Subject.Data == "[Slot Assistant] BBMP"
	})).Return(nil)

	n := NewEmailNotifier(client, "alerts@example.com", "me@example.com")
	require.NoError(t, n.Notify(context.Background(), Alert{Location: "BBMP", Sessions: 1}))
	client.AssertExpectations(t)
}

func TestMulti_Notify(t *testing.T) {
	var calls []recordedCommand
	beeper := NewBeeper(BeeperOptions{GOOS: "linux", Runner: recordingRunner(&calls, nil)})

	client := new(MockSNS)
	client.On("Publish", mock.Anything, mock.Anything).Return(errors.New("throttled"))
	sms := NewSMSNotifier(client, SMSOptions{PhoneNumber: "+919999999999"})

	sentBefore := testutil.ToFloat64(metrics.Alerts.WithLabelValues("beep", "sent"))
	failedBefore := testutil.ToFloat64(metrics.Alerts.WithLabelValues("sms", "failed"))

	multi := NewMulti(logger.NewTestLogger(t), sms, beeper)
	err := multi.Notify(context.Background(), Alert{Location: "BBMP", Frequency: 440, Sessions: 1})

	require.Error(t, err)
	assert.ErrorContains(t, err, "sms: throttled")
	assert.Len(t, calls, 1, "a failing channel must not stop the others")
	assert.Equal(t, sentBefore+1, testutil.ToFloat64(metrics.Alerts.WithLabelValues("beep", "sent")))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(metrics.Alerts.WithLabelValues("sms", "failed")))
	assert.Equal(t, []string{"sms", "beep"}, multi.Channels())
}

func TestFromConfig_LocalOnly(t *testing.T) {
	cfg := &config.Config{}
	cfg.Alert.Enabled = true
	cfg.Alert.Duration = 500

	multi, err := FromConfig(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"beep"}, multi.Channels())

	cfg.Alert.Enabled = false
	multi, err = FromConfig(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Empty(t, multi.Channels())
}
