// Package notify raises slot alerts on the local speaker and, optionally,
// over SMS and email.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"cowin-slot-assistant/internal/common/aws"
	"cowin-slot-assistant/internal/common/config"
	"cowin-slot-assistant/internal/common/logger"
	"cowin-slot-assistant/internal/common/metrics"
)

// Alert describes viable sessions found at one location.
type Alert struct {
	Location  string
	Frequency int
	Sessions  int
	// Warning marks the alert raised when a booking needs the user's attention.
	Warning bool
}

func (a Alert) Message() string {
	if a.Warning {
		return fmt.Sprintf("Vaccination slots at %s need your attention to complete the booking.", a.Location)
	}
	return fmt.Sprintf("%d vaccination session(s) available at %s.", a.Sessions, a.Location)
}

type Notifier interface {
	Name() string
	Notify(ctx context.Context, alert Alert) error
}

// Multi fans an alert out to every channel. A failing channel does not stop
// the others; all failures are returned together.
type Multi struct {
	notifiers []Notifier
	logger    logger.Logger
}

func NewMulti(log logger.Logger, notifiers ...Notifier) *Multi {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Multi{notifiers: notifiers, logger: log}
}

func (m *Multi) Name() string { return "multi" }

// Channels lists the names of the configured channels.
func (m *Multi) Channels() []string {
	names := make([]string, len(m.notifiers))
	for i, n := range m.notifiers {
		names[i] = n.Name()
	}
	return names
}

func (m *Multi) Notify(ctx context.Context, alert Alert) error {
	var errs error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, alert); err != nil {
			metrics.Alerts.WithLabelValues(n.Name(), "failed").Inc()
			m.logger.Warn("Alert failed", map[string]interface{}{
				"channel":  n.Name(),
				"location": alert.Location,
				"error":    err.Error(),
			})
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", n.Name(), err))
			continue
		}
		metrics.Alerts.WithLabelValues(n.Name(), "sent").Inc()
	}
	return errs
}

// FromConfig builds the alert channels enabled in cfg.
func FromConfig(ctx context.Context, cfg *config.Config, log logger.Logger) (*Multi, error) {
	var notifiers []Notifier

	if cfg.Alert.Enabled {
		notifiers = append(notifiers, NewBeeper(BeeperOptions{
			Duration: config.GetDuration(cfg.Alert.Duration),
			Beeps:    cfg.Alert.Beeps,
		}))
	}

	sms, email := cfg.Notifications.SMS, cfg.Notifications.Email
	if sms.Enabled || email.Enabled {
		clients, err := aws.NewClients(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			return nil, err
		}
		if sms.Enabled {
			notifiers = append(notifiers, NewSMSNotifier(clients.SNS, SMSOptions{
				PhoneNumber: sms.PhoneNumber,
				TopicARN:    sms.TopicARN,
				SenderID:    sms.SenderID,
			}))
		}
		if email.Enabled {
			notifiers = append(notifiers, NewEmailNotifier(clients.SES, email.FromEmail, email.ToEmail))
		}
	}

	multi := NewMulti(log, notifiers...)
	multi.logger.Info("Alert channels configured", map[string]interface{}{
		"channels": multi.Channels(),
	})
	return multi, nil
}
