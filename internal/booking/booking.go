// Package booking turns a viable session into an appointment: it fetches the
// captcha, asks the user to solve it and posts the schedule request.
package booking

import (
	"context"
	"fmt"
	"io"
	"os"

	"cowin-slot-assistant/internal/beneficiary"
	"cowin-slot-assistant/internal/common/errors"
	"cowin-slot-assistant/internal/common/logger"
	"cowin-slot-assistant/internal/common/metrics"
	"cowin-slot-assistant/internal/cowin"
	"cowin-slot-assistant/internal/notify"
	"cowin-slot-assistant/internal/prompt"
	"cowin-slot-assistant/internal/slots"
)

const DefaultCaptchaFile = "captcha.svg"

// Scheduler is the part of the API client used to book.
type Scheduler interface {
	GetCaptcha(ctx context.Context) (string, error)
	Schedule(ctx context.Context, req cowin.BookingRequest) (string, error)
}

type Booker struct {
	client      Scheduler
	prompt      prompt.Prompter
	notifier    notify.Notifier
	out         io.Writer
	captchaFile string
	logger      logger.Logger
}

type Options struct {
	Client   Scheduler
	Prompter prompt.Prompter
	// Notifier raises the warning alert before the captcha prompt.
	Notifier    notify.Notifier
	Out         io.Writer
	CaptchaFile string
	Logger      logger.Logger
}

func New(opts Options) *Booker {
	b := &Booker{
		client:      opts.Client,
		prompt:      opts.Prompter,
		notifier:    opts.Notifier,
		out:         opts.Out,
		captchaFile: opts.CaptchaFile,
		logger:      opts.Logger,
	}
	if b.logger == nil {
		b.logger = logger.NewNoOpLogger()
	}
	if b.notifier == nil {
		b.notifier = notify.NewMulti(b.logger)
	}
	if b.out == nil {
		b.out = io.Discard
	}
	if b.captchaFile == "" {
		b.captchaFile = DefaultCaptchaFile
	}
	return b
}

// Request builds the schedule payload for option.
func Request(option slots.Option, beneficiaries []beneficiary.Enriched, captcha string) (cowin.BookingRequest, error) {
	dose, err := beneficiary.Dose(beneficiaries)
	if err != nil {
		return cowin.BookingRequest{}, err
	}
	return cowin.BookingRequest{
		Dose:          dose,
		SessionID:     option.Session.SessionID,
		Slot:          option.Slot(),
		Beneficiaries: beneficiary.ReferenceIDs(beneficiaries),
		Captcha:       captcha,
		CenterID:      option.Center.CenterID,
	}, nil
}

// Book books option for beneficiaries and returns the appointment
// confirmation number. A rejected booking fails with BOOKING_FAILED.
func (b *Booker) Book(ctx context.Context, option slots.Option, beneficiaries []beneficiary.Enriched) (string, error) {
	log := b.logger.WithFields(map[string]interface{}{
		"center":  option.Center.Name,
		"session": option.Session.SessionID,
		"slot":    option.Slot(),
	})

	captcha, err := b.solveCaptcha(ctx, option)
	if err != nil {
		metrics.BookingAttempts.WithLabelValues("aborted").Inc()
		return "", err
	}

	req, err := Request(option, beneficiaries, captcha)
	if err != nil {
		metrics.BookingAttempts.WithLabelValues("aborted").Inc()
		return "", err
	}

	log.Info("Booking appointment", map[string]interface{}{
		"dose":          req.Dose,
		"beneficiaries": len(req.Beneficiaries),
	})

	id, err := b.client.Schedule(ctx, req)
	if err != nil {
		metrics.BookingAttempts.WithLabelValues("rejected").Inc()
		log.Warn("Booking rejected", map[string]interface{}{
			"statusCode": errors.StatusCode(err),
			"body":       errors.Body(err),
		})
		return "", err
	}

	metrics.BookingAttempts.WithLabelValues("booked").Inc()
	fmt.Fprintf(b.out, "\nAppointment booked. Confirmation number: %s\n", id)
	log.Info("Appointment booked", map[string]interface{}{"appointmentId": id})
	return id, nil
}

func (b *Booker) solveCaptcha(ctx context.Context, option slots.Option) (string, error) {
	svg, err := b.client.GetCaptcha(ctx)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(b.captchaFile, []byte(svg), 0o644); err != nil {
		return "", fmt.Errorf("failed to save captcha: %w", err)
	}

	if err := b.notifier.Notify(ctx, notify.Alert{
		Location:  option.Location.String(),
		Frequency: notify.WarningFrequency,
		Warning:   true,
	}); err != nil {
		b.logger.Warn("Warning alert not delivered", map[string]interface{}{"error": err.Error()})
	}

	fmt.Fprintf(b.out, "\nBooking %s on %s at %s (%s)\n", option.Slot(), option.Session.Date, option.Center.Name, option.Session.Vaccine)
	fmt.Fprintf(b.out, "Captcha saved to %s. Open it to read the characters.\n", b.captchaFile)

	captcha, err := b.prompt.Ask("Enter Captcha: ")
	if err != nil {
		return "", err
	}
	if captcha == "" {
		return "", errors.NewInvalidInputError(captcha, "captcha is required")
	}
	return captcha, nil
}
