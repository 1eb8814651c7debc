// Package session runs one interactive booking session: authentication,
// beneficiary selection, location selection and the poll/alert/book loop.
package session

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"cowin-slot-assistant/internal/beneficiary"
	"cowin-slot-assistant/internal/booking"
	"cowin-slot-assistant/internal/common/config"
	"cowin-slot-assistant/internal/common/errors"
	"cowin-slot-assistant/internal/common/logger"
	"cowin-slot-assistant/internal/common/observability"
	"cowin-slot-assistant/internal/cowin"
	"cowin-slot-assistant/internal/location"
	"cowin-slot-assistant/internal/notify"
	"cowin-slot-assistant/internal/prompt"
	"cowin-slot-assistant/internal/slots"
)

type Session struct {
	ID       string
	cfg      *config.Config
	client   *cowin.Client
	prompt   prompt.Prompter
	out      io.Writer
	notifier notify.Notifier
	obs      *observability.Observability
	now      func() time.Time
	logger   logger.Logger
}

type Options struct {
	Config        *config.Config
	Prompter      prompt.Prompter
	Out           io.Writer
	Notifier      notify.Notifier
	Observability *observability.Observability
	// Now defaults to time.Now.
	Now    func() time.Time
	Logger logger.Logger
}

func New(opts Options) *Session {
	id := uuid.New().String()

	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"sessionId": id})

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewMulti(log)
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	cfg := opts.Config
	client := cowin.NewClient(cowin.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   config.GetDuration(cfg.API.Timeout),
		UserAgent: cfg.API.UserAgent,
		Token:     cfg.API.Token,
		Logger:    log,
	})

	return &Session{
		ID:       id,
		cfg:      cfg,
		client:   client,
		prompt:   opts.Prompter,
		out:      out,
		notifier: notifier,
		obs:      opts.Observability,
		now:      now,
		logger:   log,
	}
}

// Run executes the session and returns the appointment confirmation number.
func (s *Session) Run(ctx context.Context) (string, error) {
	s.logger.Info("Session started", map[string]interface{}{
		"mode":   s.cfg.Search.Mode,
		"strict": s.cfg.Search.StrictSelection,
	})

	if err := s.authenticate(ctx); err != nil {
		return "", err
	}

	selected, err := s.selectBeneficiaries(ctx)
	if err != nil {
		return "", err
	}

	minAge, err := s.minAge(selected)
	if err != nil {
		return "", err
	}

	locations, err := s.locations(ctx)
	if err != nil {
		return "", err
	}

	criteria, err := slots.CriteriaFor(selected, minAge)
	if err != nil {
		return "", err
	}

	booker := booking.New(booking.Options{
		Client:      s.client,
		Prompter:    s.prompt,
		Notifier:    s.notifier,
		Out:         s.out,
		CaptchaFile: s.cfg.Search.CaptchaFile,
		Logger:      s.logger,
	})

	poller := slots.NewPoller(slots.PollerOptions{
		Calendar:      s.client,
		Notifier:      s.notifier,
		Booker:        booker,
		Locations:     locations,
		Beneficiaries: selected,
		Criteria:      criteria,
		Interval:      config.GetDuration(s.cfg.Search.PollInterval),
		Now:           s.now,
		Out:           s.out,
		Observability: s.obs,
		Logger:        s.logger,
	})

	id, err := poller.Run(ctx)
	if err != nil {
		return "", err
	}
	s.logger.Info("Session finished", map[string]interface{}{"appointmentId": id})
	return id, nil
}

// authenticate keeps a configured token and runs the OTP flow otherwise.
func (s *Session) authenticate(ctx context.Context) error {
	if s.client.Authenticated() {
		return nil
	}

	mobile := s.cfg.API.Mobile
	if mobile == "" {
		answer, err := s.prompt.Ask("Enter the registered mobile number: ")
		if err != nil {
			return err
		}
		mobile = answer
	}
	if mobile == "" {
		return errors.NewInvalidInputError(mobile, "mobile number is required")
	}

	txnID, err := s.client.GenerateOTP(ctx, mobile)
	if err != nil {
		return err
	}

	otp, err := s.prompt.Ask("Enter OTP: ")
	if err != nil {
		return err
	}
	if otp == "" {
		return errors.NewInvalidInputError(otp, "OTP is required")
	}

	_, err = s.client.ConfirmOTP(ctx, txnID, otp)
	return err
}

func (s *Session) selectBeneficiaries(ctx context.Context) ([]beneficiary.Enriched, error) {
	selector := beneficiary.NewSelector(beneficiary.Options{
		Fetcher: s.client,
		Logger:  s.logger,
		Now:     s.now,
		Strict:  s.cfg.Search.StrictSelection,
	})

	list, err := selector.FetchAndEnrich(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errors.NewEmptyInputError("beneficiaries")
	}

	beneficiary.Table(list).Render(s.out)
	fmt.Fprint(s.out, beneficiary.ImportantNotes)

	indices, err := s.prompt.AskIndices("Enter comma separated index numbers of beneficiaries to book for : ")
	if err != nil {
		return nil, err
	}

	selected, err := selector.SelectAndValidate(list, indices)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(s.out, "Selected beneficiaries:")
	beneficiary.Table(selected).Render(s.out)
	return selected, nil
}

// minAge uses the configured age when set, the youngest beneficiary otherwise.
func (s *Session) minAge(selected []beneficiary.Enriched) (int, error) {
	minAge, err := beneficiary.ComputeMinAge(selected)
	if err != nil {
		return 0, err
	}
	if s.cfg.Search.MinAge > 0 {
		s.logger.Info("Using configured minimum age", map[string]interface{}{
			"configured": s.cfg.Search.MinAge,
			"computed":   minAge,
		})
		return s.cfg.Search.MinAge, nil
	}
	return minAge, nil
}

func (s *Session) locations(ctx context.Context) ([]location.Location, error) {
	tones := location.Tones{Base: s.cfg.Alert.BaseFrequency, Step: s.cfg.Alert.FrequencyStep}
	svc := location.NewService(s.client, s.prompt, s.out, tones, s.logger)

	if s.cfg.Search.Mode == config.ModePincode {
		return svc.Pincodes(s.cfg.Search.Pincodes)
	}
	if len(s.cfg.Search.DistrictIDs) > 0 {
		return svc.DistrictsPreset(ctx, s.cfg.Search.StateID, s.cfg.Search.DistrictIDs)
	}
	return svc.Districts(ctx)
}
