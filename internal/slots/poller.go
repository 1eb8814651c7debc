package slots

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"cowin-slot-assistant/internal/beneficiary"
	"cowin-slot-assistant/internal/common/errors"
	"cowin-slot-assistant/internal/common/logger"
	"cowin-slot-assistant/internal/common/metrics"
	"cowin-slot-assistant/internal/common/observability"
	"cowin-slot-assistant/internal/cowin"
	"cowin-slot-assistant/internal/location"
	"cowin-slot-assistant/internal/notify"
)

// Calendar is the part of the API client used to search sessions.
type Calendar interface {
	CalendarByDistrict(ctx context.Context, districtID int, date time.Time) ([]cowin.Center, error)
	CalendarByPincode(ctx context.Context, pincode string, date time.Time) ([]cowin.Center, error)
}

// Booker books one option for the beneficiaries and returns the appointment
// confirmation number.
type Booker interface {
	Book(ctx context.Context, option Option, beneficiaries []beneficiary.Enriched) (string, error)
}

const DefaultInterval = 15 * time.Second

// Poll cycle outcomes.
const (
	OutcomeBooked = "booked"
	OutcomeFound  = "found"
	OutcomeEmpty  = "empty"
	OutcomeError  = "error"
)

type Poller struct {
	calendar      Calendar
	finder        *Finder
	notifier      notify.Notifier
	booker        Booker
	locations     []location.Location
	beneficiaries []beneficiary.Enriched
	criteria      Criteria
	interval      time.Duration
	now           func() time.Time
	out           io.Writer
	obs           *observability.Observability
	logger        logger.Logger

	// lastOutcome is the outcome recorded for the latest cycle.
	lastOutcome string
}

type PollerOptions struct {
	Calendar      Calendar
	Notifier      notify.Notifier
	Booker        Booker
	Locations     []location.Location
	Beneficiaries []beneficiary.Enriched
	Criteria      Criteria
	Interval      time.Duration
	Now           func() time.Time
	Out           io.Writer
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewPoller(opts PollerOptions) *Poller {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewMulti(log)
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	return &Poller{
		calendar:      opts.Calendar,
		finder:        NewFinder(log),
		notifier:      notifier,
		booker:        opts.Booker,
		locations:     opts.Locations,
		beneficiaries: opts.Beneficiaries,
		criteria:      opts.Criteria,
		interval:      interval,
		now:           now,
		out:           out,
		obs:           opts.Observability,
		logger:        log,
	}
}

// Run polls until an appointment is booked, a fatal error occurs or ctx is
// done. It returns the appointment confirmation number.
func (p *Poller) Run(ctx context.Context) (string, error) {
	if len(p.locations) == 0 {
		return "", errors.NewEmptyInputError("poll")
	}

	p.logger.Info("Polling for slots", map[string]interface{}{
		"locations": len(p.locations),
		"dose":      p.criteria.Dose,
		"minAge":    p.criteria.MinAge,
		"interval":  p.interval.String(),
	})

	for {
		id, err := p.Cycle(ctx)
		if err != nil || id != "" {
			return id, err
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(p.interval):
		}
	}
}

// Cycle queries every location once, in priority order.
func (p *Poller) Cycle(ctx context.Context) (string, error) {
	start := time.Now()
	outcome := OutcomeEmpty
	defer func() {
		p.lastOutcome = outcome
		p.obs.RecordPollCycle(ctx, time.Since(start), outcome)
	}()

	date := p.now()
	failed := 0
	for _, loc := range p.locations {
		if err := ctx.Err(); err != nil {
			outcome = OutcomeError
			return "", err
		}

		centers, err := p.fetch(ctx, loc, date)
		if err != nil {
			// An expired token never recovers; anything else is retried next cycle.
			if errors.StatusCode(err) == http.StatusUnauthorized {
				outcome = OutcomeError
				return "", err
			}
			p.logger.Warn("Calendar fetch failed", map[string]interface{}{
				"location": loc.String(),
				"error":    err.Error(),
			})
			failed++
			if failed == len(p.locations) {
				outcome = OutcomeError
			}
			continue
		}

		options := p.finder.Find(loc, centers, p.criteria)
		if len(options) == 0 {
			continue
		}
		outcome = OutcomeFound
		metrics.SlotsFound.WithLabelValues(loc.String()).Add(float64(len(options)))

		fmt.Fprintf(p.out, "\nFound %d session(s) at %s\n", len(options), loc)
		Table(options, p.criteria.Dose).Render(p.out)

		if err := p.notifier.Notify(ctx, notify.Alert{
			Location:  loc.String(),
			Frequency: loc.AlertFrequency,
			Sessions:  len(options),
		}); err != nil {
			p.logger.Warn("Some alerts were not delivered", map[string]interface{}{
				"error": err.Error(),
			})
		}

		if p.booker == nil {
			continue
		}
		id, err := p.bookAny(ctx, options)
		if err != nil {
			outcome = OutcomeError
			return "", err
		}
		if id != "" {
			outcome = OutcomeBooked
			return id, nil
		}
	}
	return "", nil
}

// bookAny tries options in order until one books. Rejected bookings move on
// to the next option.
func (p *Poller) bookAny(ctx context.Context, options []Option) (string, error) {
	for _, option := range options {
		id, err := p.booker.Book(ctx, option, p.beneficiaries)
		if err == nil {
			return id, nil
		}
		if errors.HasCode(err, errors.ErrCodeBookingFailed) || errors.HasCode(err, errors.ErrCodeInvalidInput) {
			p.logger.Warn("Booking attempt failed", map[string]interface{}{
				"center":  option.Center.Name,
				"session": option.Session.SessionID,
				"error":   err.Error(),
			})
			continue
		}
		return "", err
	}
	return "", nil
}

func (p *Poller) fetch(ctx context.Context, loc location.Location, date time.Time) ([]cowin.Center, error) {
	if loc.Kind == location.KindPincode {
		return p.calendar.CalendarByPincode(ctx, loc.Pincode, date)
	}
	return p.calendar.CalendarByDistrict(ctx, loc.DistrictID, date)
}
