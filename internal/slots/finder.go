// Package slots finds bookable sessions in calendar responses and polls the
// selected locations until one is booked.
package slots

import (
	"strconv"
	"strings"
	"time"

	"cowin-slot-assistant/internal/beneficiary"
	"cowin-slot-assistant/internal/common/logger"
	"cowin-slot-assistant/internal/cowin"
	"cowin-slot-assistant/internal/display"
	"cowin-slot-assistant/internal/location"
)

// Criteria a session must meet to be booked for the selected beneficiaries.
type Criteria struct {
	MinAge int
	Count  int
	Dose   int
	// Vaccine is required only for dose 2.
	Vaccine string
	// NotBefore is the latest dose-2 due date among the beneficiaries.
	NotBefore time.Time
}

// CriteriaFor derives the search criteria from a validated selection.
func CriteriaFor(selected []beneficiary.Enriched, minAge int) (Criteria, error) {
	dose, err := beneficiary.Dose(selected)
	if err != nil {
		return Criteria{}, err
	}
	c := Criteria{MinAge: minAge, Count: len(selected), Dose: dose}
	if dose == 2 {
		c.Vaccine = selected[0].Vaccine
		c.NotBefore = beneficiary.LatestDueDate(selected)
	}
	return c, nil
}

// Option is one bookable session.
type Option struct {
	Location location.Location
	Center   cowin.Center
	Session  cowin.Session
}

// Slot is the time slot requested when booking the option.
func (o Option) Slot() string {
	if len(o.Session.Slots) == 0 {
		return ""
	}
	return o.Session.Slots[0]
}

func (o Option) Capacity(dose int) int {
	if dose == 2 {
		return o.Session.AvailableCapacityDose2
	}
	return o.Session.AvailableCapacityDose1
}

type Finder struct {
	logger logger.Logger
}

func NewFinder(log logger.Logger) *Finder {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Finder{logger: log}
}

// Find returns the sessions matching c, in calendar order.
func (f *Finder) Find(loc location.Location, centers []cowin.Center, c Criteria) []Option {
	var out []Option
	for _, center := range centers {
		for _, session := range center.Sessions {
			option := Option{Location: loc, Center: center, Session: session}
			if f.viable(option, c) {
				out = append(out, option)
			}
		}
	}
	return out
}

func (f *Finder) viable(o Option, c Criteria) bool {
	count := c.Count
	if count < 1 {
		count = 1
	}
	if o.Capacity(c.Dose) < count {
		return false
	}
	if o.Session.MinAgeLimit > c.MinAge {
		return false
	}
	if len(o.Session.Slots) == 0 {
		return false
	}
	if c.Vaccine != "" && !strings.EqualFold(o.Session.Vaccine, c.Vaccine) {
		return false
	}
	if !c.NotBefore.IsZero() {
		date, err := time.ParseInLocation(cowin.DateLayout, o.Session.Date, time.UTC)
		if err != nil {
			f.logger.Debug("Skipping session with unreadable date", map[string]interface{}{
				"sessionId": o.Session.SessionID,
				"date":      o.Session.Date,
			})
			return false
		}
		if date.Before(c.NotBefore) {
			return false
		}
	}
	return true
}

// Table lists options for the console.
func Table(options []Option, dose int) display.Table {
	rows := make([][]string, 0, len(options))
	for _, o := range options {
		rows = append(rows, []string{
			o.Center.Name,
			strconv.Itoa(int(o.Center.Pincode)),
			o.Session.Date,
			o.Session.Vaccine,
			strconv.Itoa(o.Capacity(dose)),
			strconv.Itoa(o.Session.MinAgeLimit),
			o.Center.FeeType,
			strings.Join(o.Session.Slots, ", "),
		})
	}
	return display.Table{
		Headers: []string{"center", "pincode", "date", "vaccine", "available", "min_age", "fee", "slots"},
		Rows:    rows,
		Indexed: true,
	}
}
