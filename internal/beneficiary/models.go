package beneficiary

import (
	"time"

	"cowin-slot-assistant/internal/common/errors"
	"cowin-slot-assistant/internal/cowin"
)

// DoseIntervals is the number of days between dose 1 and dose 2 per vaccine.
var DoseIntervals = map[string]int{
	"COVISHIELD": 84,
	"COVAXIN":    28,
	"SPUTNIK V":  21,
}

// DoseInterval returns the dose-2 interval in days for vaccine.
func DoseInterval(vaccine string) (int, error) {
	days, ok := DoseIntervals[vaccine]
	if !ok {
		return 0, errors.NewUnknownVaccineError(vaccine)
	}
	return days, nil
}

// DueDate computes the dose-2 due date from a DD-MM-YYYY dose-1 date using
// calendar-day arithmetic in UTC.
func DueDate(vaccine, dose1Date string) (time.Time, error) {
	days, err := DoseInterval(vaccine)
	if err != nil {
		return time.Time{}, err
	}
	if dose1Date == "" {
		return time.Time{}, errors.NewInvalidDoseDateError(dose1Date, nil)
	}
	dose1, err := time.ParseInLocation(cowin.DateLayout, dose1Date, time.UTC)
	if err != nil {
		return time.Time{}, errors.NewInvalidDoseDateError(dose1Date, err)
	}
	return dose1.AddDate(0, 0, days), nil
}

// Stage is the dose a beneficiary would book next.
type Stage int

const (
	StageFirstDose Stage = iota + 1
	StageSecondDose
	StageComplete
)

func (s Stage) String() string {
	switch s {
	case StageFirstDose:
		return "first dose"
	case StageSecondDose:
		return "second dose"
	default:
		return "fully vaccinated"
	}
}

// SeniorAge is the lower bound of the older booking age band.
const SeniorAge = 45

// Enriched is a beneficiary record plus the fields derived from it.
type Enriched struct {
	cowin.Beneficiary

	Age int
	// Dose2Due is set only for Partially Vaccinated beneficiaries whose
	// vaccine and dose-1 date allow computing it.
	Dose2Due time.Time
	// DueDateErr explains why Dose2Due is unset for a Partially Vaccinated
	// beneficiary.
	DueDateErr error
}

func (e Enriched) PartiallyVaccinated() bool {
	return e.VaccinationStatus == cowin.StatusPartiallyVaccinated
}

func (e Enriched) HasDueDate() bool {
	return !e.Dose2Due.IsZero()
}

// DueDateText is the due date in DD-MM-YYYY, or "" when undefined.
func (e Enriched) DueDateText() string {
	if !e.HasDueDate() {
		return ""
	}
	return e.Dose2Due.Format(cowin.DateLayout)
}

func (e Enriched) Stage() Stage {
	switch e.VaccinationStatus {
	case cowin.StatusNotVaccinated:
		return StageFirstDose
	case cowin.StatusPartiallyVaccinated:
		return StageSecondDose
	default:
		return StageComplete
	}
}

// AgeBand returns 45 for beneficiaries aged 45 or more, 18 otherwise.
func (e Enriched) AgeBand() int {
	if e.Age >= SeniorAge {
		return SeniorAge
	}
	return 18
}
