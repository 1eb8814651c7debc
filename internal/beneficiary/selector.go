// Package beneficiary fetches the beneficiaries registered under a mobile
// number, derives their booking fields and validates the user's selection.
package beneficiary

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"cowin-slot-assistant/internal/common/errors"
	"cowin-slot-assistant/internal/common/logger"
	"cowin-slot-assistant/internal/cowin"
	"cowin-slot-assistant/internal/display"
)

// Fetcher is the part of the API client the selector needs.
type Fetcher interface {
	GetBeneficiaries(ctx context.Context) ([]cowin.Beneficiary, error)
}

type Selector struct {
	fetcher Fetcher
	logger  logger.Logger
	now     func() time.Time
	strict  bool
}

type Options struct {
	Fetcher Fetcher
	Logger  logger.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// Strict rejects selections that break the booking consistency rules
	// instead of trusting the user.
	Strict bool
}

func NewSelector(opts Options) *Selector {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Selector{
		fetcher: opts.Fetcher,
		logger:  log,
		now:     now,
		strict:  opts.Strict,
	}
}

// FetchAndEnrich fetches all beneficiaries and derives their age and dose-2
// due date. A record whose due date cannot be computed keeps the reason in
// DueDateErr; it never fails the whole fetch.
func (s *Selector) FetchAndEnrich(ctx context.Context) ([]Enriched, error) {
	records, err := s.fetcher.GetBeneficiaries(ctx)
	if err != nil {
		return nil, err
	}

	enriched := Enrich(records, s.now())
	for _, e := range enriched {
		if e.DueDateErr != nil {
			s.logger.Warn("Dose 2 due date not computed", map[string]interface{}{
				"beneficiaryId": e.ReferenceID,
				"vaccine":       e.Vaccine,
				"dose1Date":     e.Dose1Date,
				"error":         e.DueDateErr.Error(),
			})
		}
	}

	s.logger.Info("Fetched beneficiaries", map[string]interface{}{
		"count": len(enriched),
	})
	return enriched, nil
}

// Enrich derives age and due date for every record, in order.
func Enrich(records []cowin.Beneficiary, now time.Time) []Enriched {
	out := make([]Enriched, 0, len(records))
	for _, record := range records {
		out = append(out, enrichOne(record, now))
	}
	return out
}

func enrichOne(record cowin.Beneficiary, now time.Time) Enriched {
	e := Enriched{
		Beneficiary: record,
		Age:         now.Year() - int(record.BirthYear),
	}
	if e.PartiallyVaccinated() {
		due, err := DueDate(record.Vaccine, record.Dose1Date)
		if err != nil {
			e.DueDateErr = err
		} else {
			e.Dose2Due = due
		}
	}
	return e
}

var tableHeaders = []string{"bref_id", "name", "vaccine", "age", "status", "dose1_date", "due_date"}

// Table builds the 1-indexed selection table. The due date column is only
// filled for Partially Vaccinated beneficiaries.
func Table(list []Enriched) display.Table {
	rows := make([][]string, 0, len(list))
	for _, e := range list {
		due := ""
		if e.PartiallyVaccinated() {
			due = e.DueDateText()
		}
		rows = append(rows, []string{
			e.ReferenceID,
			e.Name,
			e.Vaccine,
			strconv.Itoa(e.Age),
			e.VaccinationStatus,
			e.Dose1Date,
			due,
		})
	}
	return display.Table{Headers: tableHeaders, Rows: rows, Indexed: true}
}

// RenderSelectable returns the selection table as text.
func RenderSelectable(list []Enriched) string {
	return Table(list).String()
}

// SelectAndValidate maps 1-based indices back to beneficiaries. Duplicates
// are ignored and the result keeps the order of list. The due date of each
// selected Partially Vaccinated beneficiary is recomputed; one that cannot be
// computed fails the selection.
func (s *Selector) SelectAndValidate(list []Enriched, indices []int) ([]Enriched, error) {
	if len(indices) == 0 {
		return nil, errors.NewEmptyInputError("selectAndValidate")
	}

	picked := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx < 1 || idx > len(list) {
			return nil, errors.NewIndexOutOfRangeError(idx, len(list))
		}
		picked[idx-1] = true
	}

	positions := make([]int, 0, len(picked))
	for pos := range picked {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	selected := make([]Enriched, 0, len(positions))
	for _, pos := range positions {
		e := list[pos]
		e.Dose2Due = time.Time{}
		e.DueDateErr = nil
		if e.PartiallyVaccinated() {
			due, err := DueDate(e.Vaccine, e.Dose1Date)
			if err != nil {
				return nil, fmt.Errorf("beneficiary %s: %w", e.ReferenceID, err)
			}
			e.Dose2Due = due
		}
		selected = append(selected, e)
	}

	if s.strict {
		if err := ValidateConsistency(selected); err != nil {
			return nil, err
		}
	} else if err := ValidateConsistency(selected); err != nil {
		s.logger.Warn("Selection may not be bookable together", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return selected, nil
}

// ValidateConsistency checks that the beneficiaries can share one booking:
// same dose stage, same vaccine for dose 2, and same age band.
func ValidateConsistency(list []Enriched) error {
	if len(list) == 0 {
		return errors.NewEmptyInputError("validateConsistency")
	}

	first := list[0]
	for _, e := range list {
		if e.Stage() == StageComplete {
			return errors.NewSelectionInconsistentError("dose_stage",
				fmt.Sprintf("%s is already fully vaccinated", e.Name))
		}
		if e.Stage() != first.Stage() {
			return errors.NewSelectionInconsistentError("dose_stage",
				fmt.Sprintf("%s is due for the %s but %s for the %s", first.Name, first.Stage(), e.Name, e.Stage()))
		}
		if e.Stage() == StageSecondDose && e.Vaccine != first.Vaccine {
			return errors.NewSelectionInconsistentError("vaccine",
				fmt.Sprintf("%s took %s but %s took %s", first.Name, first.Vaccine, e.Name, e.Vaccine))
		}
		if e.AgeBand() != first.AgeBand() {
			return errors.NewSelectionInconsistentError("age_band",
				fmt.Sprintf("%s is in the %d+ group but %s is in the %d+ group", first.Name, first.AgeBand(), e.Name, e.AgeBand()))
		}
	}
	return nil
}

// ComputeMinAge returns the youngest age in list.
func ComputeMinAge(list []Enriched) (int, error) {
	if len(list) == 0 {
		return 0, errors.NewEmptyInputError("computeMinAge")
	}
	min := list[0].Age
	for _, e := range list[1:] {
		if e.Age < min {
			min = e.Age
		}
	}
	return min, nil
}

// Dose returns the dose number to book for a consistent selection: 2 when
// the first beneficiary is Partially Vaccinated, 1 otherwise.
func Dose(list []Enriched) (int, error) {
	if len(list) == 0 {
		return 0, errors.NewEmptyInputError("dose")
	}
	if list[0].Stage() == StageSecondDose {
		return 2, nil
	}
	return 1, nil
}

// LatestDueDate returns the latest dose-2 due date in list, or the zero time.
func LatestDueDate(list []Enriched) time.Time {
	var latest time.Time
	for _, e := range list {
		if e.Dose2Due.After(latest) {
			latest = e.Dose2Due
		}
	}
	return latest
}

// ReferenceIDs returns the reference ids used in the booking payload.
func ReferenceIDs(list []Enriched) []string {
	ids := make([]string, len(list))
	for i, e := range list {
		ids[i] = e.ReferenceID
	}
	return ids
}

// ImportantNotes is printed before the user picks beneficiaries.
const ImportantNotes = `
################# IMPORTANT NOTES #################
# 1. While selecting beneficiaries, make sure that selected beneficiaries are all taking the same dose: either first OR second.
#    Please do not try to club together booking for first dose for one beneficiary and second dose for another beneficiary.
#
# 2. While selecting beneficiaries, also make sure that beneficiaries selected for second dose are all taking the same vaccine: COVISHIELD OR COVAXIN.
#    Please do not try to club together booking for beneficiary taking COVISHIELD with beneficiary taking COVAXIN.
#
# 3. If you're selecting multiple beneficiaries, make sure all are of the same age group (45+ or 18+) as defined by the govt.
#    Please do not try to club together booking for younger and older beneficiaries.
###################################################
`
