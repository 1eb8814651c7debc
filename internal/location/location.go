// Package location implements the cascading state/district selection and
// pincode entry that decide where slots are searched.
package location

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"cowin-slot-assistant/internal/common/errors"
	"cowin-slot-assistant/internal/common/logger"
	"cowin-slot-assistant/internal/cowin"
	"cowin-slot-assistant/internal/display"
	"cowin-slot-assistant/internal/prompt"
)

var pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)

// Kind says which calendar endpoint a Location is searched with.
type Kind string

const (
	KindDistrict Kind = "district"
	KindPincode  Kind = "pincode"
)

// Location is one place to poll, with the beep frequency used when slots
// are found there.
type Location struct {
	Kind           Kind
	DistrictID     int
	Name           string
	Pincode        string
	AlertFrequency int
}

func (l Location) String() string {
	if l.Kind == KindPincode {
		return l.Pincode
	}
	return fmt.Sprintf("%s (%d)", l.Name, l.DistrictID)
}

// Tones derives alert frequencies from a location's priority position.
type Tones struct {
	Base int
	Step int
}

// DefaultTones matches 440 Hz for the first location, then 220 Hz higher per
// position.
var DefaultTones = Tones{Base: 440, Step: 110}

func (t Tones) Frequency(position int) int {
	return t.Base + 2*position*t.Step
}

// Client is the part of the API client used for location lookups.
type Client interface {
	GetStates(ctx context.Context) ([]cowin.State, error)
	GetDistricts(ctx context.Context, stateID int) ([]cowin.District, error)
}

// SelectState maps a 1-based index to a state.
func SelectState(states []cowin.State, index int) (cowin.State, error) {
	if index < 1 || index > len(states) {
		return cowin.State{}, errors.NewIndexOutOfRangeError(index, len(states))
	}
	return states[index-1], nil
}

// SelectDistricts maps 1-based indices to districts, keeping API order. The
// alert frequency follows the district's position in the full list.
func SelectDistricts(districts []cowin.District, indices []int, tones Tones) ([]Location, error) {
	if len(indices) == 0 {
		return nil, errors.NewEmptyInputError("selectDistricts")
	}
	picked := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx < 1 || idx > len(districts) {
			return nil, errors.NewIndexOutOfRangeError(idx, len(districts))
		}
		picked[idx-1] = true
	}

	var out []Location
	for pos, d := range districts {
		if !picked[pos] {
			continue
		}
		out = append(out, Location{
			Kind:           KindDistrict,
			DistrictID:     d.DistrictID,
			Name:           d.DistrictName,
			AlertFrequency: tones.Frequency(pos),
		})
	}
	return out, nil
}

// DistrictsByID picks districts by ID, keeping API order. The alert frequency
// follows the district's position in the full list, as with SelectDistricts.
func DistrictsByID(districts []cowin.District, ids []int, tones Tones) ([]Location, error) {
	if len(ids) == 0 {
		return nil, errors.NewEmptyInputError("districtIds")
	}
	positions := make(map[int]int, len(districts))
	for pos, d := range districts {
		positions[d.DistrictID] = pos
	}
	indices := make([]int, 0, len(ids))
	for _, id := range ids {
		pos, ok := positions[id]
		if !ok {
			return nil, errors.NewInvalidInputError(strconv.Itoa(id), "district is not in the selected state")
		}
		indices = append(indices, pos+1)
	}
	return SelectDistricts(districts, indices, tones)
}

// ParsePincodes parses comma separated pincodes given in priority order.
func ParsePincodes(text string, tones Tones) ([]Location, error) {
	var pins []string
	for _, part := range strings.Split(text, ",") {
		if part = strings.TrimSpace(part); part != "" {
			pins = append(pins, part)
		}
	}
	return Pincodes(pins, tones)
}

// Pincodes builds pincode locations in priority order.
func Pincodes(pins []string, tones Tones) ([]Location, error) {
	if len(pins) == 0 {
		return nil, errors.NewEmptyInputError("pincodes")
	}
	out := make([]Location, 0, len(pins))
	for i, pin := range pins {
		if !pincodePattern.MatchString(pin) {
			return nil, errors.NewInvalidInputError(pin, "pincode must be 6 digits")
		}
		out = append(out, Location{
			Kind:           KindPincode,
			Pincode:        pin,
			AlertFrequency: tones.Frequency(i),
		})
	}
	return out, nil
}

// Table renders locations for confirmation.
func Table(locations []Location) display.Table {
	rows := make([][]string, 0, len(locations))
	for _, l := range locations {
		id := l.Pincode
		if l.Kind == KindDistrict {
			id = strconv.Itoa(l.DistrictID)
		}
		rows = append(rows, []string{id, l.Name, strconv.Itoa(l.AlertFrequency)})
	}
	return display.Table{Headers: []string{"id", "name", "alert_freq"}, Rows: rows}
}

// Service runs the interactive selection flows.
type Service struct {
	client Client
	prompt prompt.Prompter
	out    io.Writer
	tones  Tones
	logger logger.Logger
}

func NewService(client Client, p prompt.Prompter, out io.Writer, tones Tones, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{client: client, prompt: p, out: out, tones: tones, logger: log}
}

// Districts lists states, asks for one, lists its districts and asks for the
// districts to monitor. Fetch failures are returned unchanged.
func (s *Service) Districts(ctx context.Context) ([]Location, error) {
	states, err := s.client.GetStates(ctx)
	if err != nil {
		return nil, err
	}

	stateRows := make([][]string, len(states))
	for i, st := range states {
		stateRows[i] = []string{st.StateName}
	}
	display.Table{Headers: []string{"state"}, Rows: stateRows, Indexed: true}.Render(s.out)

	answer, err := s.prompt.Ask("\nEnter State Index from the Table: ")
	if err != nil {
		return nil, err
	}
	index, err := strconv.Atoi(answer)
	if err != nil {
		return nil, errors.NewInvalidInputError(answer, "state index must be a number")
	}
	state, err := SelectState(states, index)
	if err != nil {
		return nil, err
	}

	districts, err := s.client.GetDistricts(ctx, state.StateID)
	if err != nil {
		return nil, err
	}

	districtRows := make([][]string, len(districts))
	for i, d := range districts {
		districtRows[i] = []string{d.DistrictName}
	}
	display.Table{Headers: []string{"district"}, Rows: districtRows, Indexed: true}.Render(s.out)

	indices, err := s.prompt.AskIndices("\nEnter comma separated index numbers of Districts to monitor : ")
	if err != nil {
		return nil, err
	}
	locations, err := SelectDistricts(districts, indices, s.tones)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(s.out, "Selected Districts are:")
	Table(locations).Render(s.out)

	s.logger.Info("Districts selected", map[string]interface{}{
		"stateId": state.StateID,
		"count":   len(locations),
	})
	return locations, nil
}

// DistrictsPreset skips the prompts for a configured state and district list.
// Districts are still fetched so names and alert frequencies match the
// interactive flow.
func (s *Service) DistrictsPreset(ctx context.Context, stateID int, districtIDs []int) ([]Location, error) {
	districts, err := s.client.GetDistricts(ctx, stateID)
	if err != nil {
		return nil, err
	}
	locations, err := DistrictsByID(districts, districtIDs, s.tones)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(s.out, "Selected Districts are:")
	Table(locations).Render(s.out)

	s.logger.Info("Districts preset", map[string]interface{}{
		"stateId": stateID,
		"count":   len(locations),
	})
	return locations, nil
}

// Pincodes uses preset pincodes when given, otherwise asks for them.
func (s *Service) Pincodes(preset []string) ([]Location, error) {
	var (
		locations []Location
		err       error
	)
	if len(preset) > 0 {
		locations, err = Pincodes(preset, s.tones)
	} else {
		var answer string
		answer, err = s.prompt.Ask("Enter comma separated Pincodes to monitor (Priority wise): ")
		if err != nil {
			return nil, err
		}
		locations, err = ParsePincodes(answer, s.tones)
	}
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(s.out, "Selected Pincodes are:")
	Table(locations).Render(s.out)
	return locations, nil
}
