package cowin

import (
	"bytes"
	"strconv"

	json "github.com/goccy/go-json"
)

// DateLayout is the DD-MM-YYYY format used by every date in the API.
const DateLayout = "02-01-2006"

// Vaccination statuses reported for a beneficiary.
const (
	StatusNotVaccinated       = "Not Vaccinated"
	StatusPartiallyVaccinated = "Partially Vaccinated"
	StatusVaccinated          = "Vaccinated"
)

// FlexInt decodes an integer sent either as a JSON number or a numeric string.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return err
	}
	*f = FlexInt(n)
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(f))
}

type State struct {
	StateID   int    `json:"state_id"`
	StateName string `json:"state_name"`
}

type District struct {
	DistrictID   int    `json:"district_id"`
	DistrictName string `json:"district_name"`
}

// Beneficiary is a record as returned by the beneficiaries endpoint.
type Beneficiary struct {
	ReferenceID       string  `json:"beneficiary_reference_id"`
	Name              string  `json:"name"`
	BirthYear         FlexInt `json:"birth_year"`
	Vaccine           string  `json:"vaccine"`
	VaccinationStatus string  `json:"vaccination_status"`
	Dose1Date         string  `json:"dose1_date"`
	Dose2Date         string  `json:"dose2_date,omitempty"`
}

type Center struct {
	CenterID     int       `json:"center_id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	StateName    string    `json:"state_name"`
	DistrictName string    `json:"district_name"`
	BlockName    string    `json:"block_name"`
	Pincode      FlexInt   `json:"pincode"`
	FeeType      string    `json:"fee_type"`
	Sessions     []Session `json:"sessions"`
}

type Session struct {
	SessionID              string   `json:"session_id"`
	Date                   string   `json:"date"`
	AvailableCapacity      int      `json:"available_capacity"`
	AvailableCapacityDose1 int      `json:"available_capacity_dose1"`
	AvailableCapacityDose2 int      `json:"available_capacity_dose2"`
	MinAgeLimit            int      `json:"min_age_limit"`
	Vaccine                string   `json:"vaccine"`
	Slots                  []string `json:"slots"`
}

// BookingRequest is the payload of the schedule endpoint.
type BookingRequest struct {
	Dose          int      `json:"dose"`
	SessionID     string   `json:"session_id"`
	Slot          string   `json:"slot"`
	Beneficiaries []string `json:"beneficiaries"`
	Captcha       string   `json:"captcha"`
	CenterID      int      `json:"center_id,omitempty"`
}

type statesResponse struct {
	States []State `json:"states"`
}

type districtsResponse struct {
	Districts []District `json:"districts"`
}

type beneficiariesResponse struct {
	Beneficiaries []Beneficiary `json:"beneficiaries"`
}

type calendarResponse struct {
	Centers []Center `json:"centers"`
}

type otpResponse struct {
	TxnID string `json:"txnId"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type captchaResponse struct {
	Captcha string `json:"captcha"`
}

type scheduleResponse struct {
	AppointmentID string `json:"appointment_confirmation_no"`
}
