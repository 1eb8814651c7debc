// Package cowin is a typed client for the vaccination booking API.
package cowin

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"cowin-slot-assistant/internal/common/errors"
	chttp "cowin-slot-assistant/internal/common/http"
	"cowin-slot-assistant/internal/common/logger"
	"cowin-slot-assistant/internal/common/validation"
)

const (
	statesPath        = "/v2/admin/location/states"
	districtsPath     = "/v2/admin/location/districts/%d"
	beneficiariesPath = "/v2/appointment/beneficiaries"
	calendarDistrict  = "/v2/appointment/sessions/calendarByDistrict"
	calendarPincode   = "/v2/appointment/sessions/calendarByPin"
	generateOTPPath   = "/v2/auth/public/generateOTP"
	confirmOTPPath    = "/v2/auth/public/confirmOTP"
	captchaPath       = "/v2/auth/getRecaptcha"
	schedulePath      = "/v2/appointment/schedule"
)

type Client struct {
	http   *chttp.Client
	logger logger.Logger
}

type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Token     string
	Logger    logger.Logger
}

func NewClient(opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	httpClient := chttp.NewClient(chttp.Options{
		BaseURL:   opts.BaseURL,
		Timeout:   opts.Timeout,
		UserAgent: opts.UserAgent,
		Logger:    log,
	})
	httpClient.SetToken(opts.Token)
	return &Client{http: httpClient, logger: log}
}

func (c *Client) Authenticated() bool {
	return c.http.Token() != ""
}

func (c *Client) get(ctx context.Context, resource, path string, schema validation.JSONSchema, out interface{}) error {
	_, err := c.http.Do(ctx, chttp.Request{
		Method:   http.MethodGet,
		Path:     path,
		Resource: resource,
		Schema:   &schema,
		Out:      out,
	})
	return err
}

func (c *Client) post(ctx context.Context, resource, path string, body interface{}, schema *validation.JSONSchema, out interface{}) error {
	_, err := c.http.Do(ctx, chttp.Request{
		Method:   http.MethodPost,
		Path:     path,
		Resource: resource,
		Body:     body,
		Schema:   schema,
		Out:      out,
	})
	return err
}

func (c *Client) GetStates(ctx context.Context) ([]State, error) {
	var resp statesResponse
	if err := c.get(ctx, "states", statesPath, StatesSchema(), &resp); err != nil {
		return nil, err
	}
	return resp.States, nil
}

func (c *Client) GetDistricts(ctx context.Context, stateID int) ([]District, error) {
	var resp districtsResponse
	if err := c.get(ctx, "districts", fmt.Sprintf(districtsPath, stateID), DistrictsSchema(), &resp); err != nil {
		return nil, err
	}
	return resp.Districts, nil
}

func (c *Client) GetBeneficiaries(ctx context.Context) ([]Beneficiary, error) {
	var resp beneficiariesResponse
	if err := c.get(ctx, "beneficiaries", beneficiariesPath, BeneficiariesSchema(), &resp); err != nil {
		return nil, err
	}
	return resp.Beneficiaries, nil
}

// CalendarByDistrict returns the centers of a district with sessions for the
// week starting at date.
func (c *Client) CalendarByDistrict(ctx context.Context, districtID int, date time.Time) ([]Center, error) {
	query := url.Values{}
	query.Set("district_id", fmt.Sprint(districtID))
	query.Set("date", date.Format(DateLayout))

	var resp calendarResponse
	if err := c.get(ctx, "calendarByDistrict", calendarDistrict+"?"+query.Encode(), CalendarSchema(), &resp); err != nil {
		return nil, err
	}
	return resp.Centers, nil
}

func (c *Client) CalendarByPincode(ctx context.Context, pincode string, date time.Time) ([]Center, error) {
	query := url.Values{}
	query.Set("pincode", pincode)
	query.Set("date", date.Format(DateLayout))

	var resp calendarResponse
	if err := c.get(ctx, "calendarByPin", calendarPincode+"?"+query.Encode(), CalendarSchema(), &resp); err != nil {
		return nil, err
	}
	return resp.Centers, nil
}

// GenerateOTP requests an OTP for mobile and returns the transaction id.
func (c *Client) GenerateOTP(ctx context.Context, mobile string) (string, error) {
	schema := OTPSchema()
	var resp otpResponse
	if err := c.post(ctx, "generateOTP", generateOTPPath, map[string]string{"mobile": mobile}, &schema, &resp); err != nil {
		return "", err
	}
	return resp.TxnID, nil
}

// ConfirmOTP exchanges the OTP for a bearer token, which is then used for
// every later call.
func (c *Client) ConfirmOTP(ctx context.Context, txnID, otp string) (string, error) {
	digest := sha256.Sum256([]byte(otp))
	body := map[string]string{
		"otp":   hex.EncodeToString(digest[:]),
		"txnId": txnID,
	}

	schema := TokenSchema()
	var resp tokenResponse
	if err := c.post(ctx, "confirmOTP", confirmOTPPath, body, &schema, &resp); err != nil {
		return "", err
	}

	c.http.SetToken(resp.Token)
	c.logger.Info("Authenticated with OTP", map[string]interface{}{"txnId": txnID})
	return resp.Token, nil
}

// GetCaptcha returns the captcha image as SVG markup.
func (c *Client) GetCaptcha(ctx context.Context) (string, error) {
	schema := CaptchaSchema()
	var resp captchaResponse
	if err := c.post(ctx, "captcha", captchaPath, map[string]string{}, &schema, &resp); err != nil {
		return "", err
	}
	return resp.Captcha, nil
}

// Schedule books an appointment and returns the confirmation number. A
// rejected booking fails with BOOKING_FAILED.
func (c *Client) Schedule(ctx context.Context, req BookingRequest) (string, error) {
	var resp scheduleResponse
	err := c.post(ctx, "schedule", schedulePath, req, nil, &resp)
	if errors.HasCode(err, errors.ErrCodeFetchFailed) {
		return "", errors.NewBookingFailedError(errors.StatusCode(err), errors.Body(err))
	}
	if err != nil {
		return "", err
	}
	return resp.AppointmentID, nil
}
