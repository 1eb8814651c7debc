package booking

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cowin-slot-assistant/internal/beneficiary"
	"cowin-slot-assistant/internal/common/errors"
	"cowin-slot-assistant/internal/common/logger"
	"cowin-slot-assistant/internal/common/metrics"
	"cowin-slot-assistant/internal/cowin"
	"cowin-slot-assistant/internal/location"
	"cowin-slot-assistant/internal/notify"
	"cowin-slot-assistant/internal/prompt"
	"cowin-slot-assistant/internal/slots"
)

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) GetCaptcha(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockScheduler) Schedule(ctx context.Context, req cowin.BookingRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type recordingNotifier struct {
	alerts []notify.Alert
}

func (r *recordingNotifier) Name() string { return "recording" }

func (r *recordingNotifier) Notify(ctx context.Context, alert notify.Alert) error {
	r.alerts = append(r.alerts, alert)
	return nil
}

const captchaSVG = `<svg xmlns="http://www.w3.org/2000/svg"><path d="M1 1"/></svg>`

var testOption = slots.Option{
	Location: location.Location{Kind: location.KindPincode, Pincode: "560024", AlertFrequency: 440},
	Center:   cowin.Center{CenterID: 1234, Name: "PHC Hebbal"},
	Session: cowin.Session{
		SessionID: "sess-1",
		Date:      "10-05-2021",
		Vaccine:   "COVAXIN",
		Slots:     []string{"09:00AM-11:00AM", "11:00AM-01:00PM"},
	},
}

func secondDoseBeneficiaries() []beneficiary.Enriched {
	return beneficiary.Enrich([]cowin.Beneficiary{
		{ReferenceID: "111", Name: "Asha", BirthYear: 1960, Vaccine: "COVAXIN", VaccinationStatus: cowin.StatusPartiallyVaccinated, Dose1Date: "01-04-2021"},
		{ReferenceID: "222", Name: "Ravi", BirthYear: 1965, Vaccine: "COVAXIN", VaccinationStatus: cowin.StatusPartiallyVaccinated, Dose1Date: "02-04-2021"},
	}, time.Date(2021, 5, 10, 0, 0, 0, 0, time.UTC))
}

func TestRequest(t *testing.T) {
	req, err := Request(testOption, secondDoseBeneficiaries(), "AbCd1")

	require.NoError(t, err)
	assert.Equal(t, cowin.BookingRequest{
		Dose:          2,
		SessionID:     "sess-1",
		Slot:          "09:00AM-11:00AM",
		Beneficiaries: []string{"111", "222"},
		Captcha:       "AbCd1",
		CenterID:      1234,
	}, req)

	_, err = Request(testOption, nil, "AbCd1")
	assert.True(t, errors.HasCode(err, errors.ErrCodeEmptyInput))
}

func TestBooker_Book(t *testing.T) {
	captchaFile := filepath.Join(t.TempDir(), "captcha.svg")

	client := new(MockScheduler)
	client.On("GetCaptcha", mock.Anything).Return(captchaSVG, nil)
	client.On("Schedule", mock.Anything, mock.MatchedBy(func(req cowin.BookingRequest) bool {
		return req.Captcha == "AbCd1" && req.Dose == 2 && req.SessionID == "sess-1"
	})).Return("APPT-42", nil)

	notifier := &recordingNotifier{}
	scripted := prompt.NewScripted("AbCd1")
	var out bytes.Buffer
	before := testutil.ToFloat64(metrics.BookingAttempts.WithLabelValues("booked"))

	booker := New(Options{
		Client:      client,
		Prompter:    scripted,
		Notifier:    notifier,
		Out:         &out,
		CaptchaFile: captchaFile,
		Logger:      logger.NewTestLogger(t),
	})
	id, err := booker.Book(context.Background(), testOption, secondDoseBeneficiaries())

	require.NoError(t, err)
	assert.Equal(t, "APPT-42", id)
	client.AssertExpectations(t)

	saved, err := os.ReadFile(captchaFile)
	require.NoError(t, err)
	assert.Equal(t, captchaSVG, string(saved))

	require.Len(t, notifier.alerts, 1)
	assert.True(t, notifier.alerts[0].Warning)
	assert.Equal(t, notify.WarningFrequency, notifier.alerts[0].Frequency)
	assert.Equal(t, []string{"Enter Captcha: "}, scripted.Questions)
	assert.Contains(t, out.String(), "APPT-42")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.BookingAttempts.WithLabelValues("booked")))
}

func TestBooker_Book_Failures(t *testing.T) {
	t.Run("rejected", func(t *testing.T) {
		client := new(MockScheduler)
		client.On("GetCaptcha", mock.Anything).Return(captchaSVG, nil)
		client.On("Schedule", mock.Anything, mock.Anything).Return("", errors.NewBookingFailedError(409, "completely booked"))

		booker := New(Options{
			Client:      client,
			Prompter:    prompt.NewScripted("AbCd1"),
			CaptchaFile: filepath.Join(t.TempDir(), "captcha.svg"),
		})
		_, err := booker.Book(context.Background(), testOption, secondDoseBeneficiaries())

		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeBookingFailed))
		assert.Equal(t, 409, errors.StatusCode(err))
		assert.Equal(t, "completely booked", errors.Body(err))
	})

	t.Run("empty captcha", func(t *testing.T) {
		client := new(MockScheduler)
		client.On("GetCaptcha", mock.Anything).Return(captchaSVG, nil)

		booker := New(Options{
			Client:      client,
			Prompter:    prompt.NewScripted(""),
			CaptchaFile: filepath.Join(t.TempDir(), "captcha.svg"),
		})
		_, err := booker.Book(context.Background(), testOption, secondDoseBeneficiaries())

		assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
		client.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything)
	})

	t.Run("captcha fetch fails", func(t *testing.T) {
		client := new(MockScheduler)
		client.On("GetCaptcha", mock.Anything).Return("", errors.NewFetchFailedError("captcha", 403, "Forbidden"))

		scripted := prompt.NewScripted("AbCd1")
		booker := New(Options{Client: client, Prompter: scripted, CaptchaFile: filepath.Join(t.TempDir(), "captcha.svg")})
		_, err := booker.Book(context.Background(), testOption, secondDoseBeneficiaries())

		assert.True(t, errors.HasCode(err, errors.ErrCodeFetchFailed))
		assert.Empty(t, scripted.Questions)
	})
}
