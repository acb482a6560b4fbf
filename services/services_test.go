package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/cosminvladulescu/bcon-site/models"
)

func contactMessage() *models.ContactMessage {
	return &models.ContactMessage{
		ID:        uuid.New(),
		Name:      "Ion <Popescu>",
		Email:     "ion@example.ro",
		Message:   "hello",
		CreatedAt: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestEmailNotifier(t *testing.T) {
	var got ResendEmailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id":"email_1"}`))
	}))
	defer srv.Close()

	n := NewEmailNotifier(EmailConfig{APIKey: "re_test", From: "site@bcon.ro", Recipients: []string{"owner@bcon.ro"}, BaseURL: srv.URL})
	require.NoError(t, n.Notify(context.Background(), contactMessage()))

	assert.Equal(t, "site@bcon.ro", got.From)
	assert.Equal(t, []string{"owner@bcon.ro"}, got.To)
	assert.Equal(t, "Mesaj nou de la Ion <Popescu> - B-CON Website", got.Subject)
	assert.Contains(t, got.Html, "Ion &lt;Popescu&gt;")
	assert.Contains(t, got.Html, "Nespecificat")
	assert.Contains(t, got.Html, "01.05.2024 09:30")
}

func TestEmailNotifierAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid from address"}`))
	}))
	defer srv.Close()

	n := NewEmailNotifier(EmailConfig{APIKey: "k", From: "bad", BaseURL: srv.URL})
	err := n.Notify(context.Background(), contactMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 422")
	assert.Contains(t, err.Error(), "invalid from address")
}

type fakeTwilio struct {
	params *twilioApi.CreateMessageParams
	err    error
}

func (f *fakeTwilio) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

type blockingTwilio struct {
	release chan struct{}
}

func (b *blockingTwilio) CreateMessage(*twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	<-b.release
	return nil, nil
}

func TestSMSNotifierHonorsDeadline(t *testing.T) {
	api := &blockingTwilio{release: make(chan struct{})}
	defer close(api.release)
	n := &SMSNotifier{api: api, from: "+15550001", to: "+40700000000"}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := n.Notify(ctx, contactMessage())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSMSNotifier(t *testing.T) {
	api := &fakeTwilio{}
	n := &SMSNotifier{api: api, from: "+15550001", to: "+40700000000"}

	require.NoError(t, n.Notify(context.Background(), contactMessage()))
	require.NotNil(t, api.params)
	assert.Equal(t, "+15550001", *api.params.From)
	assert.Equal(t, "+40700000000", *api.params.To)
	assert.Equal(t, "B-CON: mesaj nou de la Ion <Popescu> <ion@example.ro>: hello", *api.params.Body)

	api.err = errors.New("auth failed")
	assert.ErrorContains(t, n.Notify(context.Background(), contactMessage()), "auth failed")
}

func TestSMSBodyIsTruncated(t *testing.T) {
	msg := contactMessage()
	msg.Message = strings.Repeat("ă", 1000)

	body := smsBody(msg)
	assert.Len(t, []rune(body), smsBodyLimit)
	assert.True(t, strings.HasSuffix(body, "..."))
}

type stubNotifier struct {
	name  string
	err   error
	calls atomic.Int32
}

func (s *stubNotifier) Name() string { return s.name }

func (s *stubNotifier) Notify(context.Context, *models.ContactMessage) error {
	s.calls.Add(1)
	return s.err
}

func TestNotifyEverywhere(t *testing.T) {
	ok := &stubNotifier{name: "ok"}
	broken := &stubNotifier{name: "broken", err: errors.New("boom")}
	other := &stubNotifier{name: "other"}

	err := Notifiers{ok, broken, other}.Notify(context.Background(), contactMessage())
	require.Error(t, err)
	assert.EqualError(t, err, "broken: boom")
	assert.EqualValues(t, 1, ok.calls.Load())
	assert.EqualValues(t, 1, other.calls.Load())

	assert.NoError(t, NotifyEverywhere(context.Background(), contactMessage()))
}

func TestNotifiersFromConfig(t *testing.T) {
	assert.Empty(t, NotifiersFromConfig(map[string]string{}))

	n := NotifiersFromConfig(map[string]string{
		"RESEND_API_KEY":          "re_x",
		"CONTACT_RECIPIENT_EMAIL": "a@bcon.ro, b@bcon.ro",
		"TWILIO_ACCOUNT_SID":      "AC1",
		"TWILIO_AUTH_TOKEN":       "t",
		"TWILIO_FROM_NUMBER":      "+1",
	})
	require.Len(t, n, 1, "sms needs a recipient phone")
	email := n[0].(*EmailNotifier)
	assert.Equal(t, []string{"a@bcon.ro", "b@bcon.ro"}, email.cfg.Recipients)
	assert.Equal(t, "onboarding@resend.dev", email.cfg.From)
}
