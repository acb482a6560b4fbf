package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/cosminvladulescu/bcon-site/models"
)

const (
	// smsBodyLimit keeps a notification within a couple of SMS segments.
	smsBodyLimit = 300
	smsTimeout   = 10 * time.Second
)

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SMSNotifier texts a short summary of each contact message through Twilio.
type SMSNotifier struct {
	api  messageCreator
	from string
	to   string
}

func NewSMSNotifier(accountSID, authToken, from, to string) *SMSNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	client.SetTimeout(smsTimeout)
	return &SMSNotifier{api: client.Api, from: from, to: to}
}

func (n *SMSNotifier) Name() string { return "sms" }

// Notify sends the summary and returns once Twilio answers or ctx is done.
// twilio-go takes no context, so a request abandoned at the deadline keeps
// running until the client timeout.
func (n *SMSNotifier) Notify(ctx context.Context, msg *models.ContactMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(n.from)
	params.SetTo(n.to)
	params.SetBody(smsBody(msg))

	type result struct {
		resp *twilioApi.ApiV2010Message
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := n.api.CreateMessage(params)
		done <- result{resp, err}
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("twilio create message: %w", ctx.Err())
	case res := <-done:
		if res.err != nil {
			return fmt.Errorf("twilio create message: %w", res.err)
		}
		if res.resp != nil && res.resp.Sid != nil {
			log.Debug().Str("sid", *res.resp.Sid).Msg("Sent SMS via Twilio")
		}
		return nil
	}
}

func smsBody(msg *models.ContactMessage) string {
	body := fmt.Sprintf("B-CON: mesaj nou de la %s <%s>", msg.Name, msg.Email)
	if msg.Phone != "" {
		body += ", tel " + msg.Phone
	}
	body += ": " + msg.Message

	if r := []rune(body); len(r) > smsBodyLimit {
		body = string(r[:smsBodyLimit-3]) + "..."
	}
	return body
}
