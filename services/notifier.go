package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/cosminvladulescu/bcon-site/config"
	"github.com/cosminvladulescu/bcon-site/models"
)

// Notifier tells the site owner about a new contact message.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, msg *models.ContactMessage) error
}

// Notifiers fans a contact message out to every configured channel.
type Notifiers []Notifier

// Notify delivers msg on every channel concurrently. One failing channel never
// stops the others; the returned error joins every failure.
func (n Notifiers) Notify(ctx context.Context, msg *models.ContactMessage) error {
	return NotifyEverywhere(ctx, msg, n...)
}

// NotifyEverywhere sends msg through each notifier and reports the combined result.
func NotifyEverywhere(ctx context.Context, msg *models.ContactMessage, notifiers ...Notifier) error {
	if len(notifiers) == 0 {
		log.Debug().Msg("No notification channels configured")
		return nil
	}

	var (
		g         errgroup.Group
		mu        sync.Mutex
		failures  []error
		successes []string
	)

	for _, notifier := range notifiers {
		g.Go(func() error {
			err := notifier.Notify(ctx, msg)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Error().Err(err).Str("channel", notifier.Name()).Str("contactId", msg.ID.String()).Msg("Failed to send contact notification")
				failures = append(failures, fmt.Errorf("%s: %w", notifier.Name(), err))
				return nil
			}
			successes = append(successes, notifier.Name())
			return nil
		})
	}
	_ = g.Wait()

	if len(successes) > 0 {
		log.Info().Strs("channels", successes).Str("contactId", msg.ID.String()).Msg("Contact notification sent")
	}
	return errors.Join(failures...)
}

// NotifiersFromConfig enables the email channel when RESEND_API_KEY is set and
// the SMS channel when the Twilio credentials and a recipient phone are set.
func NotifiersFromConfig(c map[string]string) Notifiers {
	var notifiers Notifiers

	if apiKey := config.GetString(c, "RESEND_API_KEY", ""); apiKey != "" {
		notifiers = append(notifiers, NewEmailNotifier(EmailConfig{
			APIKey:     apiKey,
			From:       config.GetString(c, "RESEND_FROM_EMAIL", "onboarding@resend.dev"),
			Recipients: config.GetStrings(c, "CONTACT_RECIPIENT_EMAIL"),
		}))
	}

	sid := config.GetString(c, "TWILIO_ACCOUNT_SID", "")
	token := config.GetString(c, "TWILIO_AUTH_TOKEN", "")
	from := config.GetString(c, "TWILIO_FROM_NUMBER", "")
	to := config.GetString(c, "CONTACT_RECIPIENT_PHONE", "")
	if sid != "" && token != "" && from != "" && to != "" {
		notifiers = append(notifiers, NewSMSNotifier(sid, token, from, to))
	}

	names := make([]string, 0, len(notifiers))
	for _, n := range notifiers {
		names = append(names, n.Name())
	}
	log.Info().Strs("channels", names).Msg("Contact notifications configured")

	return notifiers
}
