package notify

import (
	"context"
	"os"
	"strconv"
	"sync"

	firebase "firebase.google.com/go/v4/messaging"
	"github.com/appleboy/go-fcm"
	twilio "github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
	"gopkg.in/gomail.v2"
)

// Side-channel clients are lazy: a channel whose env config is absent is
// simply disabled and sends through it return nil.

var (
	mailOnce   sync.Once
	mailDialer *gomail.Dialer
	mailFrom   string

	smsOnce   sync.Once
	smsClient *twilio.RestClient
	smsFrom   string

	pushOnce   sync.Once
	pushClient *fcm.Client
)

// SendEmail exposes the mail channel for flows that bypass the notification
// store, like OTP delivery.
func SendEmail(to, subject, body string) error { return sendEmail(to, subject, body) }

// SendSMS exposes the SMS channel the same way.
func SendSMS(to, body string) error { return sendSMS(to, body) }

func sendEmail(to, subject, body string) error {
	mailOnce.Do(func() {
		host := os.Getenv("SMTP_HOST")
		if host == "" {
			return
		}
		port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
		if port == 0 {
			port = 587
		}
		mailFrom = os.Getenv("SMTP_FROM")
		mailDialer = gomail.NewDialer(host, port, os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASS"))
	})
	if mailDialer == nil {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", mailFrom)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return mailDialer.DialAndSend(m)
}

func sendSMS(to, body string) error {
	smsOnce.Do(func() {
		sid := os.Getenv("TWILIO_ACCOUNT_SID")
		if sid == "" {
			return
		}
		smsFrom = os.Getenv("TWILIO_FROM")
		smsClient = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: sid,
			Password: os.Getenv("TWILIO_AUTH_TOKEN"),
		})
	})
	if smsClient == nil {
		return nil
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(smsFrom)
	params.SetBody(body)
	_, err := smsClient.Api.CreateMessage(params)
	return err
}

func sendPush(ctx context.Context, token, title, body string) error {
	pushOnce.Do(func() {
		credsFile := os.Getenv("FCM_CREDENTIALS_FILE")
		if credsFile == "" {
			return
		}
		client, err := fcm.NewClient(ctx, fcm.WithCredentialsFile(credsFile))
		if err == nil {
			pushClient = client
		}
	})
	if pushClient == nil {
		return nil
	}

	_, err := pushClient.Send(ctx, &firebase.Message{
		Token: token,
		Notification: &firebase.Notification{
			Title: title,
			Body:  body,
		},
	})
	return err
}
