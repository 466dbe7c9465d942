package main

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/rs/zerolog/log"
)

// Notifier is told about new guestbook entries and RSVPs. Implementations
// must not block the request.
type Notifier interface {
	NewEntry(entry GuestbookEntry)
	NewAttendance(record AttendanceRecord)
}

type noopNotifier struct{}

func (noopNotifier) NewEntry(GuestbookEntry)        {}
func (noopNotifier) NewAttendance(AttendanceRecord) {}

// sendMailFunc matches smtp.SendMail so tests can swap the transport.
type sendMailFunc func(addr string, a sasl.Client, from string, to []string, r io.Reader) error

// MailNotifier emails the couple about new activity.
type MailNotifier struct {
	cfg        SMTPConfig
	recipients []string
	loc        *time.Location
	send       sendMailFunc
}

func NewMailNotifier(cfg SMTPConfig, loc *time.Location) *MailNotifier {
	return &MailNotifier{
		cfg:        cfg,
		recipients: splitAddresses(cfg.Notify),
		loc:        loc,
		send:       smtp.SendMail,
	}
}

func (n *MailNotifier) NewEntry(entry GuestbookEntry) {
	subject := fmt.Sprintf("New guestbook message from %s", entry.Name)
	body := fmt.Sprintf("%s left a message on %s:\n\n%s\n",
		entry.Name, formatDisplayDate(entry.CreatedAt, n.loc), entry.Message)
	go n.SendMail(subject, body)
}

func (n *MailNotifier) NewAttendance(record AttendanceRecord) {
	subject := fmt.Sprintf("New RSVP from %s", record.Name)
	body := fmt.Sprintf("Name: %s\nSide: %s\nGuests: %d\nMeal: %s\nRegistered: %s\n",
		record.Name, record.Side, record.Count, record.Meal, formatDisplayDate(record.RegisteredAt, n.loc))
	go n.SendMail(subject, body)
}

// SendMail delivers one message per recipient. It returns the last error and
// keeps going after a failed recipient.
func (n *MailNotifier) SendMail(subject, body string) error {
	auth := sasl.NewLoginClient(n.cfg.Username, n.cfg.Password)

	var err error
	for _, recipient := range n.recipients {
		message := "From: " + n.cfg.FromEmail + "\r\n" +
			"To: " + recipient + "\r\n" +
			"Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=UTF-8\r\n\r\n" +
			body

		to := []string{recipient}
		reader := bytes.NewReader([]byte(message))
		if sendErr := n.send(n.cfg.Host+":"+n.cfg.Port, auth, n.cfg.FromEmail, to, reader); sendErr != nil {
			log.Warn().Err(sendErr).Str("recipient", recipient).Msg("failed to send email")
			err = sendErr
		}
	}

	return err
}
