package common

// EmailSender sends customer-facing mail such as order confirmations.
// The worker is the only producer today; wiring a real provider means
// implementing this interface and swapping it in at startup.
type EmailSender interface {
	Send(to, subject, html string) error
}

// Email is a single captured message.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// InMemoryEmail records messages instead of sending them, for tests.
type InMemoryEmail struct {
	Outbox []Email
}

func (m *InMemoryEmail) Send(to, subject, html string) error {
	if m == nil {
		return nil
	}
	m.Outbox = append(m.Outbox, Email{To: to, Subject: subject, HTML: html})
	return nil
}

// NopEmailSender discards all mail. Used until an SMTP or API provider
// is configured.
type NopEmailSender struct{}

func (NopEmailSender) Send(string, string, string) error { return nil }
