package notification

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Status of a single send attempt.
type Status string

const (
	StatusSent      Status = "sent"
	StatusSimulated Status = "simulated"
	StatusFailed    Status = "failed"
)

// Outcome is the per-recipient result of a send. Provider failures land here
// as StatusFailed; they never escape the channel as errors.
type Outcome struct {
	Status     Status
	ProviderID string
	Error      string
}

// ChannelConfig carries the messaging-provider credential set. It is read
// once at startup and injected; nothing below this layer touches the
// environment.
type ChannelConfig struct {
	AccountSID  string
	AuthToken   string
	From        string // sender address, e.g. "whatsapp:+14155238886"
	CountryCode string // default prefix for bare 10-digit numbers
}

// Configured reports whether every credential needed for real sends is set.
// A partial credential set degrades the channel to simulated mode.
func (c ChannelConfig) Configured() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.From != ""
}

// ProviderClient is the injectable seam over the real messaging SDK.
type ProviderClient interface {
	Send(ctx context.Context, to, body string) (providerID string, err error)
}

// Channel sends one message to one recipient. With no configured provider it
// runs in simulated mode: the content is logged and a pseudo-id returned,
// but no network call is ever attempted.
type Channel struct {
	cfg ChannelConfig
	cli ProviderClient
	log *zap.Logger
}

// NewChannel builds a channel, wiring the Twilio client only when the
// credential set is complete.
func NewChannel(cfg ChannelConfig, log *zap.Logger) *Channel {
	var cli ProviderClient
	if cfg.Configured() {
		cli = newTwilioClient(cfg)
	} else {
		log.Warn("messaging provider not configured, notifications will be simulated")
	}
	return NewChannelWithClient(cfg, cli, log)
}

// NewChannelWithClient builds a channel around an explicit provider client.
func NewChannelWithClient(cfg ChannelConfig, cli ProviderClient, log *zap.Logger) *Channel {
	if cfg.CountryCode == "" {
		cfg.CountryCode = "91"
	}
	return &Channel{cfg: cfg, cli: cli, log: log}
}

// Send delivers body to the recipient phone number and reports the outcome.
func (ch *Channel) Send(ctx context.Context, phone, body string) Outcome {
	if ch.cli == nil {
		id := "SIM-" + uuid.NewString()
		ch.log.Info("simulated notification",
			zap.String("to", phone),
			zap.String("providerId", id),
			zap.String("body", body))
		return Outcome{Status: StatusSimulated, ProviderID: id}
	}

	to := NormalizeRecipient(phone, ch.cfg.CountryCode)
	providerID, err := ch.cli.Send(ctx, to, body)
	if err != nil {
		ch.log.Warn("notification send failed", zap.String("to", to), zap.Error(err))
		return Outcome{Status: StatusFailed, Error: err.Error()}
	}
	return Outcome{Status: StatusSent, ProviderID: providerID}
}

// NormalizeRecipient strips everything but digits and prefixes bare 10-digit
// numbers with the default country code.
func NormalizeRecipient(phone, countryCode string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 10 {
		digits = countryCode + digits
	}
	return "+" + digits
}
