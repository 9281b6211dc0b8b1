package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// twilioClient delivers over the Twilio WhatsApp messaging API.
type twilioClient struct {
	rest *twilio.RestClient
	from string
}

func newTwilioClient(cfg ChannelConfig) *twilioClient {
	rest := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	from := cfg.From
	if !strings.HasPrefix(from, "whatsapp:") {
		from = "whatsapp:" + from
	}
	return &twilioClient{rest: rest, from: from}
}

func (t *twilioClient) Send(_ context.Context, to, body string) (string, error) {
	params := &openapi.CreateMessageParams{}
	params.SetTo("whatsapp:" + to)
	params.SetFrom(t.from)
	params.SetBody(body)

	msg, err := t.rest.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if msg.Sid == nil {
		return "", fmt.Errorf("provider returned no message sid")
	}
	return *msg.Sid, nil
}
