// Package voice places outbound phone calls through Twilio.
package voice

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"restaurant-ordering/internal/config"
)

type Twilio struct {
	client *twilio.RestClient
	from   string
	to     string
}

func NewTwilio(cfg config.TwilioConfig) *Twilio {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &Twilio{client: client, from: cfg.FromNumber, to: cfg.AdminNumber}
}

// Call rings the admin number and speaks twiml. It returns the call SID.
func (t *Twilio) Call(ctx context.Context, twiml string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	params := &twilioApi.CreateCallParams{}
	params.SetTo(t.to)
	params.SetFrom(t.from)
	params.SetTwiml(twiml)

	resp, err := t.client.Api.CreateCall(params)
	if err != nil {
		return "", fmt.Errorf("twilio create call: %w", err)
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}
