package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

type postmarkClient struct {
	client *postmark.Client
	config Config
}

// NewPostmarkClient creates a Postmark-backed sender. All tokens are
// required here: production must fail at startup rather than drop mail
// silently.
func NewPostmarkClient(cfg Config) (Sender, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("%w: PostmarkServerToken is required", ErrInvalidConfig)
	}
	if cfg.PostmarkAccountToken == "" {
		return nil, fmt.Errorf("%w: PostmarkAccountToken is required", ErrInvalidConfig)
	}
	if cfg.SenderEmail == "" || !emailRegex.MatchString(cfg.SenderEmail) {
		return nil, fmt.Errorf("%w: SenderEmail must be a valid email address", ErrInvalidConfig)
	}

	return &postmarkClient{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		config: cfg,
	}, nil
}

func (c *postmarkClient) Send(ctx context.Context, params SendParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	resp, err := c.client.SendEmail(ctx, postmark.Email{
		From:     c.config.SenderEmail,
		To:       params.To,
		Subject:  params.Subject,
		Tag:      params.Tag,
		HTMLBody: params.BodyHTML,
	})
	if err != nil {
		return errors.Join(ErrFailedToSend, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrFailedToSend,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message))
	}
	return nil
}
