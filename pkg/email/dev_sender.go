package email

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DevSender implements Sender for local development by writing each
// message to an HTML file instead of calling a provider.
type DevSender struct {
	dir string
}

// NewDevSender creates a development sender that saves emails to disk.
// The directory is created on first send if it does not exist.
func NewDevSender(dir string) Sender {
	return &DevSender{dir: dir}
}

func (d *DevSender) Send(ctx context.Context, params SendParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %v", ErrFailedToSend, err)
	}

	name := fmt.Sprintf("%s_%s.html",
		time.Now().Format("2006_01_02_150405"),
		sanitizeFilename(params.Subject),
	)
	body := fmt.Sprintf("<!-- to: %s -->\n%s", params.To, params.BodyHTML)
	if err := os.WriteFile(filepath.Join(d.dir, name), []byte(body), 0o644); err != nil {
		return fmt.Errorf("%w: failed to write file: %v", ErrFailedToSend, err)
	}

	return nil
}

var sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = sanitizeRegex.ReplaceAllString(s, "")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}
