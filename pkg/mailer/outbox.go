package mailer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var unsafeName = regexp.MustCompile(`[^\w@.-]+`)

// OutboxNotifier writes each message to a file instead of sending it. It is
// used when no mail server is configured.
type OutboxNotifier struct {
	dir string
	now func() time.Time
}

func NewOutboxNotifier(dir string) (*OutboxNotifier, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create outbox dir: %w", err)
	}
	return &OutboxNotifier{dir: dir, now: time.Now}, nil
}

func (n *OutboxNotifier) Notify(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := unsafeName.ReplaceAllString(msg.Subject, "_")
	if len(subject) > 80 {
		subject = subject[:80]
	}
	name := strconv.FormatInt(n.now().UnixNano(), 10) + "_" + subject + "_" + unsafeName.ReplaceAllString(msg.To, "_") + ".txt"

	var b strings.Builder
	fmt.Fprintf(&b, "To: %s\nSubject: %s\n\n%s\n", msg.To, msg.Subject, msg.Body)
	for _, a := range msg.Attachments {
		fmt.Fprintf(&b, "\n--- ATTACHMENT: %s (%s) ---\n%s\n", a.Filename, a.ContentType, a.Body)
	}

	path := filepath.Join(n.dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write outbox message: %w", err)
	}
	return nil
}
