package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"seat-reservation/pkg/utils"
)

const defaultSMTPTimeout = 15 * time.Second

type SMTPNotifier struct {
	addr    string
	host    string
	auth    smtp.Auth
	from    string
	timeout time.Duration
}

func NewSMTPNotifier(config utils.EmailConfig) *SMTPNotifier {
	var auth smtp.Auth
	if config.User != "" {
		auth = smtp.PlainAuth("", config.User, config.Password, config.Host)
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}
	return &SMTPNotifier{
		addr:    net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		host:    config.Host,
		auth:    auth,
		from:    config.From,
		timeout: timeout,
	}
}

func (n *SMTPNotifier) Notify(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	raw, err := buildMIME(n.from, msg, time.Now())
	if err != nil {
		return err
	}

	if err := n.send(ctx, msg.To, raw); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

// send runs one SMTP session on a connection bounded by the notifier timeout
// and ctx. Cancelling ctx expires the connection deadline, which unblocks any
// pending read or write.
func (n *SMTPNotifier) send(ctx context.Context, to string, raw []byte) error {
	dialer := net.Dialer{Timeout: n.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", n.addr)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(n.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("set deadline: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	c, err := smtp.NewClient(conn, n.host)
	if err != nil {
		return withCtxErr(ctx, fmt.Errorf("greeting: %w", err))
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: n.host}); err != nil {
			return withCtxErr(ctx, fmt.Errorf("starttls: %w", err))
		}
	}
	if n.auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(n.auth); err != nil {
				return withCtxErr(ctx, fmt.Errorf("auth: %w", err))
			}
		}
	}

	if err := c.Mail(n.from); err != nil {
		return withCtxErr(ctx, fmt.Errorf("mail from: %w", err))
	}
	if err := c.Rcpt(to); err != nil {
		return withCtxErr(ctx, fmt.Errorf("rcpt to: %w", err))
	}
	w, err := c.Data()
	if err != nil {
		return withCtxErr(ctx, fmt.Errorf("data: %w", err))
	}
	if _, err := w.Write(raw); err != nil {
		return withCtxErr(ctx, fmt.Errorf("write body: %w", err))
	}
	if err := w.Close(); err != nil {
		return withCtxErr(ctx, fmt.Errorf("end data: %w", err))
	}
	return c.Quit()
}

// withCtxErr reports cancellation instead of the i/o timeout it caused.
func withCtxErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ctxErr, err)
	}
	return err
}

func buildMIME(from string, msg Message, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", now.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", w.Boundary())

	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/plain; charset=utf-8"},
		"Content-Transfer-Encoding": {"8bit"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(msg.Body)); err != nil {
		return nil, err
	}

	for _, a := range msg.Attachments {
		part, err := w.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {a.ContentType},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename})},
		})
		if err != nil {
			return nil, err
		}
		enc := base64.NewEncoder(base64.StdEncoding, part)
		if _, err := enc.Write(a.Body); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
