package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"seat-reservation/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMessage() Message {
	return Message{
		To:      "fan@example.com",
		Subject: "Your Seat Reservation (Receipt Attached)",
		Body:    "Thanks! Your seats are: A1",
		Attachments: []Attachment{{
			Filename:    "ticket_receipt_R0MGXK3F2Q7K9ZDAB.txt",
			ContentType: "text/plain; charset=utf-8",
			Body:        []byte("Ticket Receipt\n"),
		}},
	}
}

func TestBuildMIME(t *testing.T) {
	raw, err := buildMIME("tickets@example.com", sampleMessage(), time.Date(2025, 11, 1, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	m, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "tickets@example.com", m.Header.Get("From"))
	assert.Equal(t, "fan@example.com", m.Header.Get("To"))

	subject, err := new(mime.WordDecoder).DecodeHeader(m.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Your Seat Reservation (Receipt Attached)", subject)

	mediaType, params, err := mime.ParseMediaType(m.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	r := multipart.NewReader(m.Body, params["boundary"])

	text, err := r.NextPart()
	require.NoError(t, err)
	body, err := io.ReadAll(text)
	require.NoError(t, err)
	assert.Equal(t, "Thanks! Your seats are: A1", string(body))

	att, err := r.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "ticket_receipt_R0MGXK3F2Q7K9ZDAB.txt", att.FileName())
	encoded, err := io.ReadAll(att)
	require.NoError(t, err)
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(encoded)))
	require.NoError(t, err)
	assert.Equal(t, "Ticket Receipt\n", string(decoded))

	_, err = r.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestOutboxNotifier(t *testing.T) {
	dir := t.TempDir()
	n, err := NewOutboxNotifier(dir)
	require.NoError(t, err)
	n.now = func() time.Time { return time.Unix(0, 42) }

	require.NoError(t, n.Notify(context.Background(), sampleMessage()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "42_"))
	assert.True(t, strings.HasSuffix(entries[0].Name(), "_fan@example.com.txt"))

	content, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(content), "To: fan@example.com\n")
	assert.Contains(t, string(content), "--- ATTACHMENT: ticket_receipt_R0MGXK3F2Q7K9ZDAB.txt")
}

func TestNotify_NoRecipient(t *testing.T) {
	n, err := NewOutboxNotifier(t.TempDir())
	require.NoError(t, err)

	msg := sampleMessage()
	msg.To = ""
	assert.ErrorIs(t, n.Notify(context.Background(), msg), ErrNoRecipient)
	assert.ErrorIs(t, NewSMTPNotifier(utils.EmailConfig{Host: "localhost", Port: 25, From: "tickets@example.com"}).Notify(context.Background(), msg), ErrNoRecipient)
}
