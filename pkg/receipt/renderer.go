package receipt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

type Guest struct {
	SeatID string
	Name   string
}

// Receipt is the renderer's view of a committed order.
type Receipt struct {
	OrderID    string
	Email      string
	Seats      []string
	Guests     []Guest
	ShowTime   string
	ReservedAt time.Time
}

// Artifact is a rendered receipt ready to be attached to a message.
type Artifact struct {
	Filename    string
	ContentType string
	Body        []byte
	// Payload is the JSON a door scanner checks against the order lookup.
	Payload []byte
}

type Renderer interface {
	Render(ctx context.Context, r Receipt) (*Artifact, error)
}

// VerificationPayload is encoded into the receipt for door scanning.
type VerificationPayload struct {
	OrderID string   `json:"orderId"`
	Email   string   `json:"email"`
	Seats   []string `json:"seats"`
}

const textTemplate = `Ticket Receipt
Order ID: {{.OrderID}}
Email: {{.Email}}
Show Time: {{.ShowTime}}
Reserved At: {{.ReservedAt}}
Seats: {{join .Seats ", "}}
Guests:
{{- range $i, $g := .Guests}}
{{inc $i}}. {{$g.Name}} — Seat {{$g.SeatID}}
{{- else}}
(No guest names provided)
{{- end}}
All tickets are free.
Verification: {{.Payload}}
`

type TextRenderer struct {
	tmpl *template.Template
	dir  string
}

// NewTextRenderer renders plain text receipts. When dir is not empty every
// receipt is also written there as ticket_receipt_<order id>.txt.
func NewTextRenderer(dir string) (*TextRenderer, error) {
	tmpl, err := template.New("receipt").Funcs(template.FuncMap{
		"join": strings.Join,
		"inc":  func(i int) int { return i + 1 },
	}).Parse(textTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse receipt template: %w", err)
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create receipt dir: %w", err)
		}
	}
	return &TextRenderer{tmpl: tmpl, dir: dir}, nil
}

func (t *TextRenderer) Render(ctx context.Context, r Receipt) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(VerificationPayload{OrderID: r.OrderID, Email: r.Email, Seats: r.Seats})
	if err != nil {
		return nil, fmt.Errorf("encode verification payload: %w", err)
	}

	var buf bytes.Buffer
	err = t.tmpl.Execute(&buf, struct {
		Receipt
		ReservedAt string
		Payload    string
	}{
		Receipt:    r,
		ReservedAt: r.ReservedAt.UTC().Format("January 2, 2006, 3:04 PM MST"),
		Payload:    string(payload),
	})
	if err != nil {
		return nil, fmt.Errorf("render receipt %s: %w", r.OrderID, err)
	}

	artifact := &Artifact{
		Filename:    "ticket_receipt_" + r.OrderID + ".txt",
		ContentType: "text/plain; charset=utf-8",
		Body:        buf.Bytes(),
		Payload:     payload,
	}

	if t.dir != "" {
		path := filepath.Join(t.dir, artifact.Filename)
		if err := os.WriteFile(path, artifact.Body, 0o644); err != nil {
			return nil, fmt.Errorf("write receipt %s: %w", path, err)
		}
	}
	return artifact, nil
}
