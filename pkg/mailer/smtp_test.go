package mailer

import (
	"context"
	"net"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"seat-reservation/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startSMTPServer accepts one connection and hands it to serve.
func startSMTPServer(t *testing.T, serve func(conn net.Conn)) utils.EmailConfig {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		serve(conn)
	}()

	return utils.EmailConfig{
		Host: "127.0.0.1",
		Port: ln.Addr().(*net.TCPAddr).Port,
		From: "tickets@example.com",
	}
}

func TestSMTPNotifier_Delivers(t *testing.T) {
	received := make(chan string, 1)
	config := startSMTPServer(t, func(conn net.Conn) {
		tp := textproto.NewConn(conn)
		_ = tp.PrintfLine("220 localhost ESMTP")
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			switch cmd := strings.ToUpper(line); {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				_ = tp.PrintfLine("250 localhost")
			case strings.HasPrefix(cmd, "MAIL"), strings.HasPrefix(cmd, "RCPT"):
				_ = tp.PrintfLine("250 OK")
			case cmd == "DATA":
				_ = tp.PrintfLine("354 go ahead")
				data, err := tp.ReadDotBytes()
				if err != nil {
					return
				}
				received <- string(data)
				_ = tp.PrintfLine("250 queued")
			case cmd == "QUIT":
				_ = tp.PrintfLine("221 bye")
				return
			default:
				_ = tp.PrintfLine("502 unsupported")
			}
		}
	})

	err := NewSMTPNotifier(config).Notify(context.Background(), sampleMessage())
	require.NoError(t, err)

	select {
	case data := <-received:
		assert.Contains(t, data, "To: fan@example.com")
		assert.Contains(t, data, "multipart/mixed")
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the message")
	}
}

func TestSMTPNotifier_StalledServerHonoursCancel(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	// accepts, then never greets
	config := startSMTPServer(t, func(conn net.Conn) { <-release })
	config.Timeout = 5 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	start := time.Now()
	err := NewSMTPNotifier(config).Notify(ctx, sampleMessage())

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSMTPNotifier_StalledServerHitsTimeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	config := startSMTPServer(t, func(conn net.Conn) { <-release })
	config.Timeout = 200 * time.Millisecond

	start := time.Now()
	err := NewSMTPNotifier(config).Notify(context.Background(), sampleMessage())

	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second, "the session is bounded without a caller deadline")
}
