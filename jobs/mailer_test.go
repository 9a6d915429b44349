package jobs

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func newTestMailer(t *testing.T) (*SMTPMailer, *[]*mail.Msg) {
	t.Helper()
	m, err := NewSMTPMailer(SMTPConfig{Host: "127.0.0.1", Port: 1025, From: "no-reply@interport.local"})
	require.NoError(t, err)
	var sent []*mail.Msg
	m.send = func(ctx context.Context, msg *mail.Msg) error {
		sent = append(sent, msg)
		return nil
	}
	return m, &sent
}

func TestSMTPMailerBuildsMessage(t *testing.T) {
	m, sent := newTestMailer(t)

	require.NoError(t, m.Send(context.Background(), "customer@example.com", "Quotation QT202610180001", "line one\nline two"))
	require.Len(t, *sent, 1)

	var buf bytes.Buffer
	_, err := (*sent)[0].WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "From: <no-reply@interport.local>")
	assert.Contains(t, raw, "To: <customer@example.com>")
	assert.Contains(t, raw, "Subject: Quotation QT202610180001")
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "line one")
	assert.Contains(t, raw, "line two")
}

func TestSMTPMailerRejectsHeaderInjection(t *testing.T) {
	m, sent := newTestMailer(t)

	assert.Error(t, m.Send(context.Background(), "a@b.c\r\nBcc: x@y.z", "s", "b"))
	assert.Error(t, m.Send(context.Background(), "a@b.c", "s\r\nBcc: x@y.z", "b"))
	assert.Error(t, m.Send(context.Background(), "not an address", "s", "b"))
	assert.Empty(t, *sent)
}

func TestSMTPMailerWrapsTransportError(t *testing.T) {
	m, _ := newTestMailer(t)
	m.send = func(context.Context, *mail.Msg) error { return errors.New("connection refused") }

	err := m.Send(context.Background(), "customer@example.com", "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "customer@example.com")
}

func TestSMTPMailerHonoursCancelledContext(t *testing.T) {
	m, sent := newTestMailer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.Send(ctx, "customer@example.com", "s", "b"), context.Canceled)
	assert.Empty(t, *sent)
}

func TestNewSMTPMailerTLSPolicy(t *testing.T) {
	for _, policy := range []string{"", "none", "Opportunistic", "mandatory"} {
		_, err := NewSMTPMailer(SMTPConfig{Host: "mail.example.com", Port: 587, From: "a@b.c", TLSPolicy: policy, Username: "u", Password: "p"})
		assert.NoError(t, err, policy)
	}
	_, err := NewSMTPMailer(SMTPConfig{Host: "mail.example.com", Port: 587, From: "a@b.c", TLSPolicy: "starttls-ish"})
	assert.Error(t, err)
}
