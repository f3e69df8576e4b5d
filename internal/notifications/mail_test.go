package notifications

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"
	"time"

	"lifewood/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	sent []Envelope
	err  error
}

func (c *captureSender) Send(_ context.Context, env Envelope) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, env)
	return nil
}

var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestParseKind(t *testing.T) {
	tests := map[string]Kind{
		"approval": KindApproval,
		"approved": KindApproval,
		"":         KindApproval,
		"decline":  KindDecline,
		"Declined": KindDecline,
		"rejected": KindDecline,
	}
	for raw, want := range tests {
		got, ok := ParseKind(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
	_, ok := ParseKind("maybe")
	assert.False(t, ok)
}

func TestRender_HTMLWithTextAlternative(t *testing.T) {
	msg, err := Render(KindApproval, " Jane <b>Doe</b> ", false, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, SubjectApproval, msg.Subject)
	assert.Contains(t, msg.HTML, "Application Approved")
	assert.Contains(t, msg.HTML, "Dear Jane &lt;b&gt;Doe&lt;/b&gt;,")
	assert.NotContains(t, msg.HTML, "<b>Doe</b>")
	assert.Contains(t, msg.HTML, "2025")

	assert.Contains(t, msg.Text, "Dear Jane <b>Doe</b>,")
	assert.Contains(t, msg.Text, "approved")
	assert.NotContains(t, msg.Text, "<p>")
}

func TestRender_DeclineSimpleMode(t *testing.T) {
	msg, err := Render(KindDecline, "Jane Doe", true, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, SubjectDecline, msg.Subject)
	assert.Empty(t, msg.HTML)
	assert.True(t, strings.HasPrefix(msg.Text, "Dear Jane Doe,\n\n"))
	assert.Contains(t, msg.Text, "we will not be moving forward at this time")
	assert.True(t, strings.HasSuffix(msg.Text, "Recruitment Team"))
}

func TestHTMLToText(t *testing.T) {
	got := HTMLToText(`<p>Hello&nbsp;there</p><p>A<br/>B &amp; C</p>`)
	assert.Equal(t, "Hello there\n\nA\nB & C", got)
}

func TestMailer_Notify(t *testing.T) {
	sender := &captureSender{}
	m := NewMailer(sender, "hr@lifewood.com", "", false)
	m.now = func() time.Time { return fixedNow }

	require.NoError(t, m.Notify(context.Background(), KindDecline, "jane@example.com", "Jane Doe"))
	require.Len(t, sender.sent, 1)

	env := sender.sent[0]
	assert.Equal(t, "Lifewood Recruitment", env.From.Name)
	assert.Equal(t, "hr@lifewood.com", env.From.Address)
	assert.Equal(t, "hr@lifewood.com", env.ReplyTo)
	assert.Equal(t, "jane@example.com", env.To)
	assert.Equal(t, SubjectDecline, env.Message.Subject)
}

func TestMailer_NotifyErrors(t *testing.T) {
	boom := errors.New("relay refused")
	m := NewMailer(&captureSender{err: boom}, "hr@lifewood.com", "Lifewood Recruitment", true)

	assert.ErrorIs(t, m.Notify(context.Background(), KindApproval, "jane@example.com", "Jane"), boom)
	assert.Error(t, m.Notify(context.Background(), KindApproval, "  ", "Jane"))
}

func TestBuildMessage_Alternative(t *testing.T) {
	msg, err := Render(KindApproval, "Jane", false, fixedNow)
	require.NoError(t, err)
	env := Envelope{
		From:    mail.Address{Name: "Lifewood Recruitment", Address: "hr@lifewood.com"},
		ReplyTo: "hr@lifewood.com",
		To:      "jane@example.com",
		Message: msg,
	}

	parsed := writeAndParse(t, env)

	from, err := mail.ParseAddress(parsed.Header.Get("From"))
	require.NoError(t, err)
	assert.Equal(t, "Lifewood Recruitment", from.Name)
	assert.Equal(t, "hr@lifewood.com", from.Address)
	replyTo, err := mail.ParseAddress(parsed.Header.Get("Reply-To"))
	require.NoError(t, err)
	assert.Equal(t, "hr@lifewood.com", replyTo.Address)
	assert.NotEmpty(t, parsed.Header.Get("Message-Id"))

	date, err := parsed.Header.Date()
	require.NoError(t, err)
	assert.True(t, fixedNow.Equal(date))

	subject, err := new(mime.WordDecoder).DecodeHeader(parsed.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, SubjectApproval, subject)

	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mediaType)

	mr := multipart.NewReader(parsed.Body, params["boundary"])
	var types []string
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		partType, _, err := mime.ParseMediaType(part.Header.Get("Content-Type"))
		require.NoError(t, err)
		types = append(types, partType)
		body, err := io.ReadAll(part)
		require.NoError(t, err)
		assert.Contains(t, string(body), "Jane")
	}
	assert.Equal(t, []string{"text/plain", "text/html"}, types)
}

func TestBuildMessage_PlainText(t *testing.T) {
	env := Envelope{
		From:    mail.Address{Address: "hr@lifewood.com"},
		To:      "jane@example.com",
		Message: Message{Subject: SubjectDecline, Text: "Dear Jane,"},
	}

	parsed := writeAndParse(t, env)

	mediaType, _, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mediaType)
	assert.Empty(t, parsed.Header.Get("Reply-To"))
}

func TestBuildMessage_RejectsBadRecipient(t *testing.T) {
	env := Envelope{
		From:    mail.Address{Address: "hr@lifewood.com"},
		To:      "not an address",
		Message: Message{Subject: "s", Text: "t"},
	}
	_, err := BuildMessage(env, fixedNow)
	assert.Error(t, err)
}

func writeAndParse(t *testing.T, env Envelope) *mail.Message {
	t.Helper()
	msg, err := BuildMessage(env, fixedNow)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)

	parsed, err := mail.ReadMessage(&buf)
	require.NoError(t, err)
	return parsed
}

func TestSMTPSender_CancelledContext(t *testing.T) {
	s := &SMTPSender{Host: "smtp.example.com", Port: 587}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env := Envelope{From: mail.Address{Address: "hr@lifewood.com"}, To: "jane@example.com", Message: Message{Subject: "s", Text: "t"}}
	assert.ErrorIs(t, s.Send(ctx, env), context.Canceled)
}

func TestSMTPSender_SilentRelayTimesOut(t *testing.T) {
	host, port := testutil.SilentRelay(t)
	s := &SMTPSender{Host: host, Port: port, Timeout: 300 * time.Millisecond}

	env := Envelope{From: mail.Address{Address: "hr@lifewood.com"}, To: "jane@example.com", Message: Message{Subject: "s", Text: "t"}}
	start := time.Now()
	err := s.Send(context.Background(), env)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Less(t, elapsed, 3*time.Second)
}

func TestSMTPSender_DefaultTimeout(t *testing.T) {
	assert.Equal(t, DefaultSMTPTimeout, (&SMTPSender{}).timeout())
	assert.Equal(t, time.Second, (&SMTPSender{Timeout: time.Second}).timeout())
}
