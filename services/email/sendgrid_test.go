package emailsvc

import (
	"bytes"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signquick/signquick/core"
)

func TestSendgridService_prepare(t *testing.T) {
	svc := NewSendgridService(&core.Config{
		AppName:          "SignQuick",
		DefaultFromEmail: mail.Address{Name: "SignQuick", Address: "noreply@signquick.kr"},
	}, nil)

	msg := core.EmailMessage{
		To:           []mail.Address{{Name: "Kim", Address: "kim@test.kr"}},
		Cc:           []mail.Address{{Address: "office@test.kr"}},
		Subject:      "Quote Q-20240101-0001 for ACME",
		TemplateName: "quote",
		TextContent:  "see attached",
		HTMLContent:  "<p>see attached</p>",
	}
	require.NoError(t, msg.Attach(bytes.NewReader([]byte("%PDF-1.3")), "Q-20240101-0001.pdf", "application/pdf"))

	m := svc.prepare(msg)
	assert.Equal(t, "noreply@signquick.kr", m.From.Address)
	require.Len(t, m.Personalizations, 1)
	p := m.Personalizations[0]
	assert.Equal(t, "[SignQuick] Quote Q-20240101-0001 for ACME", p.Subject)
	require.Len(t, p.To, 1)
	assert.Equal(t, "kim@test.kr", p.To[0].Address)
	require.Len(t, p.CC, 1)
	assert.Equal(t, []string{"quote"}, m.Categories)
	require.Len(t, m.Content, 2)
	assert.Equal(t, "text/plain", m.Content[0].Type)
	require.Len(t, m.Attachments, 1)
	assert.Equal(t, "Q-20240101-0001.pdf", m.Attachments[0].Filename)
	assert.Equal(t, "JVBERi0xLjM=", m.Attachments[0].Content)
	assert.Equal(t, "attachment", m.Attachments[0].Disposition)

	t.Run("plain messages carry no category", func(t *testing.T) {
		m := svc.prepare(core.EmailMessage{To: msg.To, Subject: "hi", TextContent: "hi"})
		assert.Empty(t, m.Categories)
	})
}
