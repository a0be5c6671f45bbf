package emailsvc

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/testutil"
)

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	conf := core.NewTestConfig()
	logger := testutil.NewLogger()
	core.ParseEmailTemplates(logger, true)
	ResetSentMessages()

	svc := NewConsoleServiceMock(conf, logger)
	svc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Name: "Alex Student", Address: "alex@college.edu"}},
			Subject:      "Registration confirmed: Hackathon 2024",
			TemplateName: "registration_confirmation",
			TemplateData: map[string]string{"Title": "Hackathon 2024", "Date": "2024-03-15", "Time": "09:00"},
		},
		&core.EmailMessage{Subject: "nobody to send to", BodyStr: "dropped"},
	)

	sent := GetSentMessages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].TextContent, "You are registered for Hackathon 2024 on 2024-03-15 at 09:00.")
	assert.Contains(t, sent[0].HTMLContent, "Hackathon 2024")
	assert.Empty(t, logger.Errors())
}
