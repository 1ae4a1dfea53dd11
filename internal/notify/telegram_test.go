package notify

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"go-careers-agent/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.err
}

func TestSendResult(t *testing.T) {
	salary := "80k <EUR>"
	out := models.Output{
		Success:   true,
		JobParams: models.NewSearchRequest("Backend Engineer", "Acme & Co", "", ""),
		Result: &models.ScrapeResult{Jobs: []models.JobRecord{
			{Title: "Backend Engineer", URL: "https://acme.io/jobs/1", Location: "Berlin", Salary: &salary},
			{Title: ""},
		}},
	}
	sender := &fakeSender{}

	require.NoError(t, NewWithSender(sender, 42).SendResult(out))
	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	assert.Contains(t, msg.Text, "<b>Backend Engineer at Acme &amp; Co</b>")
	assert.Contains(t, msg.Text, "2 job(s) found")
	assert.Contains(t, msg.Text, `<a href="https://acme.io/jobs/1">Backend Engineer</a> 📍 Berlin 💰 80k &lt;EUR&gt;`)
	assert.Contains(t, msg.Text, "🔥 N/A")
}

func TestFormatResult_Unstructured(t *testing.T) {
	out := models.Output{JobParams: models.NewSearchRequest("Backend Engineer", "Acme", "", ""), Result: "no idea"}
	assert.Contains(t, FormatResult(out), "unstructured answer")
}

func TestFormatResult_ManyJobs(t *testing.T) {
	jobs := make([]models.JobRecord, 40)
	for i := range jobs {
		jobs[i] = models.JobRecord{Title: fmt.Sprintf("Job %d", i), URL: fmt.Sprintf("https://acme.io/jobs/%d", i)}
	}
	text := FormatResult(models.Output{Result: &models.ScrapeResult{Jobs: jobs}})
	assert.Equal(t, maxListedJobs, strings.Count(text, "🔥"))
	assert.Contains(t, text, "and 25 more")
	assert.LessOrEqual(t, len(text), maxMessageSize+100)
}

func TestSendError(t *testing.T) {
	sender := &fakeSender{err: errors.New("chat not found")}
	err := NewWithSender(sender, 1).SendError(models.NewSearchRequest("Dev", "Acme", "", ""), errors.New("rate limit <429>"))
	assert.EqualError(t, err, "chat not found")
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Text, "rate limit &lt;429&gt;")
}
