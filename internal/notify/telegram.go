// Package notify sends a short run summary to Telegram.
package notify

import (
	"fmt"
	"html"
	"strings"

	"go-careers-agent/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	maxListedJobs  = 15
	maxMessageSize = 4000 // Telegram rejects messages over 4096 chars
)

// Sender is the part of tgbotapi.BotAPI used here
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramNotifier struct {
	bot    Sender
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	//turn this on in case of debug
	//bot.Debug = true

	return NewWithSender(bot, chatID), nil
}

func NewWithSender(bot Sender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID}
}

func (t *TelegramNotifier) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := t.bot.Send(msg)
	return err
}

// SendResult posts the outcome of a scrape: the query, how many jobs and a link per job
func (t *TelegramNotifier) SendResult(out models.Output) error {
	return t.SendMessage(FormatResult(out))
}

func (t *TelegramNotifier) SendError(req models.SearchRequest, errReq error) error {
	text := fmt.Sprintf("⚠️ <b>Scrape failed</b>: %s\n%s",
		html.EscapeString(req.Query()), html.EscapeString(errReq.Error()))
	return t.SendMessage(text)
}

func FormatResult(out models.Output) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔎 <b>%s</b>\n", html.EscapeString(out.JobParams.Query()))

	result, ok := out.Result.(*models.ScrapeResult)
	if !ok {
		b.WriteString("📝 The agent returned an unstructured answer, see the output file.")
		return b.String()
	}

	fmt.Fprintf(&b, "✅ %d job(s) found\n", len(result.Jobs))
	for i, job := range result.Jobs {
		if i == maxListedJobs {
			fmt.Fprintf(&b, "… and %d more\n", len(result.Jobs)-maxListedJobs)
			break
		}
		line := "\n🔥 " + html.EscapeString(orNA(job.Title))
		if job.URL != "" {
			line = fmt.Sprintf("\n🔥 <a href=\"%s\">%s</a>", html.EscapeString(job.URL), html.EscapeString(orNA(job.Title)))
		}
		if job.Location != "" {
			line += " 📍 " + html.EscapeString(job.Location)
		}
		if job.Salary != nil && *job.Salary != "" {
			line += " 💰 " + html.EscapeString(*job.Salary)
		}
		if b.Len()+len(line) > maxMessageSize {
			b.WriteString("\n…")
			break
		}
		b.WriteString(line)
	}
	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
