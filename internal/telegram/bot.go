package telegram

import (
	"fmt"
	"strings"

	"go-career-hunter/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of tgbotapi.BotAPI the bot uses
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api    Sender
	chatID int64
}

func NewBot(token string, chatID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	//turn this on in case of debug
	//api.Debug = true
	return NewBotWithSender(api, chatID), nil
}

func NewBotWithSender(api Sender, chatID int64) *Bot {
	return &Bot{api: api, chatID: chatID}
}

var markdownReplacer = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
	")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
	"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
	"}", "\\}", ".", "\\.", "!", "\\!",
)

// EscapeMarkdown escapes text for MarkdownV2
func EscapeMarkdown(text string) string {
	return markdownReplacer.Replace(text)
}

// JobCard renders one stored posting as a MarkdownV2 message body
func JobCard(job models.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔥 *%s*\n", EscapeMarkdown(job.Title))
	fmt.Fprintf(&b, "🏢 %s\n", EscapeMarkdown(job.CompanyName))

	loc := job.Location
	if loc == "" {
		loc = "N/A"
	}
	fmt.Fprintf(&b, "📍 %s\n", EscapeMarkdown(loc))
	if job.SourceURL != "" {
		fmt.Fprintf(&b, "🔖 Source: %s\n", EscapeMarkdown(job.SourceURL))
	}
	return b.String()
}

func (b *Bot) SendJob(job models.Job) error {
	msg := tgbotapi.NewMessage(b.chatID, JobCard(job))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🔗 View Job", job.Link),
		),
	)
	_, err := b.api.Send(msg)
	return err
}

// SendMarkdown sends a pre-escaped MarkdownV2 message
func (b *Bot) SendMarkdown(text string) error {
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendError(err error) error {
	msg := tgbotapi.NewMessage(b.chatID, fmt.Sprintf("❌ Error: %v", err))
	_, sendErr := b.api.Send(msg)
	return sendErr
}

func (b *Bot) SendStatus(message string) error {
	msg := tgbotapi.NewMessage(b.chatID, "ℹ️ "+message)
	_, err := b.api.Send(msg)
	return err
}
