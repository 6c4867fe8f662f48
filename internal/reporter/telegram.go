package reporter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-career-hunter/internal/models"
	"go-career-hunter/internal/telegram"
	"go-career-hunter/utils"
)

// MaxJobCards caps how many postings get their own message per batch
const MaxJobCards = 10

type Messenger interface {
	SendMarkdown(text string) error
	SendJob(job models.Job) error
}

// TelegramReporter sends a batch summary and one card per fresh posting
type TelegramReporter struct {
	bot Messenger
}

func NewTelegramReporter(bot Messenger) *TelegramReporter {
	return &TelegramReporter{bot: bot}
}

func (t *TelegramReporter) ReportBatch(ctx context.Context, runLog *models.RunLog, fresh []models.Job) error {
	if err := t.bot.SendMarkdown(BatchSummary(runLog, len(fresh))); err != nil {
		return fmt.Errorf("send summary: %w", err)
	}

	var errs []error
	for i, job := range fresh {
		if i >= MaxJobCards {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.bot.SendJob(job); err != nil {
			errs = append(errs, fmt.Errorf("send job %s: %w", job.Link, err))
		}
	}
	return errors.Join(errs...)
}

// BatchSummary renders a MarkdownV2 summary of a finished batch
func BatchSummary(runLog *models.RunLog, fresh int) string {
	icon := "✅"
	if runLog.Status == models.RunFailed {
		icon = "❌"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *Night Hunt %s*\n", icon, telegram.EscapeMarkdown(string(runLog.Status)))
	fmt.Fprintf(&b, "🔁 Trigger: %s\n", telegram.EscapeMarkdown(string(runLog.TriggerType)))
	fmt.Fprintf(&b, "🌐 URLs scanned: %d\n", runLog.URLsScanned)
	fmt.Fprintf(&b, "💼 New jobs: %d\n", runLog.JobsFound)
	fmt.Fprintf(&b, "⏱️ Duration: %s\n", telegram.EscapeMarkdown(utils.FormatDuration(runLog.Duration)))
	if len(runLog.Errors) > 0 {
		fmt.Fprintf(&b, "⚠️ Errors: %d\n", len(runLog.Errors))
	}
	if fresh > MaxJobCards {
		fmt.Fprintf(&b, "_showing the first %d postings_\n", MaxJobCards)
	}
	return b.String()
}
