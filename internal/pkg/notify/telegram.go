// Package notify alerts operators about degraded conversions: captures where
// so many sections defaulted, or where column binding fell back to position,
// that the compiled document deserves a human look before it feeds prompts.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/stattrust/matchup-compiler/internal/pkg/models"
)

// Min interval between any two Telegram messages to the same chat to avoid
// 429 Too Many Requests (~30/min limit).
const telegramSendInterval = 2 * time.Second

type queuedAlert struct {
	matchup string
	diags   models.Diagnostics
}

// TelegramNotifier sends Telegram alerts for degraded conversions. Alerts are
// queued and sent by a background worker so conversions never block on the
// Telegram API.
type TelegramNotifier struct {
	bot       *tgbotapi.BotAPI
	chatID    int64
	threshold int

	queue  chan queuedAlert
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewTelegramNotifier creates the notifier and verifies the bot credentials.
// Returns nil (alerting disabled) when the bot cannot be reached; a broken
// alert channel must not take the service down.
func NewTelegramNotifier(token string, chatID int64, degradedThreshold int) *TelegramNotifier {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		slog.Error("Failed to create telegram bot", "error", err)
		return nil
	}
	bot.Debug = false

	if _, err := bot.GetMe(); err != nil {
		slog.Error("Failed to get bot info", "error", err)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	n := &TelegramNotifier{
		bot:       bot,
		chatID:    chatID,
		threshold: degradedThreshold,
		queue:     make(chan queuedAlert, 100),
		cancel:    cancel,
	}

	n.wg.Add(1)
	go n.sender(ctx)
	return n
}

// ConversionDegraded queues an alert when the conversion crossed the
// degradation threshold or used a heuristic column binding. Non-blocking: if
// the queue is full the alert is dropped with a log line.
func (n *TelegramNotifier) ConversionDegraded(matchup string, diags models.Diagnostics) {
	if n == nil || n.threshold <= 0 {
		return
	}
	if len(diags) < n.threshold && !hasHeuristicBinding(diags) {
		return
	}
	select {
	case n.queue <- queuedAlert{matchup: matchup, diags: diags}:
	default:
		slog.Warn("Telegram alert queue full, dropping alert", "matchup", matchup)
	}
}

func hasHeuristicBinding(diags models.Diagnostics) bool {
	for _, d := range diags {
		if strings.Contains(d.Message, "heuristic match") {
			return true
		}
	}
	return false
}

func (n *TelegramNotifier) sender(ctx context.Context) {
	defer n.wg.Done()
	var lastSend time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case alert := <-n.queue:
			if wait := telegramSendInterval - time.Since(lastSend); wait > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(wait):
				}
			}
			msg := tgbotapi.NewMessage(n.chatID, formatAlert(alert))
			if _, err := n.bot.Send(msg); err != nil {
				slog.Error("Failed to send telegram alert", "matchup", alert.matchup, "error", err)
			}
			lastSend = time.Now()
		}
	}
}

func formatAlert(alert queuedAlert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ Degraded conversion: %s\n%d warnings\n", alert.matchup, len(alert.diags))
	limit := len(alert.diags)
	if limit > 10 {
		limit = 10
	}
	for _, d := range alert.diags[:limit] {
		fmt.Fprintf(&b, "- [%s] %s\n", d.Section, d.Message)
	}
	if len(alert.diags) > limit {
		fmt.Fprintf(&b, "… and %d more\n", len(alert.diags)-limit)
	}
	return b.String()
}

// Stop shuts the background worker down. Queued alerts that have not been
// sent yet are discarded.
func (n *TelegramNotifier) Stop() {
	if n == nil {
		return
	}
	n.cancel()
	n.wg.Wait()
}
