// Package notify delivers stock alerts to a Telegram chat.
package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Aurora209/inventory-system/internal/domain/inventory"
)

// Sender is satisfied by *tgbotapi.BotAPI.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

var _ inventory.Notifier = (*Telegram)(nil)

type Telegram struct {
	api    Sender
	chatID int64
}

func NewTelegram(api Sender, chatID int64) *Telegram {
	return &Telegram{api: api, chatID: chatID}
}

// NotifyStock sends all alerts as one message.
func (t *Telegram) NotifyStock(ctx context.Context, alerts []inventory.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.api.Send(tgbotapi.NewMessage(t.chatID, FormatAlerts(alerts))); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// FormatAlerts renders alerts as plain text, out-of-stock items first.
func FormatAlerts(alerts []inventory.Alert) string {
	var zero, low []string
	for _, a := range alerts {
		name := a.Name
		if name == "" {
			name = fmt.Sprintf("ID:%d", a.ProductID)
		}
		if a.SKU != "" {
			name = fmt.Sprintf("%s (%s)", name, a.SKU)
		}
		switch a.Level {
		case inventory.AlertZero:
			zero = append(zero, "— "+name)
		case inventory.AlertLow:
			low = append(low, fmt.Sprintf("— %s — %s %s left (min %s)",
				name, a.Quantity.String(), a.Unit, a.MinStock.Decimal.String()))
		}
	}

	var b strings.Builder
	if len(zero) > 0 {
		b.WriteString("⚠️ Out of stock:\n")
		b.WriteString(strings.Join(zero, "\n"))
	}
	if len(low) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("⚠️ Running low:\n")
		b.WriteString(strings.Join(low, "\n"))
	}
	return b.String()
}
