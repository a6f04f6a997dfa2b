package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"guestpost-checkout/internal/checkout"
	"guestpost-checkout/internal/storage"
)

// OPERATOR NOTIFICATIONS

// Telegram sends order lifecycle notifications to the marketplace operator
// chat. With no token or chat configured it degrades to a no-op.
type Telegram struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	journal *storage.PostgresStorage
	logger  *zap.Logger
}

func New(token string, chatID int64, journal *storage.PostgresStorage, logger *zap.Logger) (*Telegram, error) {
	if token == "" || chatID == 0 {
		logger.Warn("Operator notifications disabled - no telegram token or chat ID configured")
		return &Telegram{logger: logger}, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	logger.Info("Operator notification bot authorized",
		zap.String("username", bot.Self.UserName))

	return &Telegram{
		bot:     bot,
		chatID:  chatID,
		journal: journal,
		logger:  logger,
	}, nil
}

// OrderPlaced notifies the operator chat about a new order and attaches the
// journal's Excel export when available.
func (t *Telegram) OrderPlaced(ctx context.Context, rec checkout.OrderRecord) {
	if t.bot == nil {
		return
	}

	text := fmt.Sprintf(
		"New order %s\n"+
			"Content: %s\n"+
			"Total: %s %s\n"+
			"Network: %s\n"+
			"Products: %s\n"+
			"Buyer: %s",
		rec.OrderNumber,
		rec.ContentOption,
		rec.Total.StringFixed(2), rec.Currency,
		rec.Network,
		strings.Join(rec.Products, ", "),
		rec.Email,
	)

	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Error("Failed to send order notification",
			zap.String("order_number", rec.OrderNumber),
			zap.Error(err))
		return
	}

	t.sendExcelExport(ctx, rec.OrderNumber)
}

// PaymentConfirmed notifies the operator chat about a confirmed payment.
func (t *Telegram) PaymentConfirmed(ctx context.Context, orderNumber string) {
	if t.bot == nil {
		return
	}

	msg := tgbotapi.NewMessage(t.chatID, fmt.Sprintf("Payment confirmed for order %s", orderNumber))
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Error("Failed to send payment notification",
			zap.String("order_number", orderNumber),
			zap.Error(err))
	}
}

func (t *Telegram) sendExcelExport(ctx context.Context, orderNumber string) {
	if t.journal == nil {
		return
	}

	path, err := t.journal.ExportOrderToExcel(ctx, orderNumber)
	if err != nil {
		t.logger.Error("Failed to create excel file for order",
			zap.String("order_number", orderNumber),
			zap.Error(err))
		return
	}

	doc := tgbotapi.NewDocument(t.chatID, tgbotapi.FilePath(path))
	doc.Caption = fmt.Sprintf("Order %s details", orderNumber)
	if _, err := t.bot.Send(doc); err != nil {
		t.logger.Error("Failed to send excel file",
			zap.String("order_number", orderNumber),
			zap.Error(err))
	}
}
