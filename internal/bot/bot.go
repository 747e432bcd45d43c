package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/factory-stock/internal/report"
)

type Bot struct {
	api *tgbotapi.BotAPI
	log *slog.Logger
	cmd *Commands
}

func New(api *tgbotapi.BotAPI, log *slog.Logger, svc Ledger) *Bot {
	return &Bot{api: api, log: log, cmd: NewCommands(svc)}
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			if upd.Message != nil {
				b.onMessage(ctx, upd.Message)
			}
		}
	}
}

func (b *Bot) onMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if msg.Command() == "export" {
		b.sendExport(chatID)
		return
	}
	reply := b.cmd.Handle(ctx, msg.Text)
	if reply == "" {
		return
	}
	b.send(tgbotapi.NewMessage(chatID, reply))
}

func (b *Bot) sendExport(chatID int64) {
	buf, err := report.Export(b.cmd.svc)
	if err != nil {
		b.log.Error("export failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Export failed"))
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("stock_%s.xlsx", time.Now().Format("20060102_150405")),
		Bytes: buf.Bytes(),
	})
	doc.Caption = "Stock, ledger, orders and history"
	b.send(doc)
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", "err", err)
	}
}
