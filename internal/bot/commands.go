package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Spok95/factory-stock/internal/domain/history"
	"github.com/Spok95/factory-stock/internal/domain/inventory"
	"github.com/Spok95/factory-stock/internal/report"
	"github.com/Spok95/factory-stock/internal/stock"
)

const helpText = `Commands:
/stock <product> - current stock
/in <product> <qty> [note] - register a receipt
/out <product> <qty> [note] - register a shipment
/history <product> - stock levels over time
/recent [n] - latest movements (20 by default)
/summary - totals for today
/export - xlsx workbook`

// Ledger is what the bot needs from the stock service.
type Ledger interface {
	report.Source
	ApplyMovement(ctx context.Context, kind inventory.Kind, product string, qty int64, note string) (inventory.Transaction, error)
	CurrentStock(product string) (int64, error)
	History(product string) ([]history.Point, error)
	Summary(now time.Time) stock.Summary
}

// Commands turns chat text into service calls and renders the replies.
// Product names must not contain spaces.
type Commands struct {
	svc Ledger
	now func() time.Time
}

func NewCommands(svc Ledger) *Commands { return &Commands{svc: svc, now: time.Now} }

func (c *Commands) Handle(ctx context.Context, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	// "/stock@factory_bot A" in group chats
	name, _, _ := strings.Cut(strings.TrimPrefix(fields[0], "/"), "@")
	args := fields[1:]

	switch name {
	case "start", "help":
		return helpText
	case "stock":
		if len(args) != 1 {
			return "Usage: /stock <product>"
		}
		return c.stock(args[0])
	case "in":
		return c.movement(ctx, inventory.KindReceipt, args)
	case "out":
		return c.movement(ctx, inventory.KindShipment, args)
	case "history":
		if len(args) != 1 {
			return "Usage: /history <product>"
		}
		return c.history(args[0])
	case "recent":
		n := 20
		if len(args) > 0 {
			v, err := strconv.Atoi(args[0])
			if err != nil || v <= 0 {
				return "Usage: /recent [n]"
			}
			n = v
		}
		return c.recent(n)
	case "summary":
		return c.summary()
	}
	return "Unknown command. " + helpText
}

func (c *Commands) stock(product string) string {
	qty, err := c.svc.CurrentStock(product)
	if err != nil {
		return describe(err)
	}
	unit := ""
	for _, p := range c.svc.Products() {
		if p.Name == product {
			unit = " " + p.Unit
			break
		}
	}
	return fmt.Sprintf("%s: %d%s\nPending orders: %d%s", product, qty, unit, c.svc.PendingQuantity(product), unit)
}

func (c *Commands) movement(ctx context.Context, kind inventory.Kind, args []string) string {
	if len(args) < 2 {
		if kind == inventory.KindReceipt {
			return "Usage: /in <product> <qty> [note]"
		}
		return "Usage: /out <product> <qty> [note]"
	}
	qty, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Sprintf("❌ Quantity must be a whole number, got %q", args[1])
	}
	tx, err := c.svc.ApplyMovement(ctx, kind, args[0], qty, strings.Join(args[2:], " "))
	if err != nil {
		return describe(err)
	}
	left, _ := c.svc.CurrentStock(tx.Product)
	verb := "received"
	if kind == inventory.KindShipment {
		verb = "shipped"
	}
	return fmt.Sprintf("✅ %s: %d %s, stock now %d", tx.Product, tx.Quantity, verb, left)
}

func (c *Commands) history(product string) string {
	points, err := c.svc.History(product)
	if err != nil {
		return describe(err)
	}
	if len(points) == 0 {
		return fmt.Sprintf("No movements recorded for %s", product)
	}
	loc := c.svc.Location()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Stock history for %s:\n", product)
	for i, p := range points {
		label := ""
		if i == 0 {
			label = " (before first movement)"
		}
		fmt.Fprintf(&sb, "%s  %d%s\n", p.At.In(loc).Format(report.TimeLayout), p.Stock, label)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (c *Commands) recent(n int) string {
	txs := c.svc.Recent(n)
	if len(txs) == 0 {
		return "No movements yet"
	}
	loc := c.svc.Location()
	var sb strings.Builder
	for _, tx := range txs {
		sign := "+"
		if tx.Kind == inventory.KindShipment {
			sign = "-"
		}
		fmt.Fprintf(&sb, "%s  %s %s%d  %s\n", tx.At.In(loc).Format(report.TimeLayout), tx.Product, sign, tx.Quantity, tx.Note)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (c *Commands) summary() string {
	s := c.svc.Summary(c.now())
	return fmt.Sprintf("Total stock: %d\nReceived today: %d\nShipped today: %d\nPending orders: %d",
		s.TotalStock, s.ReceiptsToday, s.ShipmentsToday, s.PendingOrders)
}

func describe(err error) string {
	switch {
	case errors.Is(err, stock.ErrUnknownProduct):
		return "❌ Unknown product"
	case errors.Is(err, stock.ErrInvalidQuantity):
		return "❌ Quantity must be greater than zero"
	case errors.Is(err, stock.ErrInsufficientStock):
		return "❌ Not enough stock"
	}
	return "❌ " + err.Error()
}
