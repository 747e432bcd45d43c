package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/factory-stock/internal/domain/orders"
)

var ErrEmptyWorkbook = errors.New("report: workbook has no sheets")

var dateLayouts = []string{time.DateOnly, "2006/01/02", "2006.01.02", "02.01.2006"}

// ImportOrders reads orders from the first sheet of an xlsx workbook with the
// columns customer, product, quantity, delivery_date, status. A header row and
// blank rows are skipped. Any invalid row fails the whole import.
func ImportOrders(r io.Reader) ([]orders.Order, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	var out []orders.Order
	for i, row := range rows {
		if blank(row) {
			continue
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "customer") {
			continue
		}
		o, err := parseOrderRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, o)
	}
	return out, nil
}

func parseOrderRow(row []string) (orders.Order, error) {
	col := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	qty, err := strconv.ParseInt(col(2), 10, 64)
	if err != nil {
		return orders.Order{}, fmt.Errorf("quantity %q: %w", col(2), err)
	}
	delivery, err := parseDate(col(3))
	if err != nil {
		return orders.Order{}, err
	}
	status, err := orders.ParseStatus(col(4))
	if err != nil {
		return orders.Order{}, err
	}
	return orders.NewOrder(col(0), col(1), qty, delivery, status)
}

// parseDate accepts text dates and Excel date serials.
func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return excelize.ExcelDateToTime(serial, false)
	}
	return time.Time{}, fmt.Errorf("delivery_date %q: unrecognised date", s)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
