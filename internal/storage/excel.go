package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExportOrderToExcel writes one order's details to an xlsx file for the
// operator notification and returns its path.
func (s *PostgresStorage) ExportOrderToExcel(ctx context.Context, orderNumber string) (string, error) {
	order, err := s.GetOrder(ctx, orderNumber)
	if err != nil {
		return "", fmt.Errorf("failed to load order for export: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close excel file", zap.Error(err))
		}
	}()

	const sheet = "Sheet1"
	rows := [][2]string{
		{"Order number", order.OrderNumber},
		{"Payment UUID", order.PaymentUUID},
		{"Content option", order.ContentOption},
		{"Email", order.Email},
		{"Total", order.Total + " " + order.Currency},
		{"Network", order.Network},
		{"Products", strings.Join(order.Products, ", ")},
		{"Paid", fmt.Sprintf("%t", order.Paid)},
		{"Created at", order.CreatedAt.Format("02.01.2006 15:04")},
	}
	for i, row := range rows {
		cellA, _ := excelize.CoordinatesToCellName(1, i+1)
		cellB, _ := excelize.CoordinatesToCellName(2, i+1)
		if err := f.SetCellValue(sheet, cellA, row[0]); err != nil {
			return "", fmt.Errorf("failed to set cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cellB, row[1]); err != nil {
			return "", fmt.Errorf("failed to set cell: %w", err)
		}
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("order_%s.xlsx", order.OrderNumber))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save excel file: %w", err)
	}
	return path, nil
}
