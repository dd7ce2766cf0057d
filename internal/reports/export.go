package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mkcamara/graniteledger-backend/internal/deliveries"
	"github.com/mkcamara/graniteledger-backend/internal/finance"
	pkgerrors "github.com/mkcamara/graniteledger-backend/pkg/errors"
	"github.com/mkcamara/graniteledger-backend/pkg/visibility"
)

const statementSheetName = "Releve"

// ExportStatement renders the statement as an XLSX workbook and returns the
// file bytes plus a suggested filename.
func (s *service) ExportStatement(ctx context.Context, actor visibility.Actor, filters deliveries.ListFilters) ([]byte, string, error) {
	statement, err := s.Statement(ctx, actor, filters)
	if err != nil {
		return nil, "", err
	}
	currency := statement.Totals.CurrencyCode

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, statementSheetName); err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "naming sheet")
	}
	sheet = statementSheetName

	header := []interface{}{
		"date",
		"client",
		"sand_type",
		"volume_m3",
		"gross",
		"commission",
		"net",
		"paid",
		"remaining",
		"running_balance",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing header")
	}

	row := 2
	for _, line := range statement.Rows {
		cells := []interface{}{
			line.DeliveryDate.Format("2006-01-02"),
			line.Client,
			line.SandType,
			line.Volume,
			line.GrossAmount,
			line.Commission,
			line.NetAmount,
			line.TotalPaid,
			line.RemainingBalance,
			line.RunningBalance,
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "computing cell")
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing row")
		}
		row++
	}

	// Totals footer, one blank row below the table.
	row++
	footer := []interface{}{
		"TOTAL",
		"",
		"",
		"",
		finance.FormatCurrency(statement.Totals.TotalGross, currency),
		finance.FormatCurrency(statement.Totals.TotalCommission, currency),
		finance.FormatCurrency(statement.Totals.TotalNet, currency),
		finance.FormatCurrency(statement.Totals.TotalCollected, currency),
		finance.FormatCurrency(statement.Totals.TotalOutstanding, currency),
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "computing footer cell")
	}
	if err := f.SetSheetRow(sheet, cell, &footer); err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing footer")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rendering workbook")
	}

	filename := fmt.Sprintf("releve_%s.xlsx", time.Now().UTC().Format("20060102"))
	return buf.Bytes(), filename, nil
}
