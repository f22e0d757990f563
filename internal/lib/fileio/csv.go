package fileio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/asquebay/order-query-service/internal/model"
)

// ReportFileName: имя файла отчёта, отдаваемого клиенту
const ReportFileName = "orders_report.csv"

var reportHeader = []string{"Customer ID", "Order Date", "Description", "Total Price"}

var quoteEscaper = strings.NewReplacer(`"`, `""`)

// WriteOrdersCSV пишет отчёт по заказам
// каждое значение в двойных кавычках (внутренние кавычки удваиваются), строки через \n
func WriteOrdersCSV(w io.Writer, orders []model.OrderResponse) error {
	const op = "fileio.WriteOrdersCSV"

	bw := bufio.NewWriter(w)
	if err := writeRecord(bw, reportHeader); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, o := range orders {
		record := []string{
			strconv.FormatInt(o.CustomerID, 10),
			o.OrderDate.String(),
			o.Description,
			o.TotalPrice.String(),
		}
		if err := writeRecord(bw, record); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func writeRecord(w *bufio.Writer, values []string) error {
	for i, v := range values {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + quoteEscaper.Replace(v) + `"`); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}
