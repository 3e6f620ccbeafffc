// Package recorder is an external collaborator (spec.md §6: "CSV
// logging... remain external collaborators"). It only imports
// simulator's ObservationRecord type; simulator never imports
// recorder. Grounded on original_source/cpp/src/csv_logger.cpp's
// column order and precision, reimplemented with stdlib encoding/csv
// rather than manual stream formatting.
package recorder

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"hawkbook/simulator"
)

var header = []string{
	"t", "evt", "side", "qty", "price",
	"best_bid", "best_bid_qty", "best_ask", "best_ask_qty",
	"mid", "spread", "imbalance_top1",
}

// significantDigits matches csv_logger.cpp's setprecision(10).
const significantDigits = 10

// CSVRecorder writes ObservationRecords to an io.Writer in the exact
// encoding spec.md §6 fixes: header row, then one row per record, with
// missing optional fields as the empty string.
type CSVRecorder struct {
	w           *csv.Writer
	wroteHeader bool
}

// NewCSVRecorder wraps w. Callers must call Close when done to flush
// the underlying csv.Writer.
func NewCSVRecorder(w io.Writer) *CSVRecorder {
	return &CSVRecorder{w: csv.NewWriter(w)}
}

// Write appends one row, writing the header first if this is the
// first call.
func (r *CSVRecorder) Write(rec simulator.ObservationRecord) error {
	if !r.wroteHeader {
		if err := r.w.Write(header); err != nil {
			return fmt.Errorf("recorder: write header: %w", err)
		}
		r.wroteHeader = true
	}

	row := []string{
		formatFloat(rec.T),
		strconv.Itoa(int(rec.EventType)),
		strconv.Itoa(int(rec.Side)),
		formatFloat(rec.Quantity),
		formatFloat(rec.Price),
		formatOptional(rec.BestBidPrice),
		formatOptional(rec.BestBidQty),
		formatOptional(rec.BestAskPrice),
		formatOptional(rec.BestAskQty),
		formatOptional(rec.Mid),
		formatOptional(rec.Spread),
		formatOptional(rec.Imbalance),
	}
	if err := r.w.Write(row); err != nil {
		return fmt.Errorf("recorder: write row: %w", err)
	}
	return nil
}

// WriteAll writes every record in order, flushing once at the end.
func (r *CSVRecorder) WriteAll(records []simulator.ObservationRecord) error {
	for _, rec := range records {
		if err := r.Write(rec); err != nil {
			return err
		}
	}
	return r.Close()
}

// Close flushes any buffered rows and surfaces the first write error,
// if any, exactly as csv.Writer.Flush does.
func (r *CSVRecorder) Close() error {
	r.w.Flush()
	return r.w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', significantDigits, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
