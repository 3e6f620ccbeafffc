package recorder

import (
	"strings"
	"testing"

	"hawkbook/book"
	"hawkbook/simulator"
)

func ptrf(v float64) *float64 { return &v }

func TestWriteHeaderAndRow(t *testing.T) {
	var buf strings.Builder
	r := NewCSVRecorder(&buf)

	rec := simulator.ObservationRecord{
		T: 1.5, EventType: book.Add, Side: book.Bid, Quantity: 10, Price: 100.1, Applied: true,
		BestBidPrice: ptrf(100.1), BestBidQty: ptrf(10),
		BestAskPrice: ptrf(100.2), BestAskQty: ptrf(5),
		Mid: ptrf(100.15), Spread: ptrf(0.1), Imbalance: ptrf(0.3333333333),
	}
	if err := r.Write(rec); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines: %q", len(lines), buf.String())
	}
	wantHeader := "t,evt,side,qty,price,best_bid,best_bid_qty,best_ask,best_ask_qty,mid,spread,imbalance_top1"
	if lines[0] != wantHeader {
		t.Fatalf("header mismatch:\n got  %q\n want %q", lines[0], wantHeader)
	}

	fields := strings.Split(lines[1], ",")
	if len(fields) != 12 {
		t.Fatalf("expected 12 fields, got %d: %v", len(fields), fields)
	}
	if fields[1] != "0" { // book.Add == 0
		t.Fatalf("expected evt=0 for Add, got %q", fields[1])
	}
	if fields[2] != "0" { // book.Bid == 0
		t.Fatalf("expected side=0 for Bid, got %q", fields[2])
	}
}

func TestMissingOptionalFieldsAreEmptyStrings(t *testing.T) {
	var buf strings.Builder
	r := NewCSVRecorder(&buf)

	rec := simulator.ObservationRecord{
		T: 0, EventType: book.Market, Side: book.Ask, Quantity: 5, Price: 0, Applied: false,
	}
	if err := r.Write(rec); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	fields := strings.Split(lines[1], ",")
	for _, idx := range []int{5, 6, 7, 8, 9, 10, 11} {
		if fields[idx] != "" {
			t.Fatalf("expected empty field at index %d, got %q (row=%q)", idx, fields[idx], lines[1])
		}
	}
}

func TestWriteAllWritesEveryRecordOnce(t *testing.T) {
	var buf strings.Builder
	r := NewCSVRecorder(&buf)

	records := []simulator.ObservationRecord{
		{T: 0, EventType: book.Add, Side: book.Bid, Quantity: 1, Price: 100},
		{T: 1, EventType: book.Cancel, Side: book.Ask, Quantity: 1, Price: 101},
		{T: 2, EventType: book.Market, Side: book.Bid, Quantity: 1, Price: 0},
	}
	if err := r.WriteAll(records); err != nil {
		t.Fatalf("WriteAll failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != len(records)+1 {
		t.Fatalf("expected %d lines (header + rows), got %d", len(records)+1, len(lines))
	}
}
