package vat

import (
	"fmt"
	"regexp"
	"strconv"
)

// ReceiptNumber is the parsed form of a PREFIX-YYYY-NNNNNN receipt number.
// Sequences are allocated atomically by the storage layer; this codec only
// formats and parses the string.
type ReceiptNumber struct {
	Prefix   string
	Year     int
	Sequence int64
}

var receiptNumberPattern = regexp.MustCompile(`^([A-Z]+)-(\d{4})-(\d+)$`)

// GenerateReceiptNumber formats prefix, year and sequence as
// PREFIX-YYYY-NNNNNN. The sequence is zero-padded to 6 digits and widens
// beyond that; it is never truncated. The prefix is the caller's
// responsibility: a prefix outside [A-Z]+ produces a string
// ParseReceiptNumber will reject.
func GenerateReceiptNumber(prefix string, year int, sequence int64) string {
	return fmt.Sprintf("%s-%04d-%06d", prefix, year, sequence)
}

// ParseReceiptNumber splits a receipt number into its parts. A mismatch is
// an ordinary outcome, not an error: the second return is false for
// anything that does not match ^[A-Z]+-\d{4}-\d+$.
func ParseReceiptNumber(s string) (ReceiptNumber, bool) {
	m := receiptNumberPattern.FindStringSubmatch(s)
	if m == nil {
		return ReceiptNumber{}, false
	}
	year, err := strconv.Atoi(m[2])
	if err != nil {
		return ReceiptNumber{}, false
	}
	seq, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return ReceiptNumber{}, false
	}
	return ReceiptNumber{Prefix: m[1], Year: year, Sequence: seq}, true
}

// String renders the parsed form back to its canonical string.
func (r ReceiptNumber) String() string {
	return GenerateReceiptNumber(r.Prefix, r.Year, r.Sequence)
}
