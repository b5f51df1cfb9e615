// Package guardrails validates text crossing the assistant's boundary: user
// input before it reaches the dialogue graph and assistant output before it
// leaves the service.
package guardrails

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxInputLen bounds one user message.
	MaxInputLen = 4096
	// MaxOutputLen bounds one assistant response. Status tables for 50
	// invoices fit comfortably below this.
	MaxOutputLen = 32768
)

var (
	ErrEmptyInput       = errors.New("guardrails: input is empty")
	ErrInputTooLong     = errors.New("guardrails: input exceeds length limit")
	ErrOutputTooLong    = errors.New("guardrails: output exceeds length limit")
	ErrInvalidEncoding  = errors.New("guardrails: text is not valid UTF-8")
	ErrControlCharacter = errors.New("guardrails: text contains control characters")
)

var (
	tenDigits = regexp.MustCompile(`^\d{10}$`)
	emailRe   = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
)

// ValidateInput checks a user message before it enters the dialogue graph.
func ValidateInput(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}
	if len(text) > MaxInputLen {
		return ErrInputTooLong
	}
	return validateText(text)
}

// ValidateOutput checks an assistant response before it leaves the service.
func ValidateOutput(text string) error {
	if len(text) > MaxOutputLen {
		return ErrOutputTooLong
	}
	return validateText(text)
}

func validateText(text string) error {
	if !utf8.ValidString(text) {
		return ErrInvalidEncoding
	}
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return ErrControlCharacter
		}
	}
	return nil
}

// Redact masks email addresses in outbound text, keeping the first character
// of the local part so the user can still recognise their own address.
func Redact(text string) string {
	return emailRe.ReplaceAllStringFunc(text, func(addr string) string {
		at := strings.IndexByte(addr, '@')
		if at <= 1 {
			return "***" + addr[at:]
		}
		return addr[:1] + "***" + addr[at:]
	})
}

// CheckPONumberFormat reports whether a PO number is exactly 10 digits.
func CheckPONumberFormat(poNumber string) bool {
	return tenDigits.MatchString(poNumber)
}

// CheckInvoiceNumberFormat reports whether an invoice number is exactly 10
// digits.
func CheckInvoiceNumberFormat(invoiceNumber string) bool {
	return tenDigits.MatchString(invoiceNumber)
}
