package record

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaskType represents a known data format with masking rules.
type MaskType string

const (
	MaskSSN   MaskType = "ssn"   // 123-45-6789 -> ***-**-6789
	MaskEmail MaskType = "email" // alice@example.com -> a***@example.com
	MaskPhone MaskType = "phone" // (555) 123-4567 -> (***) ***-4567
	MaskCard  MaskType = "card"  // 4111111111111111 -> ************1111
	MaskUUID  MaskType = "uuid"  // 550e8400-e29b-41d4-a716-446655440000 -> 550e8400-****-****-****-************
	MaskName  MaskType = "name"  // John Smith -> J*** S****
)

// Masker applies content-aware masking.
type Masker interface {
	Mask(value string) string
}

// MaskFunc adapts a function to Masker.
type MaskFunc func(value string) string

func (f MaskFunc) Mask(value string) string { return f(value) }

func stars(s string) string {
	return strings.Repeat("*", utf8.RuneCountInString(s))
}

func digitsOf(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// SSNMasker keeps the last four digits of a social security number.
func SSNMasker() Masker {
	return MaskFunc(func(value string) string {
		d := digitsOf(value)
		if len(d) < 4 {
			return stars(value)
		}
		return "***-**-" + d[len(d)-4:]
	})
}

// EmailMasker keeps the first character of the local part and the domain.
func EmailMasker() Masker {
	return MaskFunc(func(value string) string {
		at := strings.LastIndex(value, "@")
		if at < 1 {
			return stars(value)
		}
		first, _ := utf8.DecodeRuneInString(value)
		return string(first) + "***" + value[at:]
	})
}

// PhoneMasker keeps the last four digits of a phone number.
func PhoneMasker() Masker {
	return MaskFunc(func(value string) string {
		d := digitsOf(value)
		if len(d) < 4 {
			return stars(value)
		}
		last4 := d[len(d)-4:]
		switch {
		case strings.HasPrefix(value, "(") && len(d) >= 10:
			return "(***) ***-" + last4
		case len(d) >= 10:
			return "***-***-" + last4
		default:
			return "***-" + last4
		}
	})
}

// CardMasker keeps the last four digits of a card number.
func CardMasker() Masker {
	return MaskFunc(func(value string) string {
		d := digitsOf(value)
		if len(d) < 4 {
			return stars(value)
		}
		return strings.Repeat("*", len(d)-4) + d[len(d)-4:]
	})
}

// UUIDMasker keeps the first group of a UUID.
func UUIDMasker() Masker {
	return MaskFunc(func(value string) string {
		id, err := uuid.Parse(value)
		if err != nil {
			return stars(value)
		}
		return id.String()[:8] + "-****-****-****-************"
	})
}

// NameMasker keeps the first letter of each word.
func NameMasker() Masker {
	return MaskFunc(func(value string) string {
		words := strings.Fields(value)
		for i, w := range words {
			first, size := utf8.DecodeRuneInString(w)
			words[i] = string(first) + stars(w[size:])
		}
		return strings.Join(words, " ")
	})
}

func builtinMaskers() map[MaskType]Masker {
	return map[MaskType]Masker{
		MaskSSN:   SSNMasker(),
		MaskEmail: EmailMasker(),
		MaskPhone: PhoneMasker(),
		MaskCard:  CardMasker(),
		MaskUUID:  UUIDMasker(),
		MaskName:  NameMasker(),
	}
}

// AsMasked reads an attribute through a masker ("masked:email"). The masked
// string is a view: assigning to the key stores the new plaintext raw, and
// the next read masks it.
type AsMasked struct{}

func (AsMasked) CastUsing(options []string) (CastsAttributes, error) {
	if len(options) == 0 {
		return nil, newConfigError(ErrInvalidOption, "", "")
	}
	mt := MaskType(options[0])
	if !IsValidMaskType(mt) {
		return nil, newConfigError(ErrInvalidOption, options[0], "")
	}
	return &maskedCast{mt: mt}, nil
}

type maskedCast struct {
	mt MaskType
}

func (c *maskedCast) GetAttribute(r *Record, _ string, value any, _ Attributes) (any, error) {
	if value == nil {
		return nil, nil
	}
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("%w: cannot mask %T", ErrInvalidCast, value)
	}
	m, err := r.Masker(c.mt)
	if err != nil {
		return nil, err
	}
	return m.Mask(s), nil
}

func (c *maskedCast) View() {}

func (c *maskedCast) SetAttribute(_ *Record, _ string, _ any, _ Attributes) (map[string]any, error) {
	return nil, nil
}
