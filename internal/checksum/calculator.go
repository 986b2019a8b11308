package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// Calculator is an interface for computing file checksums.
// This abstraction allows for different checksum strategies and algorithms.
type Calculator interface {
	// CalculateRaw computes a checksum of the raw, unmodified content.
	CalculateRaw(content []byte) string

	// CalculateNormalized computes a checksum of normalized content.
	// Normalization makes checksums resilient to formatting changes.
	CalculateNormalized(content []byte) string
}

// SHA256 implements checksum calculation using SHA-256.
// It normalizes XML content before hashing:
//  1. Remove comments and processing instructions, keeping CDATA and
//     attribute values intact
//  2. Collapse whitespace to single spaces
//  3. Drop whitespace between adjacent tags
//
// SHA256 is a zero-size type and is safe for concurrent use by multiple goroutines.
type SHA256 struct{}

// New creates a new SHA-256 based calculator.
func New() SHA256 {
	return SHA256{}
}

// CalculateRaw computes SHA-256 of raw content.
func (c SHA256) CalculateRaw(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// CalculateNormalized computes SHA-256 of normalized content.
func (c SHA256) CalculateNormalized(content []byte) string {
	normalized := c.normalize(string(content))
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}

func (c SHA256) normalize(content string) string {
	cleaned := c.removeMarkup(content)

	var b strings.Builder
	b.Grow(len(cleaned))

	lastWasSpace := false
	for _, r := range cleaned {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				b.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			b.WriteRune(r)
			lastWasSpace = false
		}
	}

	return strings.TrimSpace(strings.ReplaceAll(b.String(), "> <", "><"))
}

type scanState int

const (
	ssText scanState = iota
	ssTag
	ssQuote
	ssComment
	ssInstruction
	ssCData
)

const (
	commentOpen      = "<!--"
	commentClose     = "-->"
	instructionOpen  = "<?"
	instructionClose = "?>"
	cdataOpen        = "<![CDATA["
	cdataClose       = "]]>"
)

// removeMarkup strips comments and processing instructions. Quoted
// attribute values and CDATA sections are copied verbatim, so markup-like
// text inside them survives.
func (c SHA256) removeMarkup(content string) string {
	var b strings.Builder
	b.Grow(len(content))

	state := ssText
	var quote byte
	i := 0

	for i < len(content) {
		ch := content[i]

		switch state {
		case ssText:
			switch {
			case strings.HasPrefix(content[i:], commentOpen):
				state = ssComment
				b.WriteByte(' ')
				i += len(commentOpen)
			case strings.HasPrefix(content[i:], cdataOpen):
				state = ssCData
				b.WriteString(cdataOpen)
				i += len(cdataOpen)
			case strings.HasPrefix(content[i:], instructionOpen):
				state = ssInstruction
				b.WriteByte(' ')
				i += len(instructionOpen)
			case ch == '<':
				state = ssTag
				b.WriteByte(ch)
				i++
			default:
				b.WriteByte(ch)
				i++
			}

		case ssTag:
			b.WriteByte(ch)
			switch ch {
			case '"', '\'':
				state = ssQuote
				quote = ch
			case '>':
				state = ssText
			}
			i++

		case ssQuote:
			b.WriteByte(ch)
			if ch == quote {
				state = ssTag
			}
			i++

		case ssComment:
			if strings.HasPrefix(content[i:], commentClose) {
				state = ssText
				i += len(commentClose)
			} else {
				i++
			}

		case ssInstruction:
			if strings.HasPrefix(content[i:], instructionClose) {
				state = ssText
				i += len(instructionClose)
			} else {
				i++
			}

		case ssCData:
			if strings.HasPrefix(content[i:], cdataClose) {
				b.WriteString(cdataClose)
				state = ssText
				i += len(cdataClose)
			} else {
				b.WriteByte(ch)
				i++
			}
		}
	}

	return b.String()
}
