// Package ingestion turns resume and job files into normalized plain text.
package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// MaxFileBytes caps the size of an input file.
const MaxFileBytes = 8 * 1024 * 1024

var (
	// ErrEmptyInput is returned when a file or text has no content left after
	// normalization.
	ErrEmptyInput = errors.New("input is empty")
	// ErrTooLarge is returned when a file exceeds MaxFileBytes.
	ErrTooLarge = errors.New("input is too large")
)

var (
	spaceRunRe  = regexp.MustCompile(`[ \t]+`)
	blankRunsRe = regexp.MustCompile(`\n{3,}`)
)

// NormalizeText converts line endings to LF, strips NUL bytes, collapses runs
// of spaces and tabs, keeps at most one blank line in a row, and trims.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\x00", "")
	s = spaceRunRe.ReplaceAllString(s, " ")
	s = blankRunsRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Format is the detected format of an input file.
type Format string

// Supported input formats.
const (
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// Document is a normalized input ready for structuring.
type Document struct {
	Filename string
	Format   Format
	Text     string
	Hash     string
}

// LoadFile reads path and returns its normalized text. Files ending in .html
// or .htm are converted with HTMLToText first; everything else is read as
// plain text.
func LoadFile(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() > MaxFileBytes {
		return nil, fmt.Errorf("%s: %w (max %d bytes)", path, ErrTooLarge, MaxFileBytes)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	doc := &Document{Filename: filepath.Base(path), Format: FormatText}
	text := string(content)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		doc.Format = FormatHTML
		text, err = HTMLToText(text, "")
		if err != nil {
			return nil, err
		}
	}

	doc.Text = NormalizeText(text)
	if doc.Text == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyInput)
	}
	doc.Hash = ContentHash(doc.Text)
	return doc, nil
}

// ContentHash returns the hex SHA-256 of the given parts joined by newlines.
func ContentHash(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\n")))
	return hex.EncodeToString(sum[:])
}
