// Package excel imports word lists from .xlsx workbooks into the word
// catalog.
package excel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/ruslan-korneev/lingooru-sub001/internal/review"
	"github.com/ruslan-korneev/lingooru-sub001/pkg/models"
)

// ImportConfig defines one import run. Column layout: A = word text,
// B = phonetic transcription (optional).
type ImportConfig struct {
	FilePath  string
	SheetName string
	Language  models.Language
	// EnrollUserID, when non-zero, adds every imported word to this user's
	// review queue (due immediately).
	EnrollUserID int64
	// StartRow is the first data row, 1-based. Defaults to 2 (skip header).
	StartRow int
}

// DefaultImportConfig returns the usual single-sheet, skip-header layout.
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		SheetName: "Sheet1",
		Language:  models.LanguageEN,
		StartRow:  2,
	}
}

// ImportResult summarizes an import run.
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int // already present
	Enrolled       int
	Errors         []string
}

// Importer writes imported words through the store contracts, so it works
// against the relational store and the in-memory one alike.
type Importer struct {
	words   review.WordStore
	records review.LearningStore
	log     *logrus.Logger
}

// NewImporter creates an importer. logger may be nil to use the logrus
// standard logger.
func NewImporter(words review.WordStore, records review.LearningStore, logger *logrus.Logger) *Importer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Importer{words: words, records: records, log: logger}
}

// ImportWords reads the configured sheet and inserts every word not yet in
// the catalog. Row-level problems are collected in the result, not fatal.
func (imp *Importer) ImportWords(ctx context.Context, cfg ImportConfig) (*ImportResult, error) {
	if cfg.SheetName == "" {
		cfg.SheetName = "Sheet1"
	}
	if cfg.StartRow < 1 {
		cfg.StartRow = 2
	}
	if cfg.Language == "" {
		return nil, fmt.Errorf("import language is required")
	}

	f, err := excelize.OpenFile(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(cfg.SheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", cfg.SheetName, err)
	}

	result := &ImportResult{}
	for i, row := range rows {
		if i < cfg.StartRow-1 {
			continue
		}
		result.TotalProcessed++
		if err := imp.importRow(ctx, cfg, row, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
		}
	}

	imp.log.WithFields(logrus.Fields{
		"file":     cfg.FilePath,
		"created":  result.Created,
		"skipped":  result.Skipped,
		"enrolled": result.Enrolled,
		"errors":   len(result.Errors),
	}).Info("word list imported")

	return result, nil
}

func (imp *Importer) importRow(ctx context.Context, cfg ImportConfig, row []string, result *ImportResult) error {
	text := columnValue(row, 0)
	if text == "" {
		return fmt.Errorf("empty word text")
	}
	phonetic := columnValue(row, 1)

	word, err := imp.words.FindWord(ctx, text, cfg.Language)
	switch {
	case err == nil:
		result.Skipped++
	case errors.Is(err, review.ErrWordNotFound):
		word = &models.Word{
			Text:      text,
			Language:  cfg.Language,
			Phonetic:  phonetic,
			CreatedAt: time.Now().UTC(),
		}
		if err := imp.words.CreateWord(ctx, word); err != nil {
			return fmt.Errorf("create word %q: %w", text, err)
		}
		result.Created++
	default:
		return fmt.Errorf("look up word %q: %w", text, err)
	}

	if cfg.EnrollUserID != 0 {
		if _, err := imp.records.UpsertOnFirstExposure(ctx, cfg.EnrollUserID, word.ID, time.Now().UTC()); err != nil {
			return fmt.Errorf("enroll word %q: %w", text, err)
		}
		result.Enrolled++
	}
	return nil
}

func columnValue(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
