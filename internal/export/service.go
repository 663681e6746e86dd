package export

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/smartdept/budget/internal/expense"
)

// Item represents a single exported expense with its local receipt path.
type Item struct {
	Expense  *expense.Expense
	FilePath string
}

// Service handles the export of expenses and their receipt files.
type Service struct {
	expenses *expense.Service
	client   *http.Client
}

// NewService creates a new export Service.
func NewService(expService *expense.Service) *Service {
	return &Service{
		expenses: expService,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Export downloads receipts for expenses matching the filter to the output directory.
// It returns a list of items linking expenses to their downloaded files.
func (s *Service) Export(ctx context.Context, filter expense.ListFilter, outputDir string) ([]Item, error) {
	expenses, err := s.expenses.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	items := make([]Item, 0, len(expenses))

	for _, e := range expenses {
		item := Item{
			Expense: e,
		}

		if e.ReceiptURL != nil && *e.ReceiptURL != "" {
			path, err := s.downloadReceipt(ctx, e, outputDir)
			if err != nil {
				return nil, fmt.Errorf("downloading receipt for expense %s: %w", e.ID, err)
			}

			item.FilePath = path
		}

		items = append(items, item)
	}

	return items, nil
}

func (s *Service) downloadReceipt(ctx context.Context, e *expense.Expense, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, *e.ReceiptURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d for url %s", resp.StatusCode, *e.ReceiptURL)
	}

	filename := s.determineFilename(resp, e)
	path := filepath.Join(dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}

	return path, nil
}

func (s *Service) determineFilename(resp *http.Response, e *expense.Expense) string {
	// 1. Try to get filename from Content-Disposition header.
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if filename, ok := params["filename"]; ok && filename != "" {
				// Basic sanitization of the filename from the server
				return strings.ReplaceAll(filepath.Base(filename), " ", "_")
			}
		}
	}

	// 2. Fallback: Generate a name from expense details.
	ext := ".pdf" // Default assumption

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if exts, _ := mime.ExtensionsByType(ct); len(exts) > 0 {
			ext = exts[0]
		}
	}

	// Sanitize description for use in filename
	safeDesc := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}

		return '_'
	}, e.Description)

	// Format: YYYYMMDD_Description.ext
	return fmt.Sprintf("%s_%s%s", e.Date.Format("20060102"), safeDesc, ext)
}

// GenerateManifest creates a plain-text manifest listing the exported items.
func (s *Service) GenerateManifest(items []Item) string {
	var sb strings.Builder

	for _, item := range items {
		date := item.Expense.Date.Format("2006-01-02")
		desc := item.Expense.Description
		vendor := item.Expense.Vendor

		fileStatus := "no receipt"
		if item.FilePath != "" {
			fileStatus = filepath.Base(item.FilePath)
		}

		sb.WriteString(fmt.Sprintf("* %s | %s | %s | %s | %s\n",
			date, desc, vendor, item.Expense.Amount.StringFixed(2), fileStatus))
	}

	return sb.String()
}
