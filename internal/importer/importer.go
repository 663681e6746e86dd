package importer

import (
	"io"

	"github.com/smartdept/budget/internal/expense"
)

// Source identifies which external system produced the uploaded file.
type Source string

const SourceProcurement Source = "procurement"

// Parser turns an uploaded file into expense params. Category and
// submitter are not part of the file; the caller attaches them before
// submission.
type Parser interface {
	Parse(r io.Reader) ([]expense.CreateParams, error)
}
