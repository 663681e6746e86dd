package procurement_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/smartdept/budget/internal/expense"
	"github.com/smartdept/budget/internal/importer/procurement"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestParser_Standard(t *testing.T) {
	csv := `Department Procurement Register,2024-2025
Generated,2024-06-01

Date,Description,Vendor,Amount,Activity
2024-04-12,Lab router replacement,NetServe Solutions,"24,500.00",Infrastructure
2024-04-15,MATLAB campus licence,MathWorks India,"1,05,000.00",Software
`

	p := procurement.NewParser()
	rows, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, date(2024, 4, 12), rows[0].Date)
	assert.Equal(t, "Lab router replacement", rows[0].Description)
	assert.Equal(t, "NetServe Solutions", rows[0].Vendor)
	assert.Equal(t, "24500", rows[0].Amount.String())
	assert.Equal(t, expense.ActivityInfrastructure, rows[0].ActivityType)

	assert.Equal(t, date(2024, 4, 15), rows[1].Date)
	assert.Equal(t, "105000", rows[1].Amount.String())
	assert.Equal(t, expense.ActivitySoftware, rows[1].ActivityType)
}

func TestParser_DifferentColumnOrder(t *testing.T) {
	csv := `Amount,Vendor,Date,Description,Ignored
500.00,Stationers Guild,2024-05-01,Marker pens,XXX
`

	p := procurement.NewParser()
	rows, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "Marker pens", rows[0].Description)
	assert.Equal(t, "500", rows[0].Amount.String())
}

func TestParser_MissingActivityColumn(t *testing.T) {
	csv := `Date,Description,Vendor,Amount
15/05/2024,Guest lecture honorarium,Dr. Rao,2500.00
`

	p := procurement.NewParser()
	rows, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, date(2024, 5, 15), rows[0].Date)
	assert.Equal(t, expense.ActivityMisc, rows[0].ActivityType)
}

func TestParser_UnknownActivityFallsBackToMisc(t *testing.T) {
	csv := `Date,Description,Vendor,Amount,Activity
2024-05-15,Team outing,Caterer,2500.00,Recreation
`

	p := procurement.NewParser()
	rows, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, expense.ActivityMisc, rows[0].ActivityType)
}

func TestParser_ActivityWithSpaces(t *testing.T) {
	csv := `Date,Description,Vendor,Amount,Activity
2024-05-15,Industry keynote,Speaker Bureau,7500.00,Expert Talk
`

	p := procurement.NewParser()
	rows, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, expense.ActivityExpertTalk, rows[0].ActivityType)
}

func TestParser_Windows1252Encoding(t *testing.T) {
	utf8CSV := "Date,Description,Vendor,Amount\n2024-05-01,Café supplies,Café Méridien,350.00\n"

	encoder := charmap.Windows1252.NewEncoder()
	raw, err := encoder.Bytes([]byte(utf8CSV))
	require.NoError(t, err)

	p := procurement.NewParser()
	rows, err := p.Parse(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "Café Méridien", rows[0].Vendor)
}

func TestParser_RupeeSymbolAmount(t *testing.T) {
	csv := "Date,Description,Vendor,Amount\n2024-05-01,Printer toner,OfficeMart,\"₹2,500.50\"\n"

	p := procurement.NewParser()
	rows, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "2500.5", rows[0].Amount.String())
}

func TestParser_EmptyFile(t *testing.T) {
	p := procurement.NewParser()
	_, err := p.Parse(strings.NewReader(""))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}

func TestParser_HeaderOnly(t *testing.T) {
	csv := `Date,Description,Vendor,Amount,Activity`

	p := procurement.NewParser()
	rows, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParser_MissingDescription(t *testing.T) {
	csv := `Date,Description,Vendor,Amount
2024-05-01,,OfficeMart,100.00
`

	p := procurement.NewParser()
	_, err := p.Parse(strings.NewReader(csv))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "description")
}

func TestParser_InvalidAmount(t *testing.T) {
	csv := `Date,Description,Vendor,Amount
2024-05-01,Printer toner,OfficeMart,not-a-number
`

	p := procurement.NewParser()
	_, err := p.Parse(strings.NewReader(csv))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "amount")
}

func TestParser_SkipsFooterRows(t *testing.T) {
	csv := `Date,Description,Vendor,Amount
2024-05-01,Printer toner,OfficeMart,100.00
Total,,,100.00
`

	p := procurement.NewParser()
	rows, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
