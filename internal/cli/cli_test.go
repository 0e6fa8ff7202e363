package cli_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"regnify/internal/cli"
	"regnify/internal/domain"
	"regnify/internal/export"
	"regnify/internal/service"
	"regnify/internal/validator"
	"regnify/mocks"
)

func init() {
	color.NoColor = true
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSubmissions_JSONArray(t *testing.T) {
	path := writeFile(t, "batch.json", `[
		{"invoice_number":"1234567890","doc_date":"2025-06-01","pro_date":"2025-06-02","sender":"Acme GmbH","receiver":"B","jurisdiction":"germany"},
		{"invoice_number":"FR42","doc_date":"2025-06-01","pro_date":"2025-06-01","sender":"S","receiver":"R","jurisdiction":"FRANCE","file_name":"a.pdf"}
	]`)

	subs, err := cli.LoadSubmissions(path)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, domain.JurisdictionGermany, subs[0].Jurisdiction)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), subs[0].ProcessingDate)
	require.NotNil(t, subs[1].File)
	assert.Equal(t, "a.pdf", subs[1].File.Name)
}

func TestLoadSubmissions_SingleObject(t *testing.T) {
	path := writeFile(t, "one.json", `{"invoice_number":"X1","doc_date":"2025-01-01","pro_date":"2025-01-01","sender":"S","receiver":"R"}`)

	subs, err := cli.LoadSubmissions(path)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Empty(t, subs[0].Jurisdiction)
}

func TestLoadSubmissions_Errors(t *testing.T) {
	_, err := cli.LoadSubmissions(writeFile(t, "bad.json", `[{"invoice_number":"X1","doc_date":"01.01.2025"}]`))
	assert.Error(t, err)

	_, err = cli.LoadSubmissions(writeFile(t, "bad-j.json", `[{"invoice_number":"X1","jurisdiction":"ATLANTIS"}]`))
	assert.ErrorIs(t, err, domain.ErrInvalidJurisdiction)

	_, err = cli.LoadSubmissions(writeFile(t, "in.txt", "nope"))
	assert.Error(t, err)
}

func TestLoadSubmissions_XLSXExport(t *testing.T) {
	w, err := export.NewXLSXWriter()
	require.NoError(t, err)
	require.NoError(t, w.WriteHeader())
	de := domain.JurisdictionGermany
	require.NoError(t, w.WriteInvoices([]domain.Invoice{{
		InvoiceNumber:  "1234567890",
		DocumentDate:   time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		ProcessingDate: time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC),
		Sender:         "Acme GmbH",
		Receiver:       "Buyer",
		Jurisdiction:   &de,
		DocumentType:   domain.DocumentTypeInvoice,
	}}))
	var buf bytes.Buffer
	_, err = w.WriteTo(&buf)
	require.NoError(t, err)

	path := writeFile(t, "export.xlsx", buf.String())
	subs, err := cli.LoadSubmissions(path)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "1234567890", subs[0].InvoiceNumber)
	assert.Equal(t, domain.JurisdictionGermany, subs[0].Jurisdiction)
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), subs[0].DocumentDate)
}

func TestValidateCmd_AllPass(t *testing.T) {
	path := writeFile(t, "ok.json", `[{"invoice_number":"UK12345678","doc_date":"2025-06-01","pro_date":"2025-06-02","sender":"S","receiver":"R","jurisdiction":"UK"}]`)

	cmd := cli.ValidateCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path, "--today", "2025-06-15"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "UK12345678")
	assert.Contains(t, out.String(), "PASS")
	assert.Contains(t, out.String(), "100")
}

func TestValidateCmd_ReportsFailures(t *testing.T) {
	path := writeFile(t, "mixed.json", `[
		{"invoice_number":"12345","doc_date":"2025-06-01","pro_date":"2025-06-02","sender":"Acme","receiver":"R","jurisdiction":"GERMANY"},
		{"invoice_number":"NODATE","sender":"S","receiver":"R"}
	]`)

	cmd := cli.ValidateCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path, "--today", "2025-06-15"})

	err := cmd.Execute()
	assert.ErrorIs(t, err, cli.ErrValidationFailed)
	assert.Contains(t, out.String(), "FAIL")
	assert.Contains(t, out.String(), "German companies must end with GmbH, AG or KG")
	assert.Contains(t, out.String(), "ERROR")
}

func TestValidateCmd_ExtraRules(t *testing.T) {
	rules := writeFile(t, "rules.json", `[{"key":"fmt.at.invoice_number","jurisdiction":"austria","message":"Austrian invoices must start with AT","expression":"invoice_number.startsWith(\"AT\")"}]`)
	path := writeFile(t, "at.json", `[{"invoice_number":"X9","doc_date":"2025-06-01","pro_date":"2025-06-01","sender":"S","receiver":"R","jurisdiction":"AUSTRIA"}]`)

	cmd := cli.ValidateCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path, "--rules", rules, "--today", "2025-06-15", "--json"})

	err := cmd.Execute()
	assert.ErrorIs(t, err, cli.ErrValidationFailed)
	assert.Contains(t, out.String(), "Austrian invoices must start with AT")
	assert.Contains(t, out.String(), `"score": 90`)
}

func TestWriteResults(t *testing.T) {
	registry, err := validator.NewRegistry()
	require.NoError(t, err)
	engine := validator.NewEngine(registry, validator.WithClock(func() time.Time {
		return time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	}))
	subs, err := cli.LoadSubmissions(writeFile(t, "s.json", `{"invoice_number":"FRX","doc_date":"2025-06-01","pro_date":"2025-06-01","sender":"","receiver":"R","jurisdiction":"FRANCE"}`))
	require.NoError(t, err)

	results := cli.Evaluate(t.Context(), engine, subs)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Outcome)
	assert.Equal(t, 75, results[0].Outcome.Score())

	var out bytes.Buffer
	require.NoError(t, cli.WriteResults(&out, results))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "INVOICE"))
	assert.Contains(t, lines[1], "Sender is required; French invoices must start with 'FR' followed by numbers")
}

func TestWriteResults_ColourKeepsColumnsAligned(t *testing.T) {
	passed := validator.NewOutcome(nil)
	results := []cli.Result{
		{InvoiceNumber: "UK12345678", Outcome: &passed},
		{InvoiceNumber: "X", Error: "document date and processing date are required"},
	}

	var plain bytes.Buffer
	require.NoError(t, cli.WriteResults(&plain, results))

	color.NoColor = false
	t.Cleanup(func() { color.NoColor = true })
	var coloured bytes.Buffer
	require.NoError(t, cli.WriteResults(&coloured, results))

	assert.Contains(t, coloured.String(), "\x1b[")
	ansi := regexp.MustCompile(`\x1b\[[0-9;]*m`)
	assert.Equal(t, plain.String(), ansi.ReplaceAllString(coloured.String(), ""))
}

func TestValidateCmd_NumberIsNotTrimmed(t *testing.T) {
	path := writeFile(t, "padded.json", `[{"invoice_number":" FR123","doc_date":"2025-06-01","pro_date":"2025-06-01","sender":"S","receiver":"R","jurisdiction":"france"}]`)

	cmd := cli.ValidateCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path, "--today", "2025-06-15"})

	err := cmd.Execute()
	assert.ErrorIs(t, err, cli.ErrValidationFailed)
	assert.Contains(t, out.String(), "French invoices must start with 'FR' followed by numbers")
}

func TestRulesCmd(t *testing.T) {
	cmd := cli.RulesCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--jurisdiction", "spain"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "fmt.es.invoice_number")
	assert.NotContains(t, out.String(), "fmt.de.")

	cmd = cli.RulesCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--jurisdiction", "mars"})
	assert.ErrorIs(t, cmd.Execute(), domain.ErrInvalidJurisdiction)
}

func TestRevalidate(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	ok, missing := uuid.New(), uuid.New()

	svc.On("Revalidate", mock.Anything, ok).Return(&service.InvoiceResult{
		Invoice:    &domain.Invoice{ID: ok, InvoiceNumber: "UK12345678", Status: domain.ProcessingComplete},
		Validation: validator.NewOutcome(nil),
	}, nil)
	svc.On("Revalidate", mock.Anything, missing).Return(nil, domain.ErrInvoiceNotFound)

	var out bytes.Buffer
	err := cli.Revalidate(t.Context(), svc, []uuid.UUID{ok, missing}, &out)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Contains(t, out.String(), "OK UK12345678 COMPLETE score=100")
	assert.Contains(t, out.String(), "ERROR "+missing.String())
	assert.False(t, errors.Is(err, cli.ErrValidationFailed))
	svc.AssertExpectations(t)
}
