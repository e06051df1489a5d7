// Package export renders access results for the console and writes the
// JSON and CSV report files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/kurihiro0119/github-org-repo-access/internal/domain"
)

const (
	// JSONFileName is the report written by --json
	JSONFileName = "github_org_repo_access.json"
	// CSVFileName is the report written by --csv
	CSVFileName = "github_org_repo_access.csv"

	loginSeparator = ";"
)

// csvBool spells booleans the way existing consumers of the CSV report expect
var csvBool = map[bool]string{true: "True", false: "False"}

// Options controls which optional columns are rendered
type Options struct {
	IncludeMaintainers bool
}

// WriteJSON writes results as a JSON array indented with two spaces
func WriteJSON(w io.Writer, results domain.ResultSet) error {
	if results == nil {
		results = domain.ResultSet{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}

// CSVHeader returns the header row of the CSV report
func CSVHeader(opts Options) []string {
	header := []string{"repo", "org", "admins", "private"}
	if opts.IncludeMaintainers {
		header = append(header, "maintainers")
	}
	return header
}

// CSVRecord flattens one result into a CSV row. Admin logins are joined
// with ";"; names and emails are dropped. The private column is True or False.
func CSVRecord(result domain.AccessResult, opts Options) []string {
	record := []string{
		result.Name,
		result.Org,
		strings.Join(domain.Logins(result.Admins), loginSeparator),
		csvBool[result.Private],
	}
	if opts.IncludeMaintainers {
		record = append(record, strings.Join(domain.Logins(result.Maintainers), loginSeparator))
	}
	return record
}

// WriteCSV writes results as CSV with a header row
func WriteCSV(w io.Writer, results domain.ResultSet, opts Options) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader(opts)); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := cw.Write(CSVRecord(result, opts)); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", result.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTable renders results as a table, one row per admin. Only the
// org/repo column is merged: tablewriter compares each merged column with
// the row above on its own, so merging repo names or visibility would join
// unrelated repositories.
func WriteTable(w io.Writer, results domain.ResultSet, opts Options) {
	header := []string{"Repository", "Private", "Role", "Login", "Name", "Email"}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoMergeCellsByColumnIndex([]int{0})
	table.SetRowLine(true)

	for _, result := range results {
		rows := summaryRows(result, "admin", result.Admins)
		if opts.IncludeMaintainers {
			rows = append(rows, summaryRows(result, "maintain", result.Maintainers)...)
		}
		if len(rows) == 0 {
			rows = append(rows, []string{repositoryKey(result), strconv.FormatBool(result.Private), "-", "-", "-", "-"})
		}
		table.AppendBulk(rows)
	}
	table.Render()
}

func summaryRows(result domain.AccessResult, role string, summaries []domain.CollaboratorSummary) [][]string {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			repositoryKey(result),
			strconv.FormatBool(result.Private),
			role,
			s.Login,
			valueOrDash(s.Name),
			valueOrDash(s.Email),
		})
	}
	return rows
}

func repositoryKey(result domain.AccessResult) string {
	return result.Org + "/" + result.Name
}

func valueOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

// ExportJSONFile writes the JSON report to path, replacing any existing file
func ExportJSONFile(path string, results domain.ResultSet) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteJSON(w, results)
	})
}

// ExportCSVFile writes the CSV report to path, replacing any existing file
func ExportCSVFile(path string, results domain.ResultSet, opts Options) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteCSV(w, results, opts)
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
