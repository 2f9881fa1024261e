// Package export writes recruiter reports.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"hireflow/internal/domain/application"
	"hireflow/internal/domain/job"
)

const (
	SummarySheet    = "Summary"
	ApplicantsSheet = "Applicants"

	headerColor = "4472C4"
	strongColor = "C6EFCE"
	fairColor   = "FFEB9C"
	weakColor   = "FFC7CE"
)

// Score bands match the recruiter applicant view.
const (
	StrongScore = 85
	FairScore   = 70
)

var applicantHeaders = []any{"Rank", "Name", "Email", "Score", "Status", "Analysis", "Applied At"}

// Ranked orders applications by score, highest first. Unscored applications
// keep their relative order at the end.
func Ranked(apps []application.Application) []application.Application {
	out := append([]application.Application(nil), apps...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Score, out[j].Score
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
	return out
}

// WriteApplicants writes the applicant report for one job as xlsx.
func WriteApplicants(w io.Writer, j job.Job, apps []application.Application, now time.Time) error {
	f, err := build(j, apps, now)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveApplicants writes the report to path, adding the .xlsx extension when
// missing, and returns the path written.
func SaveApplicants(path string, j job.Job, apps []application.Application, now time.Time) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	if err := WriteApplicants(out, j, apps, now); err != nil {
		_ = out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close report: %w", err)
	}
	return path, nil
}

func build(j job.Job, apps []application.Application, now time.Time) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(ApplicantsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("add sheet: %w", err)
	}
	ranked := Ranked(apps)
	if err := writeSummary(f, j, ranked, now); err != nil {
		f.Close()
		return nil, fmt.Errorf("summary sheet: %w", err)
	}
	if err := writeApplicants(f, ranked); err != nil {
		f.Close()
		return nil, fmt.Errorf("applicants sheet: %w", err)
	}
	return f, nil
}

func writeSummary(f *excelize.File, j job.Job, apps []application.Application, now time.Time) error {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	if err := f.SetColWidth(SummarySheet, "A", "A", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(SummarySheet, "B", "B", 48); err != nil {
		return err
	}

	var scored, strong, fair, weak int
	var total float64
	for _, a := range apps {
		if a.Score == nil {
			continue
		}
		scored++
		total += *a.Score
		switch band(*a.Score) {
		case strongColor:
			strong++
		case fairColor:
			fair++
		default:
			weak++
		}
	}
	average := "n/a"
	if scored > 0 {
		average = fmt.Sprintf("%.1f", total/float64(scored))
	}

	rows := [][]any{
		{"Applicant Report"},
		{},
		{"Job Title:", j.Title},
		{"Company:", j.Company},
		{"Status:", string(j.EffectiveStatus())},
		{"Generated:", now.Format("2006-01-02 15:04:05")},
		{"Applicants:", len(apps)},
		{"Scored:", scored},
		{"Average Score:", average},
		{fmt.Sprintf("Strong (%d+):", StrongScore), strong},
		{fmt.Sprintf("Fair (%d-%d):", FairScore, StrongScore-1), fair},
		{fmt.Sprintf("Weak (<%d):", FairScore), weak},
	}
	counts := countByStatus(apps)
	for _, status := range application.Statuses() {
		label := status.Label(application.AudienceRecruiter)
		rows = append(rows, []any{"Status " + label + ":", counts[label]})
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.MergeCell(SummarySheet, "A1", "B1"); err != nil {
		return err
	}
	return f.SetCellStyle(SummarySheet, "A1", "B1", header)
}

func countByStatus(apps []application.Application) map[string]int {
	counts := make(map[string]int)
	for _, a := range apps {
		status := a.Status.Normalize()
		if status == "" {
			status = application.StatusPending
		}
		counts[status.Label(application.AudienceRecruiter)]++
	}
	return counts
}

func writeApplicants(f *excelize.File, apps []application.Application) error {
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	styles := make(map[string]int, 3)
	for _, color := range []string{strongColor, fairColor, weakColor} {
		id, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		})
		if err != nil {
			return err
		}
		styles[color] = id
	}

	widths := map[string]float64{"A": 8, "B": 24, "C": 28, "D": 10, "E": 14, "F": 60, "G": 20}
	for col, width := range widths {
		if err := f.SetColWidth(ApplicantsSheet, col, col, width); err != nil {
			return err
		}
	}
	if err := f.SetSheetRow(ApplicantsSheet, "A1", &applicantHeaders); err != nil {
		return err
	}
	if err := f.SetCellStyle(ApplicantsSheet, "A1", "G1", header); err != nil {
		return err
	}

	for i, a := range apps {
		row := i + 2
		status := a.Status.Normalize()
		if status == "" {
			status = application.StatusPending
		}
		score := any("")
		if a.Score != nil {
			score = *a.Score
		}
		applied := a.AppliedAt
		if applied == "" {
			applied = a.CreatedAt
		}
		values := []any{i + 1, a.Name, a.Email, score, status.Label(application.AudienceRecruiter), a.AnalysisSummary, applied}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(ApplicantsSheet, cell, &values); err != nil {
			return err
		}
		if a.Score == nil {
			continue
		}
		last, _ := excelize.CoordinatesToCellName(len(applicantHeaders), row)
		if err := f.SetCellStyle(ApplicantsSheet, cell, last, styles[band(*a.Score)]); err != nil {
			return err
		}
	}

	if len(apps) > 0 {
		ref := fmt.Sprintf("A1:G%d", len(apps)+1)
		if err := f.AutoFilter(ApplicantsSheet, ref, nil); err != nil {
			return err
		}
	}
	return f.SetPanes(ApplicantsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func band(score float64) string {
	switch {
	case score >= StrongScore:
		return strongColor
	case score >= FairScore:
		return fairColor
	default:
		return weakColor
	}
}
