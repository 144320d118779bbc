package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arnavshah/duty-rotation-go/pkg/models"
)

// Format is an output file extension
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
)

// Exporter writes schedules into a directory using the rotation file naming
type Exporter struct {
	Dir        string
	Prefix     string
	MonthNames [12]string
}

// MonthToken formats a date as e.g. "mei_2026" or "nov_2026". Month names
// longer than five letters are cut to three.
func (e Exporter) MonthToken(d time.Time) string {
	month := strings.ToLower(e.MonthNames[d.Month()-1])
	if len([]rune(month)) > 5 {
		month = string([]rune(month)[:3])
	}
	return fmt.Sprintf("%s_%d", month, d.Year())
}

// FileName returns <prefix>_<first>_tot_<last>.<format>
func (e Exporter) FileName(first, last time.Time, f Format) string {
	return fmt.Sprintf("%s_%s_tot_%s.%s", e.Prefix, e.MonthToken(first), e.MonthToken(last), f)
}

// weekdayNames are the Afrikaans weekday names used for the date column
var weekdayNames = [7]string{"sondag", "maandag", "dinsdag", "woensdag", "donderdag", "vrydag", "saterdag"}

// Header returns the CSV header for shifts of size n held on wd, e.g.
// "sondag_datum,diaken_1,..."
func Header(wd time.Weekday, n int) []string {
	h := []string{weekdayNames[wd] + "_datum"}
	for i := 1; i <= n; i++ {
		h = append(h, fmt.Sprintf("diaken_%d", i))
	}
	return h
}

// WriteCSV writes one row per shift: the date followed by the members in order
func WriteCSV(w io.Writer, schedule models.Schedule) error {
	width := 0
	for _, sh := range schedule {
		if len(sh.Members) > width {
			width = len(sh.Members)
		}
	}

	wd := time.Sunday
	if len(schedule) > 0 {
		wd = schedule.First().Weekday()
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(Header(wd, width)); err != nil {
		return err
	}
	for _, sh := range schedule {
		row := append([]string{sh.Date.Format("2006-01-02")}, sh.Members...)
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Records converts a schedule to its wire form
func Records(schedule models.Schedule) []models.ShiftRecord {
	out := make([]models.ShiftRecord, 0, len(schedule))
	for _, sh := range schedule {
		out = append(out, models.ShiftRecord{
			Date:    sh.Date.Format("2006-01-02"),
			Members: append([]string(nil), sh.Members...),
		})
	}
	return out
}

// SaveCSV writes schedule to Dir and returns the file path. The directory is
// created when missing; an empty schedule writes nothing.
func (e Exporter) SaveCSV(schedule models.Schedule) (string, error) {
	if len(schedule) == 0 {
		return "", fmt.Errorf("export: empty schedule")
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(e.Dir, e.FileName(schedule.First(), schedule.Last(), CSV))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := WriteCSV(f, schedule); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
