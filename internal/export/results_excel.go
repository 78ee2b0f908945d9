package export

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/hearthside/homeschool-hub/internal/models"
)

type SheetSpec struct {
	Title  string
	Header []string
	Rows   [][]string
}

type ResultsWorkbook struct {
	File *excelize.File
}

func (w *ResultsWorkbook) Write(dst io.Writer) error { return w.File.Write(dst) }

// BuildResultsWorkbook — книга для админа: лист всех попыток плюс сводка
// по ученикам (средний и лучший процент).
func BuildResultsWorkbook(results []models.QuizResult) (*ResultsWorkbook, error) {
	attempts := SheetSpec{
		Title:  "Attempts",
		Header: []string{"Date", "Student", "Email", "Quiz", "Score", "Total", "Percent"},
	}
	for _, r := range results {
		attempts.Rows = append(attempts.Rows, []string{
			r.Timestamp.Format("2006-01-02 15:04"),
			r.UserName,
			r.UserEmail,
			r.QuizTitle,
			strconv.Itoa(r.Score),
			strconv.Itoa(r.Total),
			strconv.Itoa(r.Percentage) + "%",
		})
	}

	type agg struct {
		name     string
		attempts int
		sum      int
		best     int
	}
	byStudent := make(map[string]*agg)
	for _, r := range results {
		a, ok := byStudent[r.UserEmail]
		if !ok {
			a = &agg{name: r.UserName}
			byStudent[r.UserEmail] = a
		}
		a.attempts++
		a.sum += r.Percentage
		if r.Percentage > a.best {
			a.best = r.Percentage
		}
	}
	emails := make([]string, 0, len(byStudent))
	for e := range byStudent {
		emails = append(emails, e)
	}
	sort.Strings(emails)

	summary := SheetSpec{
		Title:  "Summary",
		Header: []string{"Student", "Email", "Attempts", "Average", "Best"},
	}
	for _, e := range emails {
		a := byStudent[e]
		summary.Rows = append(summary.Rows, []string{
			a.name,
			e,
			strconv.Itoa(a.attempts),
			strconv.Itoa(a.sum/a.attempts) + "%",
			strconv.Itoa(a.best) + "%",
		})
	}

	return newWorkbook([]SheetSpec{attempts, summary})
}

func newWorkbook(sheets []SheetSpec) (*ResultsWorkbook, error) {
	f := excelize.NewFile()

	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	// автофильтр только в первой строке
	for i, s := range sheets {
		name := s.Title
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return nil, fmt.Errorf("new sheet: %w", err)
			}
		}
		// заголовки
		for col, h := range s.Header {
			cell := fmt.Sprintf("%s1", colName(col+1))
			if err := f.SetCellStr(name, cell, h); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
		// стиль заголовков + автофильтр
		end := colName(len(s.Header)) + "1"
		_ = f.SetCellStyle(name, "A1", end, bold)
		_ = f.AutoFilter(name, "A1:"+end, nil)

		// строки
		for r, row := range s.Rows {
			for c, val := range row {
				cell := fmt.Sprintf("%s%d", colName(c+1), r+2)
				if err := f.SetCellStr(name, cell, val); err != nil {
					return nil, fmt.Errorf("set cell %s: %w", cell, err)
				}
			}
		}
		// эвристическая ширина: по длине заголовка и первых строк
		for c := 1; c <= len(s.Header); c++ {
			maxim := len(s.Header[c-1])
			for r := 0; r < minim(50, len(s.Rows)); r++ {
				if l := len(s.Rows[r][c-1]); l > maxim {
					maxim = l
				}
			}
			w := float64(maxim) * 0.9
			if w < 12 {
				w = 12
			}
			if w > 40 {
				w = 40
			}
			_ = f.SetColWidth(name, colName(c), colName(c), w)
		}
	}
	return &ResultsWorkbook{File: f}, nil
}

// helpers
func colName(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}

func minim(a, b int) int {
	if a < b {
		return a
	}
	return b
}
