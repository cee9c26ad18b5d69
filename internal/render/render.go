// Package render turns query rows into the plain-text report lines.
package render

import (
	"fmt"
	"math"
	"strconv"

	"github.com/iWorld-y/log_analysis/internal/domain"
)

// Render validates req and renders rows in store order.
// Ranking reports are numbered from 1 and show at most req.Limit lines when
// req.Limit > 0.
func Render(req domain.Request, rows []domain.Row) (domain.Report, error) {
	if err := req.Validate(); err != nil {
		return domain.Report{}, err
	}

	report := domain.Report{Kind: req.Kind, Header: Header(req)}

	if !req.Kind.Ranking() {
		report.Lines = make([]string, 0, len(rows))
		for _, row := range rows {
			report.Lines = append(report.Lines, fmt.Sprintf("%s - %s%% errors", row.Label, FormatPercent(row.Percent)))
		}
		return report, nil
	}

	n := len(rows)
	if req.Limit > 0 && req.Limit < n {
		n = req.Limit
	}
	report.Lines = make([]string, 0, n)
	for i, row := range rows[:n] {
		var line string
		if req.Kind == domain.TopArticles {
			line = fmt.Sprintf("%d. \"%s\" - %d views", i+1, row.Label, row.Views)
		} else {
			line = fmt.Sprintf("%d. %s - %d views", i+1, row.Label, row.Views)
		}
		report.Lines = append(report.Lines, line)
	}
	return report, nil
}

// Header names the report and the effective limit or threshold.
func Header(req domain.Request) string {
	switch req.Kind {
	case domain.TopArticles:
		return rankingHeader("articles", req.Limit)
	case domain.TopAuthors:
		return rankingHeader("authors", req.Limit)
	default:
		return fmt.Sprintf("Days when more than %s%% of requests lead to errors:",
			strconv.FormatFloat(req.Threshold, 'f', -1, 64))
	}
}

func rankingHeader(noun string, limit int) string {
	if limit == 0 {
		return fmt.Sprintf("The most popular %s of all time:", noun)
	}
	return fmt.Sprintf("The most popular %d %s of all time:", limit, noun)
}

// FormatPercent rounds half away from zero to one decimal place, so 2.25
// renders as "2.3" and 2 as "2.0".
func FormatPercent(p float64) string {
	return strconv.FormatFloat(math.Round(p*10)/10, 'f', 1, 64)
}
