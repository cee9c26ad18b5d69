package usecase

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/log_analysis/internal/domain"
	"github.com/iWorld-y/log_analysis/internal/repo"
)

// mockReportRepo 模拟报表数据源，记录连接、查询和释放次数
type mockReportRepo struct {
	rows    map[domain.Kind][]domain.Row
	openErr error
	// fetchErr 按报表类型注入查询错误
	fetchErr map[domain.Kind]error

	opens   int
	fetches int
	closes  int
	lastCtx context.Context
}

type mockSession struct {
	repo *mockReportRepo
}

func (m *mockReportRepo) Open(ctx context.Context) (repo.Session, error) {
	m.opens++
	if m.openErr != nil {
		return nil, m.openErr
	}
	return &mockSession{repo: m}, nil
}

func (s *mockSession) Fetch(ctx context.Context, req domain.Request) ([]domain.Row, error) {
	s.repo.fetches++
	s.repo.lastCtx = ctx
	if err := s.repo.fetchErr[req.Kind]; err != nil {
		return nil, err
	}
	return s.repo.rows[req.Kind], nil
}

func (s *mockSession) Close() error {
	s.repo.closes++
	return nil
}

func newMockRepo() *mockReportRepo {
	return &mockReportRepo{
		rows: map[domain.Kind][]domain.Row{
			domain.TopArticles: {
				{Label: "Four ways to pass", Views: 5},
				{Label: "Weather", Views: 2},
			},
			domain.TopAuthors: {
				{Label: "Ursula La Multa", Views: 5},
				{Label: "Rudolf von Treppenwitz", Views: 2},
				{Label: "Anonymous Contributor", Views: 0},
			},
			domain.ErrorDays: {
				{Label: "July 17, 2016", Percent: 2.25},
			},
		},
		fetchErr: map[domain.Kind]error{},
	}
}

func TestReportUseCase_Generate(t *testing.T) {
	m := newMockRepo()
	uc := NewReportUseCase(m, 0, log.DefaultLogger)

	report, err := uc.Generate(context.Background(), domain.Request{Kind: domain.TopArticles, Limit: 2})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	want := []string{`1. "Four ways to pass" - 5 views`, `2. "Weather" - 2 views`}
	if !reflect.DeepEqual(report.Lines, want) {
		t.Errorf("Generate() lines = %q, want %q", report.Lines, want)
	}
	if m.opens != 1 || m.fetches != 1 || m.closes != 1 {
		t.Errorf("opens/fetches/closes = %d/%d/%d, want 1/1/1", m.opens, m.fetches, m.closes)
	}
}

func TestReportUseCase_Generate_LimitCapsMockRows(t *testing.T) {
	m := newMockRepo()
	uc := NewReportUseCase(m, 0, log.DefaultLogger)

	report, err := uc.Generate(context.Background(), domain.Request{Kind: domain.TopAuthors, Limit: 1})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(report.Lines) != 1 || report.Lines[0] != "1. Ursula La Multa - 5 views" {
		t.Errorf("Generate() lines = %q", report.Lines)
	}
}

func TestReportUseCase_Generate_ValidationSkipsQuery(t *testing.T) {
	tests := []struct {
		name string
		req  domain.Request
	}{
		{"negative limit", domain.Request{Kind: domain.TopArticles, Limit: -3}},
		{"negative threshold", domain.Request{Kind: domain.ErrorDays, Threshold: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockRepo()
			uc := NewReportUseCase(m, 0, log.DefaultLogger)

			_, err := uc.Generate(context.Background(), tt.req)
			if !domain.IsValidationError(err) {
				t.Fatalf("Generate() error = %v, want ValidationError", err)
			}
			if m.opens != 0 || m.fetches != 0 {
				t.Errorf("opens/fetches = %d/%d, want no store access", m.opens, m.fetches)
			}
		})
	}
}

func TestReportUseCase_Generate_QueryErrorReleasesOnce(t *testing.T) {
	m := newMockRepo()
	m.fetchErr[domain.TopAuthors] = domain.NewQueryError(errors.New("relation \"authors\" does not exist"), "authors report query failed")
	uc := NewReportUseCase(m, 0, log.DefaultLogger)

	_, err := uc.Generate(context.Background(), domain.Request{Kind: domain.TopAuthors, Limit: 3})
	if !domain.IsQueryError(err) {
		t.Fatalf("Generate() error = %v, want QueryError", err)
	}
	if m.closes != 1 {
		t.Errorf("closes = %d, want 1", m.closes)
	}
}

func TestReportUseCase_Generate_ConnectionError(t *testing.T) {
	m := newMockRepo()
	m.openErr = domain.NewConnectionError(errors.New("connection refused"), "unable to connect to %q", "news")
	uc := NewReportUseCase(m, 0, log.DefaultLogger)

	_, err := uc.Generate(context.Background(), domain.Request{Kind: domain.TopArticles})
	if !domain.IsConnectionError(err) {
		t.Fatalf("Generate() error = %v, want ConnectionError", err)
	}
	if m.fetches != 0 || m.closes != 0 {
		t.Errorf("fetches/closes = %d/%d, want 0/0", m.fetches, m.closes)
	}
}

func TestReportUseCase_Generate_QueryTimeout(t *testing.T) {
	m := newMockRepo()
	uc := NewReportUseCase(m, time.Minute, log.DefaultLogger)

	if _, err := uc.Generate(context.Background(), domain.Request{Kind: domain.ErrorDays, Threshold: 1}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if _, ok := m.lastCtx.Deadline(); !ok {
		t.Error("Fetch() context has no deadline with a query timeout configured")
	}
}

func TestReportUseCase_RunAll(t *testing.T) {
	m := newMockRepo()
	uc := NewReportUseCase(m, 0, log.DefaultLogger)

	reqs := []domain.Request{
		{Kind: domain.TopArticles, Limit: 3},
		{Kind: domain.TopAuthors, Limit: 3},
		{Kind: domain.ErrorDays, Threshold: 1},
	}
	var out bytes.Buffer
	if err := uc.RunAll(context.Background(), reqs, &out); err != nil {
		t.Fatalf("RunAll() error = %v", err)
	}

	want := "\nThe most popular 3 articles of all time:\n\n" +
		"1. \"Four ways to pass\" - 5 views\n" +
		"2. \"Weather\" - 2 views\n\n" +
		"\nThe most popular 3 authors of all time:\n\n" +
		"1. Ursula La Multa - 5 views\n" +
		"2. Rudolf von Treppenwitz - 2 views\n" +
		"3. Anonymous Contributor - 0 views\n\n" +
		"\nDays when more than 1% of requests lead to errors:\n\n" +
		"July 17, 2016 - 2.3% errors\n\n"
	if out.String() != want {
		t.Errorf("RunAll() output = %q, want %q", out.String(), want)
	}
	if m.opens != 3 || m.closes != 3 {
		t.Errorf("opens/closes = %d/%d, want one connection per report", m.opens, m.closes)
	}
}

func TestReportUseCase_RunAll_SkipsFailedReports(t *testing.T) {
	m := newMockRepo()
	m.fetchErr[domain.TopAuthors] = domain.NewQueryError(errors.New("boom"), "authors report query failed")
	uc := NewReportUseCase(m, 0, log.DefaultLogger)

	reqs := []domain.Request{
		{Kind: domain.TopArticles, Limit: -1},
		{Kind: domain.TopAuthors, Limit: 3},
		{Kind: domain.ErrorDays, Threshold: 1},
	}
	var out bytes.Buffer
	if err := uc.RunAll(context.Background(), reqs, &out); err != nil {
		t.Fatalf("RunAll() error = %v", err)
	}

	got := out.String()
	if strings.Contains(got, "articles") || strings.Contains(got, "authors") {
		t.Errorf("RunAll() printed a skipped report: %q", got)
	}
	if !strings.Contains(got, "July 17, 2016 - 2.3% errors") {
		t.Errorf("RunAll() output = %q, want the error-days report", got)
	}
	// validation failure never connects; query failure still releases
	if m.opens != 2 || m.closes != 2 {
		t.Errorf("opens/closes = %d/%d, want 2/2", m.opens, m.closes)
	}
}

func TestReportUseCase_RunAll_AbortsOnConnectionError(t *testing.T) {
	m := newMockRepo()
	m.openErr = domain.NewConnectionError(errors.New("no such host"), "unable to connect to %q", "news")
	uc := NewReportUseCase(m, 0, log.DefaultLogger)

	var out bytes.Buffer
	err := uc.RunAll(context.Background(), []domain.Request{
		{Kind: domain.TopArticles, Limit: 3},
		{Kind: domain.TopAuthors, Limit: 3},
	}, &out)
	if !domain.IsConnectionError(err) {
		t.Fatalf("RunAll() error = %v, want ConnectionError", err)
	}
	if m.opens != 1 {
		t.Errorf("opens = %d, want abort after the first failure", m.opens)
	}
	if out.Len() != 0 {
		t.Errorf("RunAll() output = %q, want nothing", out.String())
	}
}
