package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind 报表类型
type Kind int

const (
	// TopArticles 最受欢迎的文章
	TopArticles Kind = iota
	// TopAuthors 最受欢迎的作者
	TopAuthors
	// ErrorDays 错误率超过阈值的日期
	ErrorDays
)

// Kinds 为完整运行时的固定报表顺序
var Kinds = []Kind{TopArticles, TopAuthors, ErrorDays}

func (k Kind) String() string {
	switch k {
	case TopArticles:
		return "articles"
	case TopAuthors:
		return "authors"
	case ErrorDays:
		return "errors"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Ranking 报告该类型是否为按名次编号的排行榜
func (k Kind) Ranking() bool {
	return k == TopArticles || k == TopAuthors
}

// ParseKind 将命令行名称解析为报表类型
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "articles":
		return TopArticles, nil
	case "authors":
		return TopAuthors, nil
	case "errors":
		return ErrorDays, nil
	}
	return 0, NewValidationError("unknown report %q (want articles, authors or errors)", name)
}

// Request 单次报表请求。Limit 为 0 表示不限制行数。
type Request struct {
	Kind      Kind
	Limit     int
	Threshold float64
}

// Validate 校验请求参数，失败时返回 ValidationError
func (r Request) Validate() error {
	switch r.Kind {
	case TopArticles, TopAuthors, ErrorDays:
	default:
		return NewValidationError("unknown report kind %d", int(r.Kind))
	}
	if r.Limit < 0 {
		return NewValidationError("limit must be a non-negative integer, got %d", r.Limit)
	}
	if math.IsNaN(r.Threshold) || math.IsInf(r.Threshold, 0) || r.Threshold < 0 {
		return NewValidationError("threshold must be a non-negative number, got %v", r.Threshold)
	}
	return nil
}

// NewRequest 从原始命令行参数构造请求，空字符串表示未提供
func NewRequest(kind Kind, limitArg, thresholdArg string) (Request, error) {
	req := Request{Kind: kind}

	if s := strings.TrimSpace(limitArg); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Request{}, NewValidationError("limit %q is not an integer", limitArg)
		}
		req.Limit = n
	}
	if s := strings.TrimSpace(thresholdArg); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Request{}, NewValidationError("threshold %q is not a number", thresholdArg)
		}
		req.Threshold = f
	}

	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Row 查询结果行。
// 排行榜使用 Label + Views；错误日报表使用 Label（日期）+ Percent。
type Row struct {
	Label   string
	Views   int64
	Percent float64
}

// Report 渲染后的报表
type Report struct {
	Kind   Kind
	Header string
	Lines  []string
}

// String 返回可直接打印的报表文本
func (r Report) String() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(r.Header)
	b.WriteString("\n\n")
	for _, line := range r.Lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}
