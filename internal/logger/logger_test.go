package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/sirupsen/logrus"
)

func TestCustomFormatter(t *testing.T) {
	entry := &logrus.Entry{
		Time:    time.Date(2016, 7, 29, 10, 0, 0, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "report skipped",
		Data:    logrus.Fields{"report": "errors", "attempt": 1},
	}

	out, err := (&CustomFormatter{}).Format(entry)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := "[2016-07-29 10:00:00] [WARN] report skipped attempt=1 report=errors\n"
	if string(out) != want {
		t.Errorf("Format() = %q, want %q", out, want)
	}
}

func TestCustomFormatter_TruncatesLevel(t *testing.T) {
	entry := &logrus.Entry{Time: time.Now(), Level: logrus.ErrorLevel, Message: "x"}
	out, _ := (&CustomFormatter{}).Format(entry)
	if !strings.Contains(string(out), "[ERRO]") {
		t.Errorf("Format() = %q, want [ERRO] level", out)
	}
}

func TestInitLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "report.log")
	if err := InitLogger("debug", path); err != nil {
		t.Fatalf("InitLogger() error = %v", err)
	}
	if Log.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", Log.GetLevel())
	}

	Log.Info("hello file")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello file") {
		t.Errorf("log file = %q, want it to contain the message", data)
	}
}

func TestInitLogger_BadLevelFallsBackToInfo(t *testing.T) {
	if err := InitLogger("chatty", ""); err != nil {
		t.Fatalf("InitLogger() error = %v", err)
	}
	if Log.GetLevel() != logrus.InfoLevel {
		t.Errorf("level = %v, want info", Log.GetLevel())
	}
}

func TestKratosLogger(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&CustomFormatter{})
	l.SetLevel(logrus.DebugLevel)

	helper := log.NewHelper(NewKratosLogger(l))
	helper.Warnw(log.DefaultMessageKey, "query failed", "report", "authors")

	got := buf.String()
	if !strings.Contains(got, "[WARN] query failed report=authors") {
		t.Errorf("output = %q", got)
	}
}

func TestKratosLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.InfoLevel)

	NewKratosLogger(l).Log(log.LevelDebug, log.DefaultMessageKey, "hidden")
	if buf.Len() != 0 {
		t.Errorf("debug entry written at info level: %q", buf.String())
	}
}
