package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "zero lines",
			maxLines: 0,
			expected: nil,
		},
		{
			name:     "negative",
			maxLines: -1,
			expected: nil,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read(missing) = %v, %v; want nil, nil", got, err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Entry
	}{
		{
			name:  "plain text",
			input: "panic: boom",
			want:  Entry{Raw: "panic: boom"},
		},
		{
			name:  "broken json",
			input: `{"level":`,
			want:  Entry{Raw: `{"level":`},
		},
		{
			name:  "zap record",
			input: `{"level":"warn","ts":1700000000.5,"logger":"stream","msg":"motion stream failed","error":"EOF","events":3}`,
			want: Entry{
				Time:       time.Unix(1700000000, 500000000),
				Level:      "WARN",
				Logger:     "stream",
				Message:    "motion stream failed",
				Fields:     map[string]any{"error": "EOF", "events": float64(3)},
				Raw:        `{"level":"warn","ts":1700000000.5,"logger":"stream","msg":"motion stream failed","error":"EOF","events":3}`,
				Structured: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if !got.Time.Equal(tt.want.Time) {
				t.Fatalf("Time = %v, want %v", got.Time, tt.want.Time)
			}
			got.Time, tt.want.Time = time.Time{}, time.Time{}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	e := Parse(`{"level":"info","ts":"2025-10-08T21:01:05Z","msg":"model loaded","source":"arm.urdf","joints":6}`)
	got := Format(e)
	wantTail := "INFO  model loaded joints=6 source=arm.urdf"
	if !strings.HasSuffix(got, wantTail) {
		t.Fatalf("Format() = %q, want suffix %q", got, wantTail)
	}
	if want := e.Time.Local().Format("15:04:05") + " "; !strings.HasPrefix(got, want) {
		t.Fatalf("Format() = %q, want prefix %q", got, want)
	}

	if got := Format(Parse("raw line")); got != "raw line" {
		t.Fatalf("Format(raw) = %q, want raw line", got)
	}
}
