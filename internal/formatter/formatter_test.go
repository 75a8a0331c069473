package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/tdx/internal/models"
	"github.com/desertthunder/tdx/internal/shared"
	th "github.com/desertthunder/tdx/internal/testing"
	"github.com/sebdah/goldie/v2"
	"gopkg.in/yaml.v3"
)

var sample = []models.Item{
	{ID: 1, Name: "buy milk", Completed: false},
	{ID: 2, Name: "wash car, then dry", Completed: true},
}

func TestExporters(t *testing.T) {
	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(sample, false)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded []models.Item
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(decoded) != 2 || decoded[1] != sample[1] {
			t.Errorf("unexpected decoded items: %+v", decoded)
		}
		if !strings.Contains(string(data), `"completed":true`) {
			t.Errorf("expected wire field names, got %s", data)
		}
	})

	t.Run("ExportToJSON Pretty", func(t *testing.T) {
		data, err := ExportToJSON(sample, true)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}
		if !strings.Contains(string(data), "\n  {") {
			t.Errorf("expected indented output, got %s", data)
		}
	})

	t.Run("ExportToJSON Nil", func(t *testing.T) {
		data, err := ExportToJSON(nil, false)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}
		if strings.TrimSpace(string(data)) != "[]" {
			t.Errorf("expected [], got %s", data)
		}
	})

	t.Run("ExportToYAML", func(t *testing.T) {
		data, err := ExportToYAML(sample)
		if err != nil {
			t.Fatalf("ExportToYAML failed: %v", err)
		}

		var decoded []models.Item
		if err := yaml.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("output is not valid YAML: %v", err)
		}
		if len(decoded) != 2 || decoded[1] != sample[1] {
			t.Errorf("unexpected decoded items: %+v", decoded)
		}
		if !strings.Contains(string(data), "completed: true") {
			t.Errorf("expected wire field names, got %s", data)
		}
	})

	t.Run("ExportToYAML Nil", func(t *testing.T) {
		data, err := ExportToYAML(nil)
		if err != nil {
			t.Fatalf("ExportToYAML failed: %v", err)
		}
		if strings.TrimSpace(string(data)) != "[]" {
			t.Errorf("expected [], got %s", data)
		}
	})

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sample)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "ID,Name,Completed\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,buy milk,false") {
			t.Errorf("CSV missing first row, got: %s", output)
		}
		if !strings.Contains(output, `2,"wash car, then dry",true`) {
			t.Errorf("CSV should quote names with commas, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(sample, models.FilterAll)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{"# Tasks", "**Filter**: all", "**Remaining**: 1 of 2", "- [ ] buy milk", "- [x] wash car, then dry"} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sample, models.FilterAll)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "   1 [ ] buy milk") {
			t.Errorf("text missing first item, got: %s", output)
		}
		if !strings.Contains(output, "1 of 2 remaining") {
			t.Errorf("text missing summary, got: %s", output)
		}
	})

	t.Run("ExportToText Empty", func(t *testing.T) {
		data, _ := ExportToText(nil, models.FilterCompleted)
		if string(data) != "No completed items\n" {
			t.Errorf("unexpected empty output: %q", data)
		}
	})
}

func TestGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	tt := []struct {
		name   string
		format Format
		filter models.Filter
		items  []models.Item
	}{
		{name: "text", format: FormatText, filter: models.FilterAll, items: sample},
		{name: "text_empty_active", format: FormatText, filter: models.FilterActive},
		{name: "markdown", format: FormatMarkdown, filter: models.FilterAll, items: sample},
		{name: "csv", format: FormatCSV, filter: models.FilterAll, items: sample},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			data, err := Render(tc.format, tc.items, Options{Filter: tc.filter})
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			g.Assert(t, tc.name, data)
		})
	}
}

func TestParseFormat(t *testing.T) {
	tt := []struct {
		in   string
		want Format
	}{
		{"", FormatText},
		{"txt", FormatText},
		{"text", FormatText},
		{"JSON", FormatJSON},
		{"csv", FormatCSV},
		{"yml", FormatYAML},
		{"yaml", FormatYAML},
		{"md", FormatMarkdown},
		{"markdown", FormatMarkdown},
	}

	for _, tc := range tt {
		got, err := ParseFormat(tc.in)
		if err != nil {
			t.Errorf("ParseFormat(%q) returned error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseFormat(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}

	if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for xml, got %v", err)
	}
}

func TestRender(t *testing.T) {
	t.Run("Dispatches", func(t *testing.T) {
		data, err := Render(FormatCSV, sample, Options{})
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		if !strings.HasPrefix(string(data), "ID,Name") {
			t.Errorf("expected CSV output, got %s", data)
		}
	})

	t.Run("Unknown Format", func(t *testing.T) {
		if _, err := Render(Format("xml"), sample, Options{}); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}

func TestWriteExport(t *testing.T) {
	t.Run("Writes File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tasks.md")

		if err := WriteExport(path, FormatMarkdown, sample, Options{}); err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}

		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.Contains(content, "- [ ] buy milk") {
			t.Errorf("unexpected file content: %s", content)
		}
	})

	t.Run("Missing Path", func(t *testing.T) {
		if err := WriteExport("", FormatText, sample, Options{}); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Unwritable Path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "tasks.txt")
		if err := WriteExport(path, FormatText, sample, Options{}); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}
