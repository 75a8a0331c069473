// package formatter renders task lists for CLI output and export (JSON, YAML, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/tdx/internal/models"
	"github.com/desertthunder/tdx/internal/shared"
	"gopkg.in/yaml.v3"
)

// Format names an output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// ParseFormat accepts json, yaml (or yml), csv, markdown (or md) and txt (or text). An empty string means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// Options controls rendering.
type Options struct {
	Pretty bool          // Indent JSON
	Filter models.Filter // Shown in the Markdown and text headers
}

// Render renders items in format.
func Render(format Format, items []models.Item, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ExportToJSON(items, opts.Pretty)
	case FormatYAML:
		return ExportToYAML(items)
	case FormatCSV:
		return ExportToCSV(items)
	case FormatMarkdown:
		return ExportToMarkdown(items, opts.Filter)
	case FormatText, "":
		return ExportToText(items, opts.Filter)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, string(format))
	}
}

// ExportToJSON encodes items as a JSON array in the store's wire shape. A nil slice encodes as [].
func ExportToJSON(items []models.Item, pretty bool) ([]byte, error) {
	if items == nil {
		items = []models.Item{}
	}

	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(items, "", "  ")
	} else {
		data, err = json.Marshal(items)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode items: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToYAML encodes items as a YAML sequence using the same field names as the wire shape.
func ExportToYAML(items []models.Item) ([]byte, error) {
	if items == nil {
		items = []models.Item{}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(items); err != nil {
		return nil, fmt.Errorf("failed to encode items: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode items: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToCSV converts items to CSV with columns: ID, Name, Completed
func ExportToCSV(items []models.Item) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Name", "Completed"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range items {
		record := []string{strconv.Itoa(item.ID), item.Name, strconv.FormatBool(item.Completed)}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders items as a GitHub task list.
func ExportToMarkdown(items []models.Item, filter models.Filter) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Tasks\n\n")
	fmt.Fprintf(&buf, "**Filter**: %s\n", filter)
	fmt.Fprintf(&buf, "**Remaining**: %d of %d\n\n", remaining(items), len(items))

	for _, item := range items {
		mark := " "
		if item.Completed {
			mark = "x"
		}
		fmt.Fprintf(&buf, "- [%s] %s\n", mark, item.Name)
	}

	return buf.Bytes(), nil
}

// ExportToText renders items one per line with their store IDs.
func ExportToText(items []models.Item, filter models.Filter) ([]byte, error) {
	var buf bytes.Buffer

	if len(items) == 0 {
		buf.WriteString(emptyMessage(filter) + "\n")
		return buf.Bytes(), nil
	}

	for _, item := range items {
		mark := "[ ]"
		if item.Completed {
			mark = "[x]"
		}
		fmt.Fprintf(&buf, "%4d %s %s\n", item.ID, mark, item.Name)
	}
	fmt.Fprintf(&buf, "\n%d of %d remaining\n", remaining(items), len(items))

	return buf.Bytes(), nil
}

// WriteExport renders items and writes them to path.
func WriteExport(path string, format Format, items []models.Item, opts Options) error {
	if path == "" {
		return fmt.Errorf("%w: output path", shared.ErrMissingArgument)
	}

	data, err := Render(format, items, opts)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

func emptyMessage(filter models.Filter) string {
	if filter == models.FilterAll {
		return "No items"
	}
	return fmt.Sprintf("No %s items", filter)
}

func remaining(items []models.Item) int {
	n := 0
	for _, item := range items {
		if !item.Completed {
			n++
		}
	}
	return n
}
