package output

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/rpunt/cac-core/pkg/logger"
	"github.com/rpunt/cac-core/pkg/model"
)

// Printer displays data models in a configured output format.
//
// Table output derives headers from the first model's key order,
// flattens nested values into JSON strings for cells, and appends a
// row-count footer. Structured formats (JSON, CSV, XML) emit the models
// for machine consumption.
type Printer struct {
	format Format
	writer io.Writer
	log    *zap.SugaredLogger
}

// NewPrinter creates a printer for the given format and writer.
//
// Parameters:
//   - format: The output format to use
//   - writer: Destination for printed output
//
// Returns:
//   - *Printer: A new printer instance
func NewPrinter(format Format, writer io.Writer) *Printer {
	return &Printer{
		format: format,
		writer: writer,
		log:    logger.New("output"),
	}
}

// WithLogger replaces the printer's logger and returns the printer.
//
// Parameters:
//   - log: Logger for diagnostics such as the empty-result notice
//
// Returns:
//   - *Printer: The printer instance for method chaining
func (p *Printer) WithLogger(log *zap.SugaredLogger) *Printer {
	if log != nil {
		p.log = log
	}
	return p
}

// PrintModel prints a single model in the configured format.
//
// JSON output emits a single object rather than a one-element array.
//
// Parameters:
//   - m: The model to print
//
// Returns:
//   - error: When encoding or writing fails; otherwise nil
func (p *Printer) PrintModel(m *model.Model) error {
	if m == nil {
		return p.PrintModels(nil)
	}
	if p.format == FormatJSON {
		encoded, err := m.ToJSON()
		if err != nil {
			return fmt.Errorf("encode model: %w", err)
		}
		_, err = fmt.Fprintln(p.writer, string(encoded))
		return err
	}
	return p.PrintModels([]*model.Model{m})
}

// PrintModels prints a list of models in the configured format.
//
// It performs the following operations:
//   - Step 1: For JSON, emits the models as a JSON array in key order
//   - Step 2: For CSV/XML, flattens cells and delegates to the Formatter
//   - Step 3: For tables, renders header, rows, and the row-count footer
//
// Empty input produces no table output; a "no results were found"
// notice is logged instead. Structured formats still emit their empty
// container so downstream parsers get valid documents.
//
// Parameters:
//   - models: The models to print, may be empty or nil
//
// Returns:
//   - error: When encoding or writing fails; otherwise nil
func (p *Printer) PrintModels(models []*model.Model) error {
	switch p.format {
	case FormatJSON:
		return p.printJSON(models)
	case FormatCSV:
		headers, rows := flatten(models)
		return NewFormatter(FormatCSV, p.writer).WriteCSV(headers, rows)
	case FormatXML:
		return NewFormatter(FormatXML, p.writer).WriteXML(xmlModels{models: models})
	default:
		return p.printTable(models)
	}
}

func (p *Printer) printJSON(models []*model.Model) error {
	encoded := make([]json.RawMessage, 0, len(models))
	for _, m := range models {
		raw, err := m.ToJSON()
		if err != nil {
			return fmt.Errorf("encode model: %w", err)
		}
		encoded = append(encoded, raw)
	}
	return NewFormatter(FormatJSON, p.writer).WriteJSON(encoded)
}

func (p *Printer) printTable(models []*model.Model) error {
	if len(models) == 0 {
		p.log.Info("no results were found")
		return nil
	}

	headers, rows := flatten(models)

	table := NewTable()
	for _, h := range headers {
		table.AddColumn(strings.ToUpper(h))
	}
	return table.Render(p.writer, rows)
}

// flatten derives table headers from the first model's key order and
// renders every model's values as display strings.
func flatten(models []*model.Model) ([]string, [][]string) {
	if len(models) == 0 {
		return nil, nil
	}

	headers := models[0].Keys()
	rows := make([][]string, 0, len(models))
	for _, m := range models {
		row := make([]string, 0, len(headers))
		for _, key := range headers {
			row = append(row, cellValue(m.GetDefault(key, nil)))
		}
		rows = append(rows, row)
	}
	return headers, rows
}

// cellValue renders a model value for a single table cell. Nested
// models become compact JSON, lists are comma-joined, nil is empty.
func cellValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case *model.Model:
		encoded, err := val.ToJSON()
		if err != nil {
			return val.String()
		}
		return string(encoded)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, cellValue(item))
		}
		return strings.Join(parts, ", ")
	case string:
		return val
	default:
		return fmt.Sprintf("%v", v)
	}
}

// xmlModels wraps a model list for XML encoding with dynamic element
// names taken from the model keys.
type xmlModels struct {
	models []*model.Model
}

// MarshalXML implements xml.Marshaler.
//
// The output shape is <results><result><key>value</key>...</result>...</results>,
// with nested values flattened the same way as table cells.
func (x xmlModels) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name.Local = "results"
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	for _, m := range x.models {
		entry := xml.StartElement{Name: xml.Name{Local: "result"}}
		if err := e.EncodeToken(entry); err != nil {
			return err
		}
		for _, key := range m.Keys() {
			elem := xml.StartElement{Name: xml.Name{Local: xmlElementName(key)}}
			if err := e.EncodeElement(cellValue(m.GetDefault(key, nil)), elem); err != nil {
				return err
			}
		}
		if err := e.EncodeToken(entry.End()); err != nil {
			return err
		}
	}

	return e.EncodeToken(start.End())
}

// xmlElementName sanitizes a model key into a valid XML element name.
func xmlElementName(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name := b.String()
	if name == "" {
		return "field"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}
