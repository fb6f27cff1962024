package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/loupelabs/loupe/internal/model"
)

// Writer streams log records in one export format.
type Writer interface {
	WriteRecord(r model.LogRecord) error
	// Flush finishes the stream. Must be called after the last record.
	Flush() error
}

// NewWriter returns a streaming writer for the format, with the column
// selection already projected to concrete export fields. JSONL ignores the
// column list and emits whole records.
func NewWriter(w io.Writer, format string, columns []string) (Writer, error) {
	switch format {
	case FormatCSV:
		return newCSVWriter(w, columns)
	case FormatJSONL:
		return &jsonlWriter{enc: newJSONLEncoder(w)}, nil
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}

type csvWriter struct {
	w      *csv.Writer
	fields []string
}

func newCSVWriter(w io.Writer, columns []string) (*csvWriter, error) {
	fields := ProjectColumns(columns)
	if len(fields) == 0 {
		fields = ProjectColumns(DefaultColumns)
	}
	cw := &csvWriter{w: csv.NewWriter(w), fields: fields}
	if err := cw.w.Write(fields); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	return cw, nil
}

func (c *csvWriter) WriteRecord(r model.LogRecord) error {
	row := make([]string, len(c.fields))
	for i, f := range c.fields {
		row[i] = fieldValue(r, f)
	}
	return c.w.Write(row)
}

func (c *csvWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

type jsonlWriter struct {
	enc *json.Encoder
}

func newJSONLEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc
}

func (j *jsonlWriter) WriteRecord(r model.LogRecord) error {
	return j.enc.Encode(r)
}

func (j *jsonlWriter) Flush() error { return nil }

// fieldValue extracts one concrete export field from a record. Custom
// fields resolve through their namespace map; unknown fields yield "".
func fieldValue(r model.LogRecord, field string) string {
	if ns, name, ok := model.SplitCustomField(field); ok {
		switch ns {
		case model.NamespaceActor:
			return r.ActorExtra[name]
		case model.NamespaceResource:
			return r.ResourceExtra[name]
		case model.NamespaceSource:
			return r.Source[name]
		case model.NamespaceDetails:
			return r.Details[name]
		}
	}
	switch field {
	case "saved_at":
		if r.SavedAt.IsZero() {
			return ""
		}
		return r.SavedAt.Format(time.RFC3339Nano)
	case "action_type":
		return r.ActionType
	case "action_category":
		return r.ActionCategory
	case "actor_name":
		return r.ActorName
	case "actor_type":
		return r.ActorType
	case "actor_ref":
		return r.ActorRef
	case "resource_type":
		return r.ResourceType
	case "resource_name":
		return r.ResourceName
	case "resource_ref":
		return r.ResourceRef
	case "tag_type":
		return r.TagType
	case "tag_ref":
		return r.TagRef
	case "entity_path:name":
		return r.EntityPath
	case "attachment_name":
		return r.AttachmentName
	case "attachment_type":
		return r.AttachmentType
	case "attachment_mime_type":
		return r.AttachmentMimeType
	case "has_attachment":
		if r.AttachmentName != "" || r.AttachmentType != "" || r.AttachmentMimeType != "" {
			return "true"
		}
		return ""
	}
	return ""
}
