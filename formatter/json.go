package formatter

import (
	"bytes"
	"strconv"

	"github.com/agora-platform/agoralog/core"
)

// timestampLayout renders ISO 8601 UTC with microsecond precision.
// The trailing Z is literal; entries are always converted to UTC first.
const timestampLayout = "2006-01-02T15:04:05.000000Z"

// JSONFormatter formats log entries as single-line JSON records.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format formats an entry as a newline-terminated JSON record.
func (f *JSONFormatter) Format(entry *core.Entry) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	f.FormatEntry(entry, buf)

	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// FormatEntry builds the JSON record manually into the buffer without
// intermediate allocations.
func (f *JSONFormatter) FormatEntry(entry *core.Entry, buf *bytes.Buffer) {
	buf.WriteByte('{')

	buf.WriteString(`"timestamp":"`)
	buf.Write(entry.Time.UTC().AppendFormat(buf.AvailableBuffer(), timestampLayout))
	buf.WriteByte('"')

	buf.WriteString(`,"level":"`)
	buf.WriteString(entry.Level.String())
	buf.WriteByte('"')

	buf.WriteString(`,"message":"`)
	appendJSONString(buf, entry.Message)
	buf.WriteByte('"')

	buf.WriteString(`,"service":"`)
	appendJSONString(buf, entry.Service)
	buf.WriteByte('"')

	buf.WriteString(`,"environment":"`)
	appendJSONString(buf, entry.Environment)
	buf.WriteByte('"')

	buf.WriteString(`,"version":"`)
	appendJSONString(buf, entry.Version)
	buf.WriteByte('"')

	buf.WriteString(`,"logger_name":"`)
	appendJSONString(buf, entry.LoggerName)
	buf.WriteByte('"')

	// Source location fields are required on the wire, even when empty.
	buf.WriteString(`,"file":"`)
	appendJSONString(buf, entry.File)
	buf.WriteString(`","line":`)
	buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(entry.Line), 10))
	buf.WriteString(`,"function":"`)
	appendJSONString(buf, entry.Function)
	buf.WriteByte('"')

	if entry.Context.Len() > 0 {
		buf.WriteString(`,"context":{`)
		for i, field := range entry.Context.Fields() {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			appendJSONString(buf, field.Key)
			buf.WriteString(`":`)
			appendJSONFieldValue(buf, field)
		}
		buf.WriteByte('}')
	}

	if entry.Exception != nil {
		buf.WriteString(`,"exception":{"type":"`)
		appendJSONString(buf, entry.Exception.Type)
		buf.WriteString(`","message":"`)
		appendJSONString(buf, entry.Exception.Message)
		buf.WriteByte('"')
		if entry.Exception.Stack != "" {
			buf.WriteString(`,"stacktrace":"`)
			appendJSONString(buf, entry.Exception.Stack)
			buf.WriteByte('"')
		}
		buf.WriteByte('}')
	}

	if entry.HasDuration {
		buf.WriteString(`,"duration_ms":`)
		buf.Write(strconv.AppendFloat(buf.AvailableBuffer(), entry.DurationMS, 'f', -1, 64))
	}

	buf.WriteString("}\n")
}

var hexChars = [16]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'a', 'b', 'c', 'd', 'e', 'f'}

// appendJSONString writes a JSON-escaped string (without surrounding
// quotes) to the buffer.
func appendJSONString(buf *bytes.Buffer, s string) {
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		if start < i {
			buf.WriteString(s[start:i])
		}
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			buf.WriteString(`\u00`)
			buf.WriteByte(hexChars[c>>4])
			buf.WriteByte(hexChars[c&0x0f])
		}
		start = i + 1
	}
	if start < len(s) {
		buf.WriteString(s[start:])
	}
}

// appendJSONFieldValue writes a JSON-encoded field value to the buffer.
func appendJSONFieldValue(buf *bytes.Buffer, field core.Field) {
	switch field.Type {
	case core.StringType:
		buf.WriteByte('"')
		appendJSONString(buf, field.Str)
		buf.WriteByte('"')
	case core.Int64Type:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), field.Int64, 10))
	case core.Float64Type:
		buf.Write(strconv.AppendFloat(buf.AvailableBuffer(), field.Float64, 'f', -1, 64))
	case core.BoolType:
		buf.Write(strconv.AppendBool(buf.AvailableBuffer(), field.Int64 == 1))
	default:
		buf.WriteByte('"')
		appendJSONString(buf, field.StringValue())
		buf.WriteByte('"')
	}
}
