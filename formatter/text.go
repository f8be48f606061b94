package formatter

import (
	"bytes"
	"strconv"

	"github.com/agora-platform/agoralog/core"
)

const textTimestampLayout = "2006-01-02 15:04:05.000000"

// TextFormatter formats log entries as human-readable text:
//
//	[2024-01-02 15:04:05.123456] [INFO] [service] message (key=value, ...) [12.5ms]
type TextFormatter struct{}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// pre-formatted level strings to avoid multiple WriteString calls
var levelBrackets = [...]string{
	core.DebugLevel:    " [DEBUG] ",
	core.InfoLevel:     " [INFO] ",
	core.WarningLevel:  " [WARNING] ",
	core.ErrorLevel:    " [ERROR] ",
	core.CriticalLevel: " [CRITICAL] ",
}

// Format formats an entry as a newline-terminated text record.
func (f *TextFormatter) Format(entry *core.Entry) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	f.FormatEntry(entry, buf)

	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// FormatEntry writes the formatted entry into the given buffer.
func (f *TextFormatter) FormatEntry(entry *core.Entry, buf *bytes.Buffer) {
	buf.WriteByte('[')
	buf.Write(entry.Time.UTC().AppendFormat(buf.AvailableBuffer(), textTimestampLayout))
	buf.WriteByte(']')

	if int(entry.Level) < len(levelBrackets) && levelBrackets[entry.Level] != "" {
		buf.WriteString(levelBrackets[entry.Level])
	} else {
		buf.WriteString(" [UNKNOWN] ")
	}

	buf.WriteByte('[')
	buf.WriteString(entry.Service)
	buf.WriteString("] ")

	buf.WriteString(entry.Message)

	if fields := entry.Context.Fields(); len(fields) > 0 {
		buf.WriteString(" (")
		for i, field := range fields {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(field.Key)
			buf.WriteByte('=')
			buf.WriteString(field.StringValue())
		}
		buf.WriteByte(')')
	}

	if entry.HasDuration {
		buf.WriteString(" [")
		buf.Write(strconv.AppendFloat(buf.AvailableBuffer(), entry.DurationMS, 'f', -1, 64))
		buf.WriteString("ms]")
	}

	if entry.Exception != nil {
		buf.WriteString(" [")
		buf.WriteString(entry.Exception.Type)
		buf.WriteString(": ")
		buf.WriteString(entry.Exception.Message)
		buf.WriteByte(']')
	}

	buf.WriteByte('\n')
}
