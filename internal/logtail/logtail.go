package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one decoded JSON log line.
type Entry struct {
	Time    time.Time
	Level   string
	Logger  string
	Message string
	Fields  map[string]string
	// Raw holds the original line when it was not JSON.
	Raw string
}

var reservedKeys = map[string]bool{
	"ts": true, "level": true, "logger": true, "msg": true, "caller": true, "stacktrace": true,
}

// Parse decodes a zap JSON line. Lines that are not JSON objects come back
// with only Raw set.
func Parse(line string) Entry {
	trimmed := strings.TrimSpace(line)
	var raw map[string]any
	if !strings.HasPrefix(trimmed, "{") || json.Unmarshal([]byte(trimmed), &raw) != nil {
		return Entry{Raw: line}
	}

	e := Entry{
		Level:   stringField(raw, "level"),
		Logger:  stringField(raw, "logger"),
		Message: stringField(raw, "msg"),
	}
	if ts := stringField(raw, "ts"); ts != "" {
		for _, layout := range []string{"2006-01-02T15:04:05.000Z0700", time.RFC3339Nano} {
			if parsed, err := time.Parse(layout, ts); err == nil {
				e.Time = parsed
				break
			}
		}
	}
	for k, v := range raw {
		if reservedKeys[k] {
			continue
		}
		if e.Fields == nil {
			e.Fields = make(map[string]string)
		}
		e.Fields[k] = formatValue(v)
	}
	return e
}

// ReadEntries reads and parses the last maxLines lines of path.
func ReadEntries(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, Parse(line))
	}
	return entries, nil
}

// Format renders an entry as "15:04:05 LEVEL message key=value ...", with
// fields in key order.
func (e Entry) Format() string {
	if e.Raw != "" {
		return e.Raw
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	b.WriteString(strings.ToUpper(padLevel(e.Level)))
	b.WriteByte(' ')
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(e.Fields[k])
	}
	return b.String()
}

// AtLeast reports whether the entry's level is at or above min.
// Unparsed lines always pass.
func (e Entry) AtLeast(min string) bool {
	if e.Raw != "" {
		return true
	}
	return levelRank(e.Level) >= levelRank(min)
}

func levelRank(level string) int {
	switch strings.ToLower(level) {
	case "debug":
		return 0
	case "info", "":
		return 1
	case "warn":
		return 2
	default:
		return 3
	}
}

func padLevel(level string) string {
	if level == "" {
		level = "info"
	}
	if len(level) < 5 {
		level += strings.Repeat(" ", 5-len(level))
	}
	return level
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		if strings.ContainsAny(val, " \t") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case nil:
		return "null"
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
