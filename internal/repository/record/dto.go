package record

import (
	"encoding/json"
	"strconv"
	"time"

	domrec "github.com/keepson/keepson/internal/domain/record"
)

// buildHashFields flattens a record into HSET fields. Times are stored as
// unix milliseconds so capture bursts inside one second keep a total order.
func buildHashFields(rec *domrec.Record) map[string]string {
	m := map[string]string{
		"id":         rec.ID(),
		"owner":      rec.Owner(),
		"type":       string(rec.RecordType()),
		"title":      rec.Title(),
		"content":    rec.Content(),
		"summary":    rec.Summary(),
		"file_ref":   rec.FileRef(),
		"created_at": strconv.FormatInt(rec.CreatedAt().UnixMilli(), 10),
		"updated_at": strconv.FormatInt(rec.UpdatedAt().UnixMilli(), 10),
	}
	if tags := rec.Tags(); len(tags) > 0 {
		if data, err := json.Marshal(tags); err == nil {
			m["tags"] = string(data)
		}
	}
	return m
}

// parseHashFields rebuilds a record from its hash form. Unparseable fields
// degrade to zero values rather than failing the whole read.
func parseHashFields(m map[string]string) domrec.Record {
	var tags []string
	if raw := m["tags"]; raw != "" {
		_ = json.Unmarshal([]byte(raw), &tags)
	}

	return domrec.Reconstruct(
		m["id"], m["owner"], domrec.Type(m["type"]),
		m["title"], m["content"], m["summary"],
		tags, m["file_ref"],
		parseMillis(m["created_at"]), parseMillis(m["updated_at"]),
	)
}

func parseMillis(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
