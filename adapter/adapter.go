// Package adapter turns raw cloud events into normalized log entries.
//
// Adapt is pure: the same record always produces the same entries and no record depends
// on another, so AdaptBatch is free to adapt records in parallel.
package adapter

import (
	"encoding/json"
	"runtime"
	"strings"
	"time"

	"github.com/valyala/fastjson"
	"golang.org/x/sync/errgroup"

	"github.com/logicmonitor/lm-logs-forwarder/common"
)

// recordsKey holds the array of sub-events in an Azure diagnostic export.
const recordsKey = "records"

var (
	messagePaths   = [][]string{{"message"}, {"msg"}, {"data", "message"}, {"properties", "message"}}
	timestampPaths = [][]string{{"time"}, {"timestamp"}, {"eventTime"}}
	resourcePaths  = [][]string{{"resourceId"}, {"oracle", "resourceid"}, {"source"}}
)

// AdaptBatch adapts every object-shaped element of events and flattens the results,
// keeping the entries of each record together in source order. Elements that are not
// JSON objects are dropped. At most workers records are adapted at once; workers <= 0
// means GOMAXPROCS.
func AdaptBatch(events []json.RawMessage, workers int) []common.LogEntry {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([][]common.LogEntry, len(events))
	var g errgroup.Group
	g.SetLimit(workers)
	for i := range events {
		i := i
		g.Go(func() error {
			results[i] = adaptRaw(events[i])
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, r := range results {
		total += len(r)
	}
	entries := make([]common.LogEntry, 0, total)
	for _, r := range results {
		entries = append(entries, r...)
	}
	return entries
}

// adaptRaw parses a single element with its own parser; fastjson values are not safe to
// share between goroutines.
func adaptRaw(raw json.RawMessage) []common.LogEntry {
	var p fastjson.Parser
	v, err := p.ParseBytes(raw)
	if err != nil || v.Type() != fastjson.TypeObject {
		return nil
	}
	return Adapt(v)
}

// Adapt maps one object-shaped record to its log entries. A record carrying a "records"
// array expands to one entry per object element; any other record yields one entry.
// Unknown shapes fall back to best-effort extraction and never fail.
func Adapt(record *fastjson.Value) []common.LogEntry {
	if record == nil || record.Type() != fastjson.TypeObject {
		return nil
	}

	if sub := record.Get(recordsKey); sub != nil && sub.Type() == fastjson.TypeArray {
		items, _ := sub.Array()
		entries := make([]common.LogEntry, 0, len(items))
		for _, item := range items {
			if item.Type() == fastjson.TypeObject {
				entries = append(entries, adaptRecord(item))
			}
		}
		return entries
	}

	return []common.LogEntry{adaptRecord(record)}
}

func adaptRecord(record *fastjson.Value) common.LogEntry {
	used := make(map[string]bool)

	entry := common.LogEntry{
		Message:  record.String(),
		Metadata: make(map[string]interface{}),
	}
	if path, v := firstOf(record, messagePaths, fastjson.TypeString); v != nil {
		entry.Message = string(v.GetStringBytes())
		used[strings.Join(path, ".")] = true
	}
	if path, v := firstOf(record, timestampPaths, fastjson.TypeString, fastjson.TypeNumber); v != nil {
		if ts, ok := parseTimestamp(v); ok {
			entry.Timestamp = ts
			used[strings.Join(path, ".")] = true
		}
	}
	if path, v := firstOf(record, resourcePaths, fastjson.TypeString); v != nil {
		entry.ResourceID = string(v.GetStringBytes())
		used[strings.Join(path, ".")] = true
	}

	flatten(record, "", entry.Metadata, used)
	return entry
}

// firstOf returns the first path whose value has one of the accepted types.
func firstOf(record *fastjson.Value, paths [][]string, types ...fastjson.Type) ([]string, *fastjson.Value) {
	for _, path := range paths {
		v := record.Get(path...)
		if v == nil {
			continue
		}
		for _, t := range types {
			if v.Type() == t {
				return path, v
			}
		}
	}
	return nil, nil
}

// parseTimestamp accepts RFC3339 strings and epoch milliseconds.
func parseTimestamp(v *fastjson.Value) (time.Time, bool) {
	switch v.Type() {
	case fastjson.TypeString:
		ts, err := time.Parse(time.RFC3339Nano, string(v.GetStringBytes()))
		if err != nil {
			return time.Time{}, false
		}
		return ts.UTC(), true
	case fastjson.TypeNumber:
		ms, err := v.Int64()
		if err != nil {
			return time.Time{}, false
		}
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}

// flatten copies the fields of an object into result using dot-separated keys, skipping
// the keys already consumed for the message, timestamp and resource id.
func flatten(v *fastjson.Value, prefix string, result map[string]interface{}, exclude map[string]bool) {
	obj, err := v.Object()
	if err != nil {
		return
	}
	obj.Visit(func(key []byte, val *fastjson.Value) {
		k := string(key)
		if prefix != "" {
			k = prefix + "." + k
		}
		if exclude[k] {
			return
		}
		if val.Type() == fastjson.TypeObject {
			flatten(val, k, result, exclude)
			return
		}
		result[k] = toInterface(val)
	})
}

func toInterface(v *fastjson.Value) interface{} {
	switch v.Type() {
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		if i, err := v.Int64(); err == nil {
			return i
		}
		return v.GetFloat64()
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	case fastjson.TypeArray:
		items, _ := v.Array()
		out := make([]interface{}, len(items))
		for i, item := range items {
			out[i] = toInterface(item)
		}
		return out
	case fastjson.TypeObject:
		out := make(map[string]interface{})
		flatten(v, "", out, nil)
		return out
	default:
		return nil
	}
}
