package logger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"
)

type handlerConfig struct {
	level  slog.Leveler
	writer *asyncWriter
	format logFormat
}

// structuredHandler writes one flat line per record. Keys listed in keyOrder
// come first, the rest follow alphabetically.
type structuredHandler struct {
	cfg    handlerConfig
	attrs  []slog.Attr
	prefix string
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	return &structuredHandler{cfg: cfg}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.writer == nil {
		return errors.New("logger: writer not initialized")
	}

	fields := map[string]any{
		"ts":    r.Time.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		"level": normalizeLevel(r.Level),
	}
	for _, a := range h.attrs {
		h.put(fields, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.put(fields, a)
		return true
	})
	fillFromContext(ctx, fields)

	if rid, ok := fields["rid"].(string); ok {
		fields["rid"] = CompactRID(rid)
	}
	if fields["event"] == nil || fields["event"] == "" {
		fields["event"] = "unknown"
		if r.Message != "" {
			fields["event"] = r.Message
		}
	}
	if fields["component"] == nil || fields["component"] == "" {
		fields["component"] = "app"
	}
	normalizeEnums(fields)

	var (
		line []byte
		err  error
	)
	if h.cfg.format == formatJSON {
		line, err = jsonLine(fields)
	} else {
		line = kvLine(fields)
	}
	if err != nil {
		return err
	}
	return h.cfg.writer.Write(append(line, '\n'))
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = slices.Concat(h.attrs, attrs)
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = joinKey(h.prefix, name)
	return &clone
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	if key == "" {
		return prefix
	}
	return prefix + "." + key
}

// put flattens groups into dotted keys and drops empty values.
func (h *structuredHandler) put(fields map[string]any, a slog.Attr) {
	var walk func(prefix string, a slog.Attr)
	walk = func(prefix string, a slog.Attr) {
		key := joinKey(prefix, a.Key)
		v := a.Value.Resolve()
		if v.Kind() == slog.KindGroup {
			for _, child := range v.Group() {
				walk(key, child)
			}
			return
		}
		if key == "" {
			return
		}
		if key, val := fieldValue(key, v); val != nil && val != "" {
			fields[key] = val
		}
	}
	walk(h.prefix, a)
}

func fieldValue(key string, v slog.Value) (string, any) {
	switch v.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(v.String())
	case slog.KindDuration:
		if !strings.HasSuffix(key, "_ms") {
			key += "_ms"
		}
		return key, RoundMS(v.Duration()).Milliseconds()
	case slog.KindTime:
		return key, v.Time().UTC().Format(time.RFC3339Nano)
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindBool:
		return key, v.Any()
	}
	switch x := v.Any().(type) {
	case nil:
		return key, nil
	case error:
		return key, x.Error()
	default:
		return key, fmt.Sprint(x)
	}
}

func orderedKeys(fields map[string]any) []string {
	keys := make([]string, 0, len(fields))
	for _, k := range keyOrder {
		if _, ok := fields[k]; ok {
			keys = append(keys, k)
		}
	}
	head := len(keys)
	for k := range fields {
		if _, known := keyRank[k]; !known {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys[head:])
	return keys
}

func jsonLine(fields map[string]any) ([]byte, error) {
	out := []byte{'{'}
	for i, k := range orderedKeys(fields) {
		v, err := json.Marshal(fields[k])
		if err != nil {
			return nil, fmt.Errorf("logger: encode %s: %w", k, err)
		}
		if i > 0 {
			out = append(out, ',')
		}
		out = strconv.AppendQuote(out, k)
		out = append(out, ':')
		out = append(out, v...)
	}
	return append(out, '}'), nil
}

func kvLine(fields map[string]any) []byte {
	var out []byte
	for i, k := range orderedKeys(fields) {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, k...)
		out = append(out, '=')
		s := fmt.Sprint(fields[k])
		if strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
			out = strconv.AppendQuote(out, s)
		} else {
			out = append(out, s...)
		}
	}
	return out
}

func fillFromContext(ctx context.Context, fields map[string]any) {
	if ctx == nil {
		return
	}
	add := func(key string, val any, zero bool) {
		if _, set := fields[key]; !set && !zero {
			fields[key] = val
		}
	}
	rid := RIDFrom(ctx)
	add("rid", rid, rid == "")
	uid := UserIDFrom(ctx)
	add("user_id", uid, uid == 0)
	upd := UpdateIDFrom(ctx)
	add("update_id", upd, upd == 0)
	chat := ChatIDFrom(ctx)
	add("chat_id", chat, chat == 0)
	handler := HandlerFrom(ctx)
	add("handler", handler, handler == "")
}
