// Package frontmatter reads and rewrites the YAML header block that carries
// a document's sync metadata: its feed subscriptions and its watermark.
package frontmatter

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/raido/internal/apperr"
)

const delim = "---"

// Header keys recognized by the sync engine.
const (
	KeySynced = "synced"
	KeyFeeds  = "feeds"
)

// DocMeta is the typed view of the sync-relevant header fields.
type DocMeta struct {
	// Synced is the watermark timestamp, nil when the key is absent.
	Synced *time.Time
	// Feeds is the ordered list of subscribed feed URLs. Empty means the
	// document is not a sync target.
	Feeds []string
}

// Parse extracts DocMeta and the Markdown body from raw document bytes.
// A document without a header yields a zero DocMeta and the full content as
// body. A header that exists but is not valid YAML returns
// apperr.ErrMalformedHeader.
func Parse(data []byte) (DocMeta, string, error) {
	header, body, ok := split(data)
	if !ok {
		return DocMeta{}, string(data), nil
	}

	var fm map[string]interface{}
	if err := yaml.Unmarshal(header, &fm); err != nil {
		return DocMeta{}, "", fmt.Errorf("frontmatter: %w: %v", apperr.ErrMalformedHeader, err)
	}

	meta := DocMeta{}
	if raw, found := fm[KeySynced]; found {
		if ts, parsed := parseTimestamp(raw); parsed {
			meta.Synced = &ts
		}
	}
	if raw, found := fm[KeyFeeds]; found {
		meta.Feeds = stringList(raw)
	}
	return meta, string(bytes.TrimLeft(body, "\n\r")), nil
}

// SetSynced returns a copy of data with the synced key set to t, creating
// the header when absent. The rewrite goes through the YAML node tree so
// unrelated keys, their order, and comments survive. Returns
// apperr.ErrMalformedHeader when an existing header cannot be parsed.
func SetSynced(data []byte, t time.Time) ([]byte, error) {
	stamp := t.UTC().Format(time.RFC3339)

	header, body, ok := split(data)
	if !ok {
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "%s\n%s: %s\n%s\n", delim, KeySynced, stamp, delim)
		buf.Write(data)
		return buf.Bytes(), nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(header, &doc); err != nil {
		return nil, fmt.Errorf("frontmatter: %w: %v", apperr.ErrMalformedHeader, err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("frontmatter: %w: header is not a mapping", apperr.ErrMalformedHeader)
	}
	mapping := doc.Content[0]

	found := false
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == KeySynced {
			mapping.Content[i+1] = scalarNode(stamp)
			found = true
			break
		}
	}
	if !found {
		mapping.Content = append(mapping.Content, scalarNode(KeySynced), scalarNode(stamp))
	}

	var out bytes.Buffer
	out.WriteString(delim + "\n")
	enc := yaml.NewEncoder(&out)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("frontmatter: encode header: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("frontmatter: encode header: %w", err)
	}
	out.WriteString(delim)
	out.Write(body)
	return out.Bytes(), nil
}

func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// split separates the YAML header (between leading --- delimiters) from the
// rest of the document. body is everything after the closing delimiter,
// verbatim, so callers can reassemble the file byte-for-byte.
func split(data []byte) (header, body []byte, ok bool) {
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, nil, false
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter; treat the whole document as body.
		return nil, nil, false
	}
	header = rest[:idx]
	body = rest[idx+1+len(delim):]
	return header, body, true
}

// parseTimestamp accepts the formats the watermark has historically been
// written in: RFC3339, a bare date, or epoch milliseconds.
func parseTimestamp(raw interface{}) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if ts, err := time.Parse(layout, v); err == nil {
				return ts, true
			}
		}
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), true
		}
	case int:
		return time.UnixMilli(int64(v)).UTC(), true
	case int64:
		return time.UnixMilli(v).UTC(), true
	case uint64:
		return time.UnixMilli(int64(v)).UTC(), true
	case float64:
		return time.UnixMilli(int64(v)).UTC(), true
	}
	return time.Time{}, false
}

func stringList(raw interface{}) []string {
	switch v := raw.(type) {
	case []interface{}:
		var out []string
		for _, item := range v {
			if s, isString := item.(string); isString && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}
