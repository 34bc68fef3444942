package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Encode serializes a submission in the requested format. JSON output keeps
// the plain value map; form output repeats `key[]` for selections; pretty
// output prints one `key=value` line per field in declaration order.
func Encode(sub Submission, format OutputFormat) ([]byte, error) {
	switch format {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(sub)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(sub)), nil
	case OutputFormatJSON, "":
		return jsonBytes(sub.Values)
	default:
		return nil, fmt.Errorf("render: unknown output format %q", format)
	}
}

func flattenForm(sub Submission) string {
	flattened := url.Values{}
	for _, key := range sub.keys() {
		switch v := sub.Values[key].(type) {
		case []string:
			for _, item := range v {
				flattened.Add(key+"[]", item)
			}
		default:
			flattened.Set(key, fmt.Sprint(v))
		}
	}
	return flattened.Encode()
}

func prettyPrint(sub Submission) string {
	var b strings.Builder
	for _, key := range sub.keys() {
		switch v := sub.Values[key].(type) {
		case []string:
			if len(v) == 0 {
				fmt.Fprintf(&b, "%s=\n", key)
				continue
			}
			for idx, item := range v {
				fmt.Fprintf(&b, "%s[%d]=%s\n", key, idx, item)
			}
		default:
			fmt.Fprintf(&b, "%s=%v\n", key, v)
		}
	}
	return b.String()
}

func jsonBytes(values map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(values); err != nil {
		return nil, fmt.Errorf("render: encode json: %w", err)
	}
	return buf.Bytes(), nil
}

func (s Submission) keys() []string {
	if len(s.Order) == len(s.Values) {
		return s.Order
	}
	return orderedKeys(s.Values, s.Order)
}
