// Package format turns raw values into display strings and builds query URLs.
package format

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/rubiojr/hostsearch/pkg/hosts"
)

var printer = message.NewPrinter(language.English)

// ProtocolCount returns "1 protocol" for one and "N protocols" otherwise.
func ProtocolCount(count int) string {
	if count == 1 {
		return "1 protocol"
	}
	return strconv.Itoa(count) + " protocols"
}

// Number formats v with comma thousands separators, e.g. 1234567.89 -> "1,234,567.89".
func Number[T int | int64 | float64](v T) string {
	return printer.Sprint(number.Decimal(v))
}

// ProtocolLabel is the chip text for a protocol, e.g. "80/http".
func ProtocolLabel(p hosts.Protocol) string {
	return strconv.Itoa(p.Port) + "/" + p.Name
}

// Param is a single query parameter. A nil Value is skipped.
type Param struct {
	Key   string
	Value any
}

// BuildURL appends params to baseURL in the order given, keeping any query
// the base already carries. Values are stringified with fmt.
func BuildURL(baseURL string, params ...Param) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base url %q is not absolute", baseURL)
	}
	if u.Path == "" {
		u.Path = "/"
	}

	var b strings.Builder
	b.WriteString(u.RawQuery)
	for _, p := range params {
		if p.Value == nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(stringify(p.Value)))
	}
	u.RawQuery = b.String()

	return u.String(), nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
