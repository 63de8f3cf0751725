package spyder

import (
	"encoding/json"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/tidwall/pretty"

	"github.com/jtouzy/spyder/wire"
)

type logField struct {
	key   string
	value string
}

// event sends one line to the client logger, prefixed with the invocation id
// and path=[METHOD /path].
func (inv *invocation) event(message string, fields ...logField) {
	var b strings.Builder
	b.WriteString("id=[")
	b.WriteString(inv.id)
	b.WriteString("] path=[")
	b.WriteString(inv.endpoint.Method.HTTP())
	b.WriteByte(' ')
	if inv.built {
		b.WriteString(inv.req.Path())
	} else {
		b.WriteString(inv.endpoint.Path)
	}
	b.WriteByte(']')

	for _, f := range fields {
		b.WriteByte(' ')
		b.WriteString(f.key)
		b.WriteString("=[")
		b.WriteString(f.value)
		b.WriteByte(']')
	}

	inv.client.logger(message, b.String())
}

func (inv *invocation) logInvoke(fromCache bool) {
	inv.event("invoke",
		logField{"url", inv.req.URL},
		logField{"fromCache", strconv.FormatBool(fromCache)},
		logField{"headers", formatHeaders(inv.req.Headers.All())},
		logField{"body", compactBody(inv.req.Body)},
	)
}

func formatHeaders(headers []wire.Header) string {
	parts := make([]string, 0, len(headers))
	for _, h := range headers {
		if textproto.CanonicalMIMEHeaderKey(h.Name) == "Authorization" {
			parts = append(parts, h.Name+": <redacted>")
			continue
		}
		parts = append(parts, h.Name+": "+h.Value)
	}
	return strings.Join(parts, ", ")
}

func compactBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if json.Valid(body) {
		return string(pretty.Ugly(body))
	}
	return string(body)
}
