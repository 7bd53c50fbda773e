package app

import (
	"net/url"
	"strings"
)

const preparedBinaryResultParam = "disable_prepared_binary_result"

// normalizeDBURL sets disable_prepared_binary_result=yes unless the URL
// already carries a value. Both URL and key=value DSNs are accepted.
func normalizeDBURL(raw string, disablePreparedBinaryResult bool) string {
	if !disablePreparedBinaryResult {
		return raw
	}

	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed == nil || parsed.Scheme == "" {
		if strings.Contains(trimmed, preparedBinaryResultParam+"=") {
			return raw
		}
		return trimmed + " " + preparedBinaryResultParam + "=yes"
	}

	query := parsed.Query()
	if query.Get(preparedBinaryResultParam) == "" {
		query.Set(preparedBinaryResultParam, "yes")
		parsed.RawQuery = query.Encode()
	}

	return parsed.String()
}

func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
		if name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(trimmed) {
		if !strings.HasPrefix(token, "dbname=") {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(token, "dbname="))
		name = strings.Trim(name, `"'`)
		if name != "" {
			return name
		}
	}

	return ""
}

// dbHostFromURL returns host:port for logs. Credentials never leave here.
func dbHostFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		return parsed.Host
	}

	host, port := "", ""
	for _, token := range strings.Fields(trimmed) {
		switch {
		case strings.HasPrefix(token, "host="):
			host = strings.TrimPrefix(token, "host=")
		case strings.HasPrefix(token, "port="):
			port = strings.TrimPrefix(token, "port=")
		}
	}
	if host != "" && port != "" {
		return host + ":" + port
	}
	return host
}
