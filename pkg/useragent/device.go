// Package useragent turns request headers into the short device and
// address strings shown in the login history.
package useragent

import (
	"net"
	"net/http"
	"strings"
)

type match struct {
	token   string
	exclude string
	name    string
}

// Order matters: Edge and Opera also claim Chrome, Chrome also claims Safari.
var browsers = []match{
	{token: "Edg/", name: "Edge"},
	{token: "OPR/", name: "Opera"},
	{token: "Firefox/", name: "Firefox"},
	{token: "Chrome/", name: "Chrome"},
	{token: "Safari/", exclude: "Chrome", name: "Safari"},
}

// Mobile platforms first: Android claims Linux, iOS claims Mac OS X.
var platforms = []match{
	{token: "Android", name: "Android"},
	{token: "iPhone", name: "iOS"},
	{token: "iPad", name: "iOS"},
	{token: "Windows NT 10.0", name: "Windows 10/11"},
	{token: "Windows NT 6.3", name: "Windows 8.1"},
	{token: "Windows NT 6.1", name: "Windows 7"},
	{token: "Windows", name: "Windows"},
	{token: "Mac OS X", name: "macOS"},
	{token: "CrOS", name: "ChromeOS"},
	{token: "Linux", name: "Linux"},
}

func lookup(ua string, table []match) (match, bool) {
	for _, m := range table {
		if strings.Contains(ua, m.token) && (m.exclude == "" || !strings.Contains(ua, m.exclude)) {
			return m, true
		}
	}
	return match{}, false
}

// majorVersion reads the digits right after token, e.g. "Chrome/120.0" -> "120".
func majorVersion(ua, token string) string {
	idx := strings.Index(ua, token)
	if idx == -1 {
		return ""
	}
	rest := ua[idx+len(token):]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	return rest[:end]
}

// ExtractDeviceInfo renders the User-Agent as "Browser 120 on OS".
func ExtractDeviceInfo(r *http.Request) string {
	ua := r.Header.Get("User-Agent")
	if ua == "" {
		return "Unknown Device"
	}

	browser := "Unknown Browser"
	version := ""
	if m, ok := lookup(ua, browsers); ok {
		browser = m.name
		token := m.token
		if m.name == "Safari" {
			token = "Version/"
		}
		version = majorVersion(ua, token)
	}

	platform := "Unknown OS"
	if m, ok := lookup(ua, platforms); ok {
		platform = m.name
	}

	if version != "" {
		return browser + " " + version + " on " + platform
	}
	return browser + " on " + platform
}

// ExtractIPAddress prefers proxy headers and falls back to RemoteAddr.
func ExtractIPAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
