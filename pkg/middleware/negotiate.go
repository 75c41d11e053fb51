package middleware

import (
	"mime"
	"net/http"
	"strconv"
	"strings"
)

// markdownTypes are the media types answered with converted Markdown.
var markdownTypes = []string{"text/markdown", "text/x-markdown"}

// WantsMarkdown reports whether r asks for Markdown over HTML. Only an
// explicit text/markdown entry counts; wildcards never trigger conversion.
// When both are listed with equal quality Markdown wins, since browsers
// never send text/markdown.
func WantsMarkdown(r *http.Request) bool {
	accept := r.Header.Values("Accept")
	if len(accept) == 0 {
		return false
	}

	var mdQ, htmlQ float64
	for _, header := range accept {
		for _, part := range strings.Split(header, ",") {
			mediaType, q, ok := parseAcceptPart(part)
			if !ok {
				continue
			}
			switch {
			case isMarkdownType(mediaType):
				mdQ = max(mdQ, q)
			case mediaType == "text/html", mediaType == "application/xhtml+xml":
				htmlQ = max(htmlQ, q)
			case mediaType == "text/*", mediaType == "*/*":
				// Wildcards only compete with an explicit Markdown entry.
				htmlQ = max(htmlQ, q*0.999)
			}
		}
	}
	return mdQ > 0 && mdQ >= htmlQ
}

func isMarkdownType(mediaType string) bool {
	for _, t := range markdownTypes {
		if mediaType == t {
			return true
		}
	}
	return false
}

// parseAcceptPart returns the lowercased media type and its q value. A
// missing or malformed q is 1.
func parseAcceptPart(part string) (string, float64, bool) {
	part = strings.TrimSpace(part)
	if part == "" {
		return "", 0, false
	}
	mediaType, params, err := mime.ParseMediaType(part)
	if err != nil {
		return "", 0, false
	}
	q := 1.0
	if raw, ok := params["q"]; ok {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= 0 && v <= 1 {
			q = v
		}
	}
	return mediaType, q, true
}

// isConvertible reports whether a response with this content type holds HTML.
func isConvertible(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// etagMatches implements the weak comparison of If-None-Match.
func etagMatches(ifNoneMatch, etag string) bool {
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		if strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
