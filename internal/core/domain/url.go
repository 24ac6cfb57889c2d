package domain

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// ReconstructURL percent-decodes every route segment on its own and joins the
// decoded segments with "/". Order is preserved and no normalisation of
// slashes, case or scheme is applied: the result is used verbatim both as the
// content locator and as the de-duplication key.
//
// Decoding happens before the join, so an encoded slash inside a segment
// ("a%2Fb") becomes a real slash in the output. A "+" is kept literally.
func ReconstructURL(segments []string) (string, error) {
	decoded := make([]string, len(segments))
	for i, segment := range segments {
		d, err := decodeSegment(segment)
		if err != nil {
			return "", fmt.Errorf("%w: segment %d: %v", ErrInvalidInput, i, err)
		}
		decoded[i] = d
	}
	return strings.Join(decoded, "/"), nil
}

func decodeSegment(segment string) (string, error) {
	d, err := url.PathUnescape(segment)
	if err != nil {
		return "", err
	}
	if !utf8.ValidString(d) {
		return "", fmt.Errorf("malformed utf-8 in %q", segment)
	}
	return d, nil
}

// SplitRouteSegments splits a raw, still-escaped request path into its
// ordered segments. The leading slash is dropped; empty segments in the
// middle or at the end are kept. Returns nil when the path carries no
// segments at all.
func SplitRouteSegments(escapedPath string) []string {
	p := strings.TrimPrefix(escapedPath, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
