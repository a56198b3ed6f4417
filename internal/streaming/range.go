package streaming

import (
	"strconv"
	"strings"

	"github.com/pezzottify/catalog-server/internal/apierr"
)

// byteRange is an inclusive [start, end] span into a file of a known size.
type byteRange struct {
	start, end int64
}

// length returns the number of bytes the range covers.
func (r byteRange) length() int64 { return r.end - r.start + 1 }

// parseRange parses a single "bytes=start-end" Range header value against a
// file of the given size. An empty header means "no range requested" and is
// reported via ok=false with a nil error. Anything structurally invalid, or
// a range outside [0, size), is reported as apierr.RangeNotSatisfiable.
func parseRange(header string, size int64) (r byteRange, ok bool, err *apierr.Error) {
	if header == "" {
		return byteRange{}, false, nil
	}
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return byteRange{}, false, apierr.RangeNotSatisfiable("unsupported range unit")
	}
	spec := strings.TrimPrefix(header, prefix)
	if strings.Contains(spec, ",") {
		return byteRange{}, false, apierr.RangeNotSatisfiable("multiple ranges not supported")
	}

	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return byteRange{}, false, apierr.RangeNotSatisfiable("malformed range")
	}

	startStr, endStr := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])

	var start, end int64
	switch {
	case startStr == "" && endStr == "":
		return byteRange{}, false, apierr.RangeNotSatisfiable("malformed range")
	case startStr == "":
		// Suffix range: "bytes=-500" means the last 500 bytes.
		suffixLen, convErr := strconv.ParseInt(endStr, 10, 64)
		if convErr != nil || suffixLen <= 0 {
			return byteRange{}, false, apierr.RangeNotSatisfiable("malformed range")
		}
		if suffixLen > size {
			suffixLen = size
		}
		start = size - suffixLen
		end = size - 1
	default:
		var convErr error
		start, convErr = strconv.ParseInt(startStr, 10, 64)
		if convErr != nil || start < 0 {
			return byteRange{}, false, apierr.RangeNotSatisfiable("malformed range")
		}
		if endStr == "" {
			end = size - 1
		} else {
			end, convErr = strconv.ParseInt(endStr, 10, 64)
			if convErr != nil {
				return byteRange{}, false, apierr.RangeNotSatisfiable("malformed range")
			}
		}
	}

	if start > end || end >= size || start < 0 {
		return byteRange{}, false, apierr.RangeNotSatisfiable("range outside file bounds")
	}
	return byteRange{start: start, end: end}, true, nil
}
