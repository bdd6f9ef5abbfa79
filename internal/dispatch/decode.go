package dispatch

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/tidwall/gjson"

	"github.com/snapp-incubator/telemock/internal/vendor"
)

// DefaultMaxBodyBytes bounds a decoded request body when no limit is configured.
const DefaultMaxBodyBytes = 50 << 20

// ErrBodyTooLarge is returned when a body inflates beyond the decoding limit.
var ErrBodyTooLarge = errors.New("decoded body exceeds limit")

// Decompress undoes a transport Content-Encoding, refusing to inflate more than
// limit bytes (limit <= 0 means DefaultMaxBodyBytes). Unknown encodings return
// the body unchanged; snappy in particular is part of the remote write payload
// format, not a transport encoding, and is left alone.
func Decompress(encoding string, raw []byte, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}

	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return raw, nil
	case "gzip", "x-gzip":
		r, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer r.Close()
		return readAll(r, "gzip", limit)
	case "deflate":
		r, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("deflate: %w", err)
		}
		defer r.Close()
		return readAll(r, "deflate", limit)
	case "zstd":
		d, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(uint64(limit)))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer d.Close()
		out, err := d.DecodeAll(raw, nil)
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) {
			return nil, fmt.Errorf("zstd: %w", ErrBodyTooLarge)
		}
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return out, nil
	default:
		return raw, nil
	}
}

func readAll(r io.Reader, name string, limit int64) ([]byte, error) {
	out, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if int64(len(out)) > limit {
		return nil, fmt.Errorf("%s: %w", name, ErrBodyTooLarge)
	}
	return out, nil
}

// DecodeBody classifies a body for the item count extractors: JSON when the
// content type says so and the bytes parse, opaque otherwise.
func DecodeBody(contentType string, raw []byte) vendor.Body {
	b := vendor.Body{Raw: raw, ContentType: contentType}
	if isJSONContentType(contentType) && gjson.ValidBytes(raw) {
		b.JSON = true
	}
	return b
}

func isJSONContentType(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}
