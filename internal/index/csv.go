package index

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Encoding names accepted by Options.Encoding.
const (
	EncodingAuto   = "auto"
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "iso-8859-1"
)

const sniffSize = 64 * 1024

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVOptions configures the streaming CSV parser.
type CSVOptions struct {
	Delimiter  rune // default ','
	LazyQuotes bool
	TrimSpace  bool
}

// StreamCSV reads delimited rows from r and sends them to a channel. The
// header row is not treated specially. Errors are sent on the error channel.
// Both channels are closed when processing completes.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 256)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1 // DGII exports are ragged

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}

			if opts.TrimSpace {
				for i, field := range record {
					record[i] = strings.TrimSpace(field)
				}
			}

			select {
			case rowCh <- record:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// decodeReader wraps r so the CSV parser always sees UTF-8. With
// EncodingAuto a first 64 KiB that is not valid UTF-8 selects ISO-8859-1 for
// the whole file. Otherwise the stream is read as UTF-8, and any byte that
// is not part of a valid UTF-8 sequence further on is decoded as Latin-1. A
// UTF-8 BOM is dropped.
func decodeReader(r io.Reader, encoding string) (io.Reader, string, error) {
	br := bufio.NewReaderSize(r, sniffSize)
	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", eris.Wrap(err, "csv: sniff encoding")
	}
	truncated := err == nil || err == bufio.ErrBufferFull

	var mixed bool
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", EncodingAuto:
		if looksUTF8(head, truncated) {
			encoding = EncodingUTF8
			mixed = true
		} else {
			encoding = EncodingLatin1
		}
	case EncodingUTF8, "utf8":
		encoding = EncodingUTF8
	case EncodingLatin1, "latin1", "latin-1":
		encoding = EncodingLatin1
	default:
		return nil, "", eris.Errorf("csv: unsupported encoding %q", encoding)
	}

	if encoding == EncodingLatin1 {
		return charmap.ISO8859_1.NewDecoder().Reader(br), encoding, nil
	}
	if bytes.HasPrefix(head, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, "", eris.Wrap(err, "csv: skip bom")
		}
	}
	if mixed {
		return transform.NewReader(br, latin1Fallback{}), encoding, nil
	}
	return br, encoding, nil
}

// looksUTF8 reports whether b is valid UTF-8. When b was cut at the sniff
// window, a multi-byte rune split at the end is tolerated.
func looksUTF8(b []byte, truncated bool) bool {
	if !truncated {
		return utf8.Valid(b)
	}
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if utf8.Valid(b) {
			return true
		}
		b = b[:len(b)-1]
	}
	return utf8.Valid(b)
}

// latin1Fallback copies valid UTF-8 through and decodes every other byte as
// ISO-8859-1.
type latin1Fallback struct{ transform.NopResetter }

func (latin1Fallback) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if c < utf8.RuneSelf {
			if nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = c
			nDst++
			nSrc++
			continue
		}

		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && size == 1 {
			if !atEOF && !utf8.FullRune(src[nSrc:]) {
				return nDst, nSrc, transform.ErrShortSrc
			}
			if nDst+utf8.RuneLen(rune(c)) > len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			nDst += utf8.EncodeRune(dst[nDst:], rune(c))
			nSrc++
			continue
		}

		if nDst+size > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += copy(dst[nDst:], src[nSrc:nSrc+size])
		nSrc += size
	}
	return nDst, nSrc, nil
}
