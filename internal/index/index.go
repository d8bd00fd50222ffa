// Package index builds the in-memory RNC lookup table from the bulk DGII
// taxpayer dataset.
package index

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/rnc-cli/internal/rnc"
)

// Options configures dataset parsing.
type Options struct {
	Delimiter string // single character, default ","
	Encoding  string // auto, utf-8 or iso-8859-1
}

// Stats summarizes one dataset load.
type Stats struct {
	Rows       int           `json:"rows" yaml:"rows"`
	Records    int           `json:"records" yaml:"records"`
	Skipped    int           `json:"skipped" yaml:"skipped"`
	Duplicates int           `json:"duplicates" yaml:"duplicates"`
	Encoding   string        `json:"encoding" yaml:"encoding"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
}

// Index is an immutable RNC → record table. Reads need no locking.
type Index struct {
	records  map[string]rnc.Record
	path     string
	loadedAt time.Time
	missing  bool
	stats    Stats
}

// Empty returns an index with no records. Its LoadedAt is zero.
func Empty() *Index {
	return &Index{records: map[string]rnc.Record{}}
}

// Load builds an index from the dataset at path. A missing file is not an
// error: the index is empty and a warning is logged, leaving the resolver to
// the remote path. Any other failure is a LoadError.
func Load(ctx context.Context, path string, opts Options) (*Index, error) {
	log := zap.L().With(zap.String("component", "rnc_index"), zap.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("rnc dataset not found, serving remote lookups only")
			idx := Empty()
			idx.path = path
			idx.missing = true
			return idx, nil
		}
		return nil, rnc.WrapError(rnc.KindLoad, "open dataset", eris.Wrap(err, "index: open"))
	}
	defer f.Close() //nolint:errcheck

	idx, err := Read(ctx, f, opts)
	if err != nil {
		return nil, err
	}
	idx.path = path

	log.Info("loaded rnc dataset",
		zap.Int("records", idx.stats.Records),
		zap.Int("skipped", idx.stats.Skipped),
		zap.Int("duplicates", idx.stats.Duplicates),
		zap.String("encoding", idx.stats.Encoding),
		zap.Duration("duration", idx.stats.Duration),
	)
	return idx, nil
}

// LoadOrEmpty is Load that degrades a LoadError to an empty index after
// logging it. It never returns nil.
func LoadOrEmpty(ctx context.Context, path string, opts Options) *Index {
	idx, err := Load(ctx, path, opts)
	if err != nil {
		zap.L().Warn("rnc dataset unusable, serving remote lookups only",
			zap.String("path", path),
			zap.Error(err),
		)
		idx = Empty()
		idx.path = path
	}
	return idx
}

// Read builds an index from a delimited stream whose first row is the header.
func Read(ctx context.Context, r io.Reader, opts Options) (*Index, error) {
	start := time.Now()

	delim, err := parseDelimiter(opts.Delimiter)
	if err != nil {
		return nil, rnc.WrapError(rnc.KindLoad, "invalid delimiter", err)
	}

	decoded, encoding, err := decodeReader(r, opts.Encoding)
	if err != nil {
		return nil, rnc.WrapError(rnc.KindLoad, "decode dataset", err)
	}

	rowCh, errCh := StreamCSV(ctx, decoded, CSVOptions{
		Delimiter:  delim,
		LazyQuotes: true,
		TrimSpace:  true,
	})

	idx := &Index{records: make(map[string]rnc.Record)}
	idx.stats.Encoding = encoding

	var (
		cols      columnMap
		haveHead  bool
		headerErr error
	)
	for row := range rowCh {
		if !haveHead {
			haveHead = true
			var ok bool
			if cols, ok = mapHeader(row); !ok {
				headerErr = eris.Errorf("index: no identifier column in header %q", row)
			}
			continue
		}
		if headerErr != nil {
			continue // drain so the parser goroutine exits
		}

		idx.stats.Rows++
		id := cols.get(row, fieldRNC)
		if id == "" {
			idx.stats.Skipped++
			continue
		}
		if _, dup := idx.records[id]; dup {
			idx.stats.Duplicates++
		}
		idx.records[id] = rnc.Record{
			RNC:                 id,
			Name:                cols.get(row, fieldName),
			Status:              cols.get(row, fieldStatus),
			EconomicActivity:    cols.get(row, fieldActivity),
			OperationsStartDate: cols.get(row, fieldStartDate),
			PaymentRegime:       cols.get(row, fieldRegime),
			Source:              rnc.SourceLocal,
		}
	}
	if err := <-errCh; err != nil {
		return nil, rnc.WrapError(rnc.KindLoad, "parse dataset", err)
	}
	if !haveHead {
		return nil, rnc.NewError(rnc.KindLoad, "dataset is empty")
	}
	if headerErr != nil {
		return nil, rnc.WrapError(rnc.KindLoad, "dataset header", headerErr)
	}

	idx.stats.Records = len(idx.records)
	idx.stats.Duration = time.Since(start)
	idx.loadedAt = time.Now()
	return idx, nil
}

// Lookup returns the record for the first candidate form of raw present in
// the index.
func (idx *Index) Lookup(raw string) (rnc.Record, bool) {
	if idx == nil {
		return rnc.Record{}, false
	}
	for _, key := range rnc.Candidates(raw) {
		if rec, ok := idx.records[key]; ok {
			return rec, true
		}
	}
	return rnc.Record{}, false
}

// Len returns the number of distinct identifiers.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.records)
}

// Path is the dataset file the index was loaded from, if any.
func (idx *Index) Path() string { return idx.path }

// LoadedAt is when the index finished building, zero if nothing was loaded.
func (idx *Index) LoadedAt() time.Time { return idx.loadedAt }

// Stats returns load counters.
func (idx *Index) Stats() Stats { return idx.stats }

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return ',', nil
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, eris.Errorf("index: delimiter must be one character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
