// package dataset indexes the unclaimed-works reference table by ISRC.
//
// The source is a multi-gigabyte tab-separated file with no header. Rows are
// streamed in fixed-size windows so peak memory stays bounded; the index
// itself is the only structure that grows with the input.
package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"rightscan/internal/shared"
)

// DefaultChunkSize is the number of rows consumed per window.
const DefaultChunkSize = 100000

// isrcLength is the standard ISRC length. Length is the only format check
// performed; character-class validation is advisory and not enforced.
const isrcLength = 12

// maxRowBytes caps how much of a single row is buffered. Rows beyond the cap
// are drained and skipped as malformed; they never abort the stream.
const maxRowBytes = 4 * 1024 * 1024

// Record is one retained reference row, keyed by its normalized ISRC.
type Record struct {
	RowID   string `json:"row_id"`
	TrackID string `json:"track_id"`
	Code    string `json:"code1"`
	ISRC    string `json:"isrc"`
}

// Index maps normalized ISRC to the first reference row seen for it.
type Index map[string]Record

// SkipReason classifies why a row was excluded from the index.
type SkipReason int

const (
	SkipNone SkipReason = iota
	SkipMalformed
	SkipSentinel
	SkipLength
	SkipDuplicate
)

func (s SkipReason) String() string {
	switch s {
	case SkipNone:
		return "none"
	case SkipMalformed:
		return "malformed"
	case SkipSentinel:
		return "sentinel"
	case SkipLength:
		return "length"
	case SkipDuplicate:
		return "duplicate"
	default:
		return ""
	}
}

// rowResult is the explicit per-row outcome: either a candidate record or a
// skip reason, never a swallowed error.
type rowResult struct {
	record Record
	skip   SkipReason
}

// SkipCounts aggregates per-reason row skips. The counts are advisory
// observability data, not part of the index contract.
type SkipCounts struct {
	Malformed int
	Sentinel  int
	Length    int
	Duplicate int
}

// Total returns the sum of all skip counters.
func (s SkipCounts) Total() int {
	return s.Malformed + s.Sentinel + s.Length + s.Duplicate
}

// BuildResult contains the index and the row accounting for one build.
type BuildResult struct {
	Index       Index
	TotalRows   int
	IndexedRows int
	Chunks      int
	Skips       SkipCounts
}

// Indexer streams a reference table into an ISRC-keyed index.
type Indexer struct {
	chunkSize int
	logger    *log.Logger
}

// NewIndexer creates an Indexer with the given window size (rows per chunk).
func NewIndexer(chunkSize int, logger *log.Logger) *Indexer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Indexer{chunkSize: chunkSize, logger: logger}
}

// Build opens the reference file at path and indexes it.
//
// A file that cannot be opened yields [shared.ErrDatasetUnavailable] and an
// empty result; callers must treat an empty index as non-proceedable.
func (ix *Indexer) Build(path string) (*BuildResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return &BuildResult{Index: Index{}}, fmt.Errorf("%w: %v", shared.ErrDatasetUnavailable, err)
	}
	defer f.Close()

	ix.logger.Info("indexing reference dataset", "path", path, "chunk_size", ix.chunkSize)
	return ix.BuildFrom(f)
}

// BuildFrom indexes a row stream.
//
// Rows are parsed one at a time into explicit per-row results and flushed into
// the index in windows of the configured chunk size. Windowing is a memory
// knob only: the resulting index is identical to a single-pass build.
func (ix *Indexer) BuildFrom(r io.Reader) (*BuildResult, error) {
	result := &BuildResult{Index: Index{}}

	reader := bufio.NewReaderSize(r, 64*1024)
	chunk := make([]rowResult, 0, ix.chunkSize)

	flush := func() {
		if len(chunk) == 0 {
			return
		}
		result.Chunks++
		for _, row := range chunk {
			if row.skip != SkipNone {
				ix.countSkip(result, row.skip)
				continue
			}
			// First write wins; later duplicates are discarded.
			if _, exists := result.Index[row.record.ISRC]; exists {
				ix.countSkip(result, SkipDuplicate)
				continue
			}
			result.Index[row.record.ISRC] = row.record
			result.IndexedRows++
		}
		chunk = chunk[:0]
	}

	for {
		line, oversized, err := readRow(reader)
		atEOF := errors.Is(err, io.EOF)
		if err != nil && !atEOF {
			return &BuildResult{Index: Index{}}, fmt.Errorf("%w: read failed after %d rows: %v", shared.ErrDatasetUnavailable, result.TotalRows, err)
		}
		if atEOF && line == "" && !oversized {
			break
		}

		result.TotalRows++
		if oversized {
			chunk = append(chunk, rowResult{skip: SkipMalformed})
		} else {
			chunk = append(chunk, parseRow(line))
		}

		if len(chunk) >= ix.chunkSize {
			flush()
		}
		if result.TotalRows%1000000 == 0 {
			ix.logger.Info("indexing progress", "rows", result.TotalRows, "unique_isrcs", len(result.Index))
		}

		if atEOF {
			break
		}
	}
	flush()

	ix.logger.Info("indexing complete",
		"rows", result.TotalRows,
		"indexed", result.IndexedRows,
		"skipped", result.Skips.Total(),
		"chunks", result.Chunks)

	return result, nil
}

// readRow reads one newline-terminated row. A row that outgrows maxRowBytes
// is drained to its end and reported as oversized so the caller can skip it
// and keep consuming the stream.
func readRow(r *bufio.Reader) (line string, oversized bool, err error) {
	var b strings.Builder
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			return b.String(), oversized, err
		}
		if !oversized {
			if b.Len()+len(chunk) > maxRowBytes {
				oversized = true
				b.Reset()
			} else {
				b.Write(chunk)
			}
		}
		if !isPrefix {
			return b.String(), oversized, nil
		}
	}
}

func (ix *Indexer) countSkip(result *BuildResult, reason SkipReason) {
	switch reason {
	case SkipMalformed:
		result.Skips.Malformed++
	case SkipSentinel:
		result.Skips.Sentinel++
	case SkipLength:
		result.Skips.Length++
	case SkipDuplicate:
		result.Skips.Duplicate++
	}
}

// parseRow validates a single tab-separated row. Only the first four columns
// are read; any further columns are ignored.
func parseRow(line string) rowResult {
	if !utf8.ValidString(line) {
		return rowResult{skip: SkipMalformed}
	}

	cols := strings.Split(line, "\t")
	if len(cols) < 4 {
		return rowResult{skip: SkipMalformed}
	}

	isrc := strings.ToUpper(strings.TrimSpace(cols[3]))
	switch isrc {
	case "", "NAN", "NA", "NONE":
		return rowResult{skip: SkipSentinel}
	}
	if len(isrc) != isrcLength {
		return rowResult{skip: SkipLength}
	}

	return rowResult{record: Record{
		RowID:   cols[0],
		TrackID: cols[1],
		Code:    cols[2],
		ISRC:    isrc,
	}}
}
