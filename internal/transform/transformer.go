// Package transform streams CSV records through an address anonymizer.
package transform

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/kulikvl/ip-anonymizer/internal/anonymizer"
)

// Anonymizer maps one address string to its pseudonym.
type Anonymizer interface {
	AnonymizeString(s string) (string, error)
}

// FieldMapping names the field an address is read from and the field its
// anonymized form is written to.
type FieldMapping struct {
	Source string
	Target string
}

type State int

const (
	StateIdle State = iota
	StateStreaming
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Config struct {
	Mappings     [2]FieldMapping
	HeaderPolicy HeaderPolicy
	OnParseError ParsePolicy
	Logger       *slog.Logger
}

type Stats struct {
	Records        int
	Written        int
	Anonymized     int
	SkippedFields  int
	SkippedRecords int
}

// Transformer reads a header line followed by records, anonymizes the
// configured source fields into their target fields and writes every record
// before reading the next. A Transformer runs once.
type Transformer struct {
	anon   Anonymizer
	cfg    Config
	logger *slog.Logger
	state  State
	stats  Stats
}

func New(anon Anonymizer, cfg Config) (*Transformer, error) {
	if anon == nil {
		return nil, errors.New("nil anonymizer")
	}
	for i, m := range cfg.Mappings {
		if m.Source == "" || m.Target == "" {
			return nil, fmt.Errorf("mapping %d: source and target field names must be set", i+1)
		}
	}
	if cfg.Mappings[0].Target == cfg.Mappings[1].Target {
		return nil, fmt.Errorf("both mappings write to field %q", cfg.Mappings[0].Target)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Transformer{anon: anon, cfg: cfg, logger: logger}, nil
}

func (t *Transformer) State() State { return t.state }

func (t *Transformer) Stats() Stats { return t.stats }

// Run transforms in to out. On error the records already written stay
// written; the failing record is never written.
func (t *Transformer) Run(in io.Reader, out io.Writer) (Stats, error) {
	if t.state != StateIdle {
		return t.stats, ErrAlreadyRun
	}
	t.state = StateStreaming

	if err := t.stream(in, out); err != nil {
		t.state = StateFailed
		return t.stats, err
	}
	t.state = StateDone
	t.logger.Info("stream transformed",
		"records", t.stats.Records,
		"written", t.stats.Written,
		"anonymized", t.stats.Anonymized,
		"skipped_fields", t.stats.SkippedFields,
		"skipped_records", t.stats.SkippedRecords,
	)
	return t.stats, nil
}

type slot struct {
	mapping FieldMapping
	src     int
	dst     int
}

type schema struct {
	header []string
	width  int
	slots  [2]slot
}

func (t *Transformer) stream(in io.Reader, out io.Writer) error {
	r := csv.NewReader(in)
	r.ReuseRecord = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		t.logger.Warn("input has no header line")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	sc, err := t.schema(slices.Clone(header))
	if err != nil {
		return err
	}
	t.logger.Debug("header read", "fields", len(sc.header), "appended", len(sc.header)-sc.width)

	w := csv.NewWriter(out)
	if err := writeRow(w, sc.header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := make([]string, len(sc.header))
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read record: %w", err)
		}
		t.stats.Records++
		line, _ := r.FieldPos(0)

		copy(row, rec)
		clear(row[sc.width:])

		keep, err := t.apply(sc, rec, row, line)
		if err != nil {
			return err
		}
		if !keep {
			t.stats.SkippedRecords++
			continue
		}

		if err := writeRow(w, row); err != nil {
			return fmt.Errorf("failed to write record from line %d: %w", line, err)
		}
		t.stats.Written++
	}
}

func writeRow(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (t *Transformer) schema(header []string) (schema, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; dup {
			return schema{}, &SchemaError{Field: name, Reason: "appears more than once"}
		}
		index[name] = i
	}

	sc := schema{header: header, width: len(header)}
	for i, m := range t.cfg.Mappings {
		src, ok := index[m.Source]
		if !ok {
			return schema{}, &SchemaError{Field: m.Source, Reason: "source field not in header"}
		}

		dst, ok := index[m.Target]
		if !ok {
			if t.cfg.HeaderPolicy == HeaderRequire {
				return schema{}, &SchemaError{Field: m.Target, Reason: "target field not in header"}
			}
			dst = len(sc.header)
			sc.header = append(sc.header, m.Target)
			index[m.Target] = dst
		}
		sc.slots[i] = slot{mapping: m, src: src, dst: dst}
	}
	return sc, nil
}

// apply fills the target fields of row from the source fields of rec. Source
// values are always read from rec, so one mapping never sees the other's
// output.
func (t *Transformer) apply(sc schema, rec, row []string, line int) (bool, error) {
	anonymized := 0
	for _, s := range sc.slots {
		v := rec[s.src]
		if v == "" {
			continue
		}

		anon, err := t.anon.AnonymizeString(v)
		if err != nil {
			if !errors.Is(err, anonymizer.ErrInvalidAddress) {
				return false, &RecordError{Line: line, Field: s.mapping.Source, Err: err}
			}
			switch t.cfg.OnParseError {
			case ParseSkipField:
				t.stats.SkippedFields++
				t.logger.Warn("malformed address, field left unset", "line", line, "field", s.mapping.Source)
				continue
			case ParseSkipRecord:
				t.logger.Warn("malformed address, record dropped", "line", line, "field", s.mapping.Source)
				return false, nil
			default:
				return false, &RecordError{Line: line, Field: s.mapping.Source, Err: err}
			}
		}

		row[s.dst] = anon
		anonymized++
	}
	t.stats.Anonymized += anonymized
	return true, nil
}
