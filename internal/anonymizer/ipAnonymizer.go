package anonymizer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Primitive is the external scrambling library. Implementations mirror the
// native entry points scramble_init_from_file and scramble_ip4.
type Primitive interface {
	InitFromFile(keyFile string, algorithm, rounds uint32, status *int32) int32
	ScrambleIP4(addr uint32, passBits int32) int32
}

// Algorithm selects the primitive's scrambling routine.
type Algorithm uint32

const (
	AlgorithmMD5      Algorithm = 0x01
	AlgorithmBlowfish Algorithm = 0x02
	AlgorithmAES      Algorithm = 0x03
	AlgorithmSHA1     Algorithm = 0x04
)

var algorithmNames = map[Algorithm]string{
	AlgorithmMD5:      "md5",
	AlgorithmBlowfish: "blowfish",
	AlgorithmAES:      "aes",
	AlgorithmSHA1:     "sha1",
}

func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("algorithm(%d)", uint32(a))
}

// ParseAlgorithm maps a case-insensitive algorithm name to its identifier.
func ParseAlgorithm(name string) (Algorithm, error) {
	for a, n := range algorithmNames {
		if strings.EqualFold(name, n) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown scrambling algorithm %q", name)
}

// All 32 bits of every address are scrambled.
const passBits = 0

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine holds the initialized scrambling context. Anonymize is a pure
// function of its input for the lifetime of the engine. An Engine must not be
// used from several goroutines at once, since the native primitive gives no
// such guarantee.
type Engine struct {
	primitive Primitive
	algorithm Algorithm
	keyFile   string
	logger    *slog.Logger
}

// New initializes the primitive with keyFile and algorithm. The key file is
// created by the primitive when it does not exist yet.
func New(p Primitive, keyFile string, algorithm Algorithm, opts ...Option) (*Engine, error) {
	e := &Engine{
		primitive: p,
		algorithm: algorithm,
		keyFile:   keyFile,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}

	if p == nil {
		return nil, &InitializationError{KeyFile: keyFile, Err: errors.New("no scrambling primitive")}
	}
	if err := checkKeyFile(keyFile); err != nil {
		return nil, &InitializationError{KeyFile: keyFile, Err: err}
	}

	if status := p.InitFromFile(keyFile, uint32(algorithm), uint32(algorithm), nil); status != 0 {
		return nil, &InitializationError{KeyFile: keyFile, Status: status}
	}

	e.logger.Debug("scrambler initialized", "key_file", keyFile, "algorithm", algorithm.String())
	return e, nil
}

// checkKeyFile verifies that an existing key file can be read, or that a
// missing one can be created in its directory.
func checkKeyFile(path string) error {
	if path == "" {
		return errors.New("empty key file path")
	}

	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.Mode().IsRegular() {
			return fmt.Errorf("key file %s is not a regular file", path)
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open key file: %w", err)
		}
		return f.Close()
	case errors.Is(err, os.ErrNotExist):
		dir := filepath.Dir(path)
		dirInfo, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("failed to stat key file directory: %w", err)
		}
		if !dirInfo.IsDir() {
			return fmt.Errorf("key file parent %s is not a directory", dir)
		}
		return nil
	default:
		return fmt.Errorf("failed to stat key file: %w", err)
	}
}

// Anonymize maps a to its prefix-preserving pseudonym. The primitive expects
// the address word with its bytes reversed relative to network order, so the
// word is swapped on the way in and swapped back on the way out. The signed
// result is reinterpreted as its low 32 bits.
func (e *Engine) Anonymize(a Address) Address {
	scrambled := uint32(e.primitive.ScrambleIP4(ByteSwap(uint32(a)), passBits))
	return Address(ByteSwap(scrambled))
}

// AnonymizeString parses s, anonymizes it and formats the result.
func (e *Engine) AnonymizeString(s string) (string, error) {
	a, err := ParseAddress(s)
	if err != nil {
		return "", err
	}
	return e.Anonymize(a).String(), nil
}

func (e *Engine) Algorithm() Algorithm { return e.algorithm }

func (e *Engine) KeyFile() string { return e.keyFile }
