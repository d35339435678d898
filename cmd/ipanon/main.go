package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/ulikunitz/xz"

	"github.com/kulikvl/ip-anonymizer/internal/anonymizer"
	"github.com/kulikvl/ip-anonymizer/internal/logging"
	"github.com/kulikvl/ip-anonymizer/internal/native"
	"github.com/kulikvl/ip-anonymizer/internal/transform"
)

type cli struct {
	KeyFile    string `arg:"" name:"key_file_path" help:"Key file; created by the scrambling library when absent."`
	Library    string `arg:"" name:"library_path" help:"Path of the scrambling shared library."`
	IPField1   string `arg:"" name:"ip_field_1" help:"First field holding an IPv4 address."`
	IPField2   string `arg:"" name:"ip_field_2" help:"Second field holding an IPv4 address."`
	AnonField1 string `arg:"" name:"anon_field_1" help:"Field receiving the anonymized first address."`
	AnonField2 string `arg:"" name:"anon_field_2" help:"Field receiving the anonymized second address."`

	Algorithm    string `help:"Scrambling algorithm (${enum})." enum:"md5,blowfish,aes,sha1" default:"blowfish"`
	HeaderPolicy string `help:"How anonymized fields missing from the input header are handled (${enum})." enum:"append,require" default:"append"`
	OnParseError string `help:"What to do with a malformed address (${enum})." enum:"abort,skip-field,skip-record" default:"abort"`
	LogLevel     string `help:"Log level (${enum})." enum:"off,debug,info,warn,error" default:"off"`
	LogFormat    string `help:"Log format (${enum})." enum:"text,json" default:"text"`
	LogFile      string `help:"Write logs to this file instead of stderr." type:"path"`
}

// primitive is a loaded scrambling library.
type primitive interface {
	anonymizer.Primitive
	Close() error
}

// openPrimitive is replaced in tests.
var openPrimitive = func(path string) (primitive, error) {
	lib, err := native.Open(path)
	if err != nil {
		return nil, err
	}
	return lib, nil
}

var xzMagic = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one anonymization pass and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var c cli
	exitCode := -1
	parser, err := kong.New(&c,
		kong.Name("ipanon"),
		kong.Description("Prefix-preserving anonymization of IPv4 fields in a CSV stream read from stdin."),
		kong.Writers(stderr, stderr),
		kong.Exit(func(code int) { exitCode = code }),
	)
	if err != nil {
		fmt.Fprintf(stderr, "ipanon: %v\n", err)
		return 1
	}

	_, err = parser.Parse(args)
	if exitCode >= 0 {
		return exitCode
	}
	if err != nil {
		fmt.Fprintf(stderr, "ipanon: %v\n", &UsageError{Err: err})
		var perr *kong.ParseError
		if errors.As(err, &perr) && perr.Context != nil {
			_ = perr.Context.PrintUsage(true)
		}
		return 1
	}

	logger, closeLog, err := c.logger(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "ipanon: %v\n", err)
		return 1
	}
	defer closeLog()
	logger = logger.With("run_id", uuid.NewString())

	if err := c.anonymize(logger, stdin, stdout); err != nil {
		logger.Error("anonymization failed", "error", err)
		fmt.Fprintf(stderr, "ipanon: %v\n", err)
		return 1
	}
	return 0
}

// UsageError reports invalid command-line arguments.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return "usage: " + e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

func (c *cli) logger(stderr io.Writer) (*slog.Logger, func(), error) {
	w := stderr
	closeFn := func() {}
	if c.LogFile != "" && c.LogLevel != logging.LevelOff {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}
	logger, err := logging.New(w, c.LogLevel, logging.Format(c.LogFormat))
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return logger, closeFn, nil
}

func (c *cli) anonymize(logger *slog.Logger, stdin io.Reader, stdout io.Writer) error {
	algorithm, err := anonymizer.ParseAlgorithm(c.Algorithm)
	if err != nil {
		return err
	}
	headerPolicy, err := transform.ParseHeaderPolicy(c.HeaderPolicy)
	if err != nil {
		return err
	}
	parsePolicy, err := transform.ParseParsePolicy(c.OnParseError)
	if err != nil {
		return err
	}

	lib, err := openPrimitive(c.Library)
	if err != nil {
		return err
	}
	defer func() {
		if err := lib.Close(); err != nil {
			logger.Warn("failed to close scrambling library", "error", err)
		}
	}()
	logger.Debug("scrambling library loaded", "path", c.Library)

	engine, err := anonymizer.New(lib, c.KeyFile, algorithm, anonymizer.WithLogger(logger))
	if err != nil {
		return err
	}

	tr, err := transform.New(engine, transform.Config{
		Mappings: [2]transform.FieldMapping{
			{Source: c.IPField1, Target: c.AnonField1},
			{Source: c.IPField2, Target: c.AnonField2},
		},
		HeaderPolicy: headerPolicy,
		OnParseError: parsePolicy,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	in, err := decompress(stdin)
	if err != nil {
		return err
	}
	_, err = tr.Run(in, stdout)
	return err
}

// decompress transparently unwraps xz-compressed input.
func decompress(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(xzMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if !bytes.Equal(head, xzMagic) {
		return br, nil
	}
	xr, err := xz.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to open xz input: %w", err)
	}
	return xr, nil
}
