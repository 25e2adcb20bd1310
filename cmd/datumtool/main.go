// Command datumtool inspects encoded values and value stores.
//
//	datumtool dump [-json] FILE
//	datumtool ls -db PATH BUCKET [PREFIX]
//	datumtool get -db PATH [-json] BUCKET KEY
//	datumtool put -db PATH BUCKET KEY FILE
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/andreyvit/datum"
	"github.com/andreyvit/datum/bridge"
	"github.com/andreyvit/datum/store"
	"github.com/andreyvit/datum/stream"
)

var errUsage = errors.New("usage")

func main() {
	os.Exit(run())
}

func run() int {
	return runWithArgs(os.Args[1:], os.Stdout, os.Stderr)
}

func runWithArgs(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		_ = writeln(stderr, "Usage: datumtool dump|ls|get|put [options] ...")
		return 2
	}
	cmd, args := args[0], args[1:]

	fs := flag.NewFlagSet("datumtool "+cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	dbPath := fs.String("db", "", "path to the value store")
	asJSON := fs.Bool("json", false, "print values as JSON")
	verbose := fs.Bool("v", false, "log store operations")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	t := &tool{
		stdout:  stdout,
		logger:  logger,
		dbPath:  *dbPath,
		asJSON:  *asJSON,
		verbose: *verbose,
	}

	var err error
	switch cmd {
	case "dump":
		err = t.dump(fs.Args())
	case "ls":
		err = t.ls(fs.Args())
	case "get":
		err = t.get(fs.Args())
	case "put":
		err = t.put(fs.Args())
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
	if errors.Is(err, errUsage) {
		_ = writef(stderr, "error: %v\n", err)
		fs.Usage()
		return 2
	} else if err != nil {
		_ = writef(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

type tool struct {
	stdout  io.Writer
	logger  *slog.Logger
	dbPath  string
	asJSON  bool
	verbose bool
}

func (t *tool) dump(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: dump needs exactly one FILE", errUsage)
	}
	m, err := stream.Map(args[0], stream.Sequential)
	if err != nil {
		return err
	}
	defer m.Close()

	for m.Len() > 0 {
		var v datum.Value
		if err := v.ReadStream(m, false, nil); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		if err := t.print(&v); err != nil {
			return err
		}
	}
	return nil
}

func (t *tool) ls(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: ls needs BUCKET [PREFIX]", errUsage)
	}
	var prefix string
	if len(args) == 2 {
		prefix = args[1]
	}
	s, err := t.open()
	if err != nil {
		return err
	}
	defer s.Close()

	keys, err := s.Keys(args[0], prefix)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := writeln(t.stdout, k); err != nil {
			return err
		}
	}
	return nil
}

func (t *tool) get(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: get needs BUCKET KEY", errUsage)
	}
	s, err := t.open()
	if err != nil {
		return err
	}
	defer s.Close()

	v, err := s.Get(args[0], args[1])
	if err != nil {
		return err
	}
	return t.print(v)
}

func (t *tool) put(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("%w: put needs BUCKET KEY FILE", errUsage)
	}
	f, err := stream.Open(args[2])
	if err != nil {
		return err
	}
	defer f.Close()
	var v datum.Value
	if err := v.ReadStream(f, false, nil); err != nil {
		return fmt.Errorf("%s: %w", args[2], err)
	}

	s, err := t.open()
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Put(args[0], args[1], &v)
}

func (t *tool) open() (*store.Store, error) {
	if t.dbPath == "" {
		return nil, fmt.Errorf("%w: -db is required", errUsage)
	}
	return store.Open(t.dbPath, store.Options{
		Logger:  t.logger,
		Verbose: t.verbose,
	})
}

func (t *tool) print(v *datum.Value) error {
	if !t.asJSON {
		return writeln(t.stdout, v.String())
	}
	raw, err := bridge.MarshalJSON(v)
	if err != nil {
		return err
	}
	return writeln(t.stdout, string(raw))
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
