// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Program jsonout seals JSON records into tamper-evident logs and verifies
// them.
//
// Usage:
//
//	jsonout seal [-config c] [-append] (-o file | -db path) [input]
//	jsonout verify [-config c] (-db path | file)
//	jsonout digest [-config c] [-workers n] [input]
//	jsonout dump [-v] -db path
//
// Input holds one JSON object per line, each with a leading "class" member.
// Settings are read from the -config file and from JSONOUT_* environment
// variables; a .env file in the working directory is loaded first.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/creachadair/jsonout"
	"github.com/creachadair/jsonout/auditlog"
	"github.com/creachadair/jsonout/config"
	"github.com/creachadair/jsonout/record"
	"github.com/creachadair/jsonout/sqlsink"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, in io.Reader, out, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}
	switch args[0] {
	case "seal":
		return cmdSeal(args[1:], in, out, errOut)
	case "verify":
		return cmdVerify(args[1:], out, errOut)
	case "digest":
		return cmdDigest(args[1:], in, out, errOut)
	case "dump":
		return cmdDump(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "jsonout: seal and verify hash-chained JSON records")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  jsonout seal [-config c] [-append] (-o file | -db path) [input]")
	fmt.Fprintln(w, "  jsonout verify [-config c] (-db path | file)")
	fmt.Fprintln(w, "  jsonout digest [-config c] [-workers n] [input]")
	fmt.Fprintln(w, "  jsonout dump [-v] -db path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Hash algorithms:")
	for _, name := range jsonout.Algorithms() {
		fmt.Fprintf(w, "  %s\n", name)
	}
}

// env is the settings shared by the subcommands.
type env struct {
	cfg  config.Config
	log  *slog.Logger
	opts *jsonout.Options
}

func loadEnv(path string, errOut io.Writer) (*env, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	lg := cfg.Logger(errOut)
	opts, err := cfg.Options(lg)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: lg, opts: opts}, nil
}

func cmdSeal(args []string, in io.Reader, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("seal", flag.ContinueOnError)
	fs.SetOutput(errOut)
	cfgPath := fs.String("config", "", "Settings file (YAML or JSON)")
	outPath := fs.String("o", "", "Output log file")
	dbPath := fs.String("db", "", "Output SQLite record store")
	doAppend := fs.Bool("append", false, "Continue an existing log instead of replacing it")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if (*outPath == "") == (*dbPath == "") || fs.NArg() > 1 {
		fmt.Fprintln(errOut, "usage: jsonout seal [-config c] [-append] (-o file | -db path) [input]")
		return 2
	}
	e, err := loadEnv(*cfgPath, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "seal: %v\n", err)
		return 1
	}
	objs, err := readInput(fs.Arg(0), in)
	if err != nil {
		fmt.Fprintf(errOut, "seal: %v\n", err)
		return 1
	}

	var w io.Writer
	var prior []string
	if *dbPath != "" {
		ctx := context.Background()
		st, err := sqlsink.Open(ctx, *dbPath)
		if err != nil {
			fmt.Fprintf(errOut, "seal: %v\n", err)
			return 1
		}
		defer st.Close()
		st.SetLogger(e.log)
		prior, err = st.Bodies(ctx)
		if err != nil {
			fmt.Fprintf(errOut, "seal: %v\n", err)
			return 1
		}
		if len(prior) != 0 && !*doAppend {
			fmt.Fprintf(errOut, "seal: store %q is not empty (use -append)\n", *dbPath)
			return 1
		}
		w = st
	} else {
		flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
		if *doAppend {
			prior, err = readLines(*outPath, nil)
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(errOut, "seal: %v\n", err)
				return 1
			}
			flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
		}
		f, err := os.OpenFile(*outPath, flags, 0644)
		if err != nil {
			fmt.Fprintf(errOut, "seal: %v\n", err)
			return 1
		}
		defer f.Close()
		w = f
	}

	lg, err := auditlog.Resume(w, e.opts, prior)
	if err != nil {
		fmt.Fprintf(errOut, "seal: existing log: %v\n", err)
		return 1
	}
	for _, obj := range objs {
		if err := lg.Put(obj); err != nil {
			fmt.Fprintf(errOut, "seal: %v\n", err)
			return 1
		}
	}
	e.log.Info("sealed records", "count", len(objs), "head", lg.Head())
	fmt.Fprintln(out, lg.Head())
	return 0
}

func cmdVerify(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(errOut)
	cfgPath := fs.String("config", "", "Settings file (YAML or JSON)")
	dbPath := fs.String("db", "", "SQLite record store to verify")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if (*dbPath == "") == (fs.NArg() == 0) || fs.NArg() > 1 {
		fmt.Fprintln(errOut, "usage: jsonout verify [-config c] (-db path | file)")
		return 2
	}
	e, err := loadEnv(*cfgPath, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "verify: %v\n", err)
		return 1
	}

	var recs []string
	if *dbPath != "" {
		ctx := context.Background()
		st, err := sqlsink.Open(ctx, *dbPath)
		if err != nil {
			fmt.Fprintf(errOut, "verify: %v\n", err)
			return 1
		}
		defer st.Close()
		recs, err = st.Bodies(ctx)
		if err != nil {
			fmt.Fprintf(errOut, "verify: %v\n", err)
			return 1
		}
	} else if recs, err = readLines(fs.Arg(0), nil); err != nil {
		fmt.Fprintf(errOut, "verify: %v\n", err)
		return 1
	}

	v, err := auditlog.NewVerifier(e.opts)
	if err != nil {
		fmt.Fprintf(errOut, "verify: %v\n", err)
		return 1
	}
	for _, rec := range recs {
		if err := v.Check(rec); err != nil {
			var me *auditlog.MismatchError
			if errors.As(err, &me) {
				fmt.Fprintf(out, "FAIL %v\n  stored:   %s\n  expected: %s\n", me, me.Want, me.Got)
			} else {
				fmt.Fprintf(out, "FAIL %v\n", err)
			}
			return 1
		}
	}
	fmt.Fprintf(out, "OK %d records %s\n", v.Len(), v.Head())
	return 0
}

func cmdDigest(args []string, in io.Reader, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("digest", flag.ContinueOnError)
	fs.SetOutput(errOut)
	cfgPath := fs.String("config", "", "Settings file (YAML or JSON)")
	workers := fs.Int("workers", runtime.NumCPU(), "Number of concurrent digests")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(errOut, "usage: jsonout digest [-config c] [-workers n] [input]")
		return 2
	}
	e, err := loadEnv(*cfgPath, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "digest: %v\n", err)
		return 1
	}
	objs, err := readInput(fs.Arg(0), in)
	if err != nil {
		fmt.Fprintf(errOut, "digest: %v\n", err)
		return 1
	}
	h, err := jsonout.NewSequenceHasher(jsonout.TextDigester{
		Mode:                e.opts.Mode,
		OutputDefaultValues: e.opts.OutputDefaultValues,
	}, e.opts.HashAlgorithm, false)
	if err != nil {
		fmt.Fprintf(errOut, "digest: %v\n", err)
		return 1
	}
	sums, err := h.DigestAll(objs, *workers)
	if err != nil {
		fmt.Fprintf(errOut, "digest: %v\n", err)
		return 1
	}
	for i, sum := range sums {
		fmt.Fprintf(out, "%s %s\n", sum, objs[i].ClassID())
	}
	return 0
}

func cmdDump(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	fs.SetOutput(errOut)
	dbPath := fs.String("db", "", "SQLite record store")
	verbose := fs.Bool("v", false, "Print sequence, id, class, and hash with each record")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *dbPath == "" || fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: jsonout dump [-v] -db path")
		return 2
	}
	ctx := context.Background()
	st, err := sqlsink.Open(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(errOut, "dump: %v\n", err)
		return 1
	}
	defer st.Close()
	recs, err := st.Records(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "dump: %v\n", err)
		return 1
	}
	for _, r := range recs {
		if *verbose {
			fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%s\n", r.Seq, r.ID, r.Class, r.Hash, r.Body)
		} else {
			fmt.Fprintln(out, r.Body)
		}
	}
	return 0
}

// readInput parses one record per line from the named file, or from in if
// path is "" or "-".
func readInput(path string, in io.Reader) ([]jsonout.Object, error) {
	lines, err := readLines(path, in)
	if err != nil {
		return nil, err
	}
	objs := make([]jsonout.Object, len(lines))
	for i, line := range lines {
		obj, err := record.Parse([]byte(line))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		objs[i] = obj
	}
	return objs, nil
}

// readLines returns the non-blank lines of the named file, or of in if path
// is "" or "-".
func readLines(path string, in io.Reader) ([]string, error) {
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}
	var lines []string
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64<<10), 64<<20)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}
