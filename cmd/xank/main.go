package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"fortio.org/log"
	"git.sr.ht/~sircmpwn/getopt"
	"github.com/fatih/color"

	"github.com/teknomancer/xank"
)

const usage = `usage: xank [-evlh] [-p bits] [-d places] [-i file] [expr ...]

Evaluates each expression argument, or each line of the input if there are
none.

  -p bits    precision of floats in bits (default 64)
  -d places  print results as decimals rounded to places digits
  -i file    read expressions from file; "-" is stdin
  -e         print the RPN of each expression
  -v         trace tokenizing, parsing, and evaluation
  -l         list operators and functions
  -h         print this help
`

func main() {
	var (
		prec          uint = 64
		places        = -1
		inname        string
		echo, listing bool
		evopts        []xank.Option
	)
	opts, optind, err := getopt.Getopts(os.Args, "p:d:i:evlh")
	if err != nil {
		log.Fatalf("%v\n%s", err, usage)
	}
	for _, opt := range opts {
		switch opt.Option {
		case 'p':
			p, err := strconv.ParseUint(opt.Value, 10, 32)
			if err != nil || p == 0 {
				log.Fatalf("precision (%s) must be a positive integer", opt.Value)
			}
			prec = uint(p)
		case 'd':
			d, err := strconv.Atoi(opt.Value)
			if err != nil || d < 0 {
				log.Fatalf("decimal places (%s) must be a non-negative integer", opt.Value)
			}
			places = d
		case 'i':
			inname = opt.Value
		case 'e':
			echo = true
		case 'v':
			log.SetLogLevel(log.Verbose)
			evopts = append(evopts, xank.WithSink(xank.LogSink{}))
		case 'l':
			listing = true
		case 'h':
			fmt.Print(usage)
			return
		}
	}
	args := os.Args[optind:]

	ev := xank.NewEvaluator(append(evopts, xank.Prec(prec))...)
	if err := ev.Init(); err != nil {
		log.Fatalf("%v", err)
	}
	if listing {
		list(os.Stdout, ev)
		if len(args) == 0 && inname == "" {
			return
		}
	}

	failed := false
	run := func(expr string) {
		if strings.TrimSpace(expr) == "" {
			return
		}
		if !eval(ev, expr, echo, places) {
			failed = true
		}
	}
	for _, arg := range args {
		run(arg)
	}
	in, err := infile(inname, len(args) == 0)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if in != nil {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			run(sc.Text())
		}
		err := sc.Err()
		in.Close()
		if err != nil {
			log.Fatalf("reading input: %v", err)
		}
	}
	if failed {
		os.Exit(1)
	}
}

// eval evaluates and prints one expression. The result is false if there was
// an error.
func eval(ev *xank.Evaluator, expr string, echo bool, places int) bool {
	red := color.New(color.FgRed).SprintFunc()
	if err := ev.Parse(expr); err != nil {
		fmt.Println(red(describe(err)))
		return false
	}
	if rest := ev.Unparsed(); rest != "" {
		fmt.Println(red(fmt.Sprintf("unexpected %q", rest)))
		return false
	}
	if echo {
		color.Cyan("%s", ev.RPN())
	}
	r, err := ev.Evaluate()
	if err != nil {
		fmt.Println(red(describe(err)))
		return false
	}
	fmt.Println(format(r, places))
	return true
}

// describe formats an error with its code name.
func describe(err error) string {
	var e *xank.Error
	if errors.As(err, &e) {
		return e.Code.String() + ": " + e.Error()
	}
	return err.Error()
}

func format(r xank.Number, places int) string {
	if places < 0 {
		return r.String()
	}
	d, err := r.Decimal()
	if err != nil {
		return r.String()
	}
	return d.StringFixed(int32(places))
}

func list(w io.Writer, ev *xank.Evaluator) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintln(w, bold("Operators"))
	for _, op := range ev.Operators() {
		fmt.Fprintf(w, "  %-4s %-16s %s\n", op.Name, op.Short, op.Long)
	}
	fmt.Fprintln(w, bold("Functions"))
	for _, fn := range ev.Functions() {
		arity := strconv.Itoa(fn.MinParams) + ".."
		if fn.MaxParams != xank.MaxArity {
			arity += strconv.Itoa(fn.MaxParams)
		}
		fmt.Fprintf(w, "  %-6s %-6s %-24s %s\n", fn.Name, arity, fn.Short, fn.Long)
	}
}

// infile opens the input named by inname. The result is nil if there is no
// input to read. Closing stdin through the result leaves it open.
func infile(inname string, std bool) (io.ReadCloser, error) {
	switch {
	case inname != "" && inname != "-":
		return os.Open(inname)
	case inname == "-", std:
		return io.NopCloser(os.Stdin), nil
	}
	return nil, nil
}
