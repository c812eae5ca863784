package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/1broseidon/termdesk/internal/store"
)

// fsTimeout bounds one store command run from the CLI.
const fsTimeout = 10 * time.Second

func printFSUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  termdesk fs ls [--path CONFIG] [dir]")
	fmt.Fprintln(w, "  termdesk fs cat [--path CONFIG] <file>")
	fmt.Fprintln(w, "  termdesk fs write [--path CONFIG] <file> [content]   (stdin when content is omitted)")
	fmt.Fprintln(w, "  termdesk fs rm [--path CONFIG] <path>")
	fmt.Fprintln(w, "  termdesk fs mkdir [--path CONFIG] <dir>")
	fmt.Fprintln(w, "  termdesk fs mv [--path CONFIG] <from> <to>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Paths are relative to the sandbox root. A running desktop is refreshed")
	fmt.Fprintln(w, "after every change.")
}

func runFS(args []string) int {
	if len(args) == 0 || isHelp(args) {
		printFSUsage(os.Stderr)
		if isHelp(args) {
			return 0
		}
		return 2
	}

	fs := flag.NewFlagSet("fs "+args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/termdesk/config.yaml)")
	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), fsTimeout)
	defer cancel()

	code, changed := fsCommand(ctx, openStore(res.Config), args[0], fs.Args(), os.Stdin, os.Stdout, os.Stderr)
	if changed {
		refreshDesktop()
	}
	return code
}

// fsCommand runs one file store subcommand. changed reports whether the
// store was modified.
func fsCommand(ctx context.Context, client *store.Client, cmd string, args []string, stdin io.Reader, stdout, stderr io.Writer) (code int, changed bool) {
	need := map[string][2]int{
		"ls":    {0, 1},
		"cat":   {1, 1},
		"write": {1, 2},
		"rm":    {1, 1},
		"mkdir": {1, 1},
		"mv":    {2, 2},
	}
	bounds, ok := need[cmd]
	if !ok {
		fmt.Fprintf(stderr, "Unknown fs command: %s\n\n", cmd)
		printFSUsage(stderr)
		return 2, false
	}
	if len(args) < bounds[0] || len(args) > bounds[1] {
		fmt.Fprintf(stderr, "fs %s: wrong number of arguments\n\n", cmd)
		printFSUsage(stderr)
		return 2, false
	}

	fail := func(r interface{ AsError() error }) int {
		fmt.Fprintln(stderr, r.AsError())
		return 1
	}

	switch cmd {
	case "ls":
		dir := ""
		if len(args) == 1 {
			dir = args[0]
		}
		r := client.List(ctx, dir)
		if !r.OK {
			return fail(r), false
		}
		for _, e := range r.Value {
			if e.IsFolder() {
				fmt.Fprintf(stdout, "%s/\n", e.Name)
				continue
			}
			fmt.Fprintln(stdout, e.Name)
		}
		return 0, false

	case "cat":
		r := client.Read(ctx, args[0])
		if !r.OK {
			return fail(r), false
		}
		fmt.Fprint(stdout, r.Value)
		if r.Value != "" && !strings.HasSuffix(r.Value, "\n") {
			fmt.Fprintln(stdout)
		}
		return 0, false

	case "write":
		var content string
		if len(args) == 2 {
			content = args[1]
		} else {
			data, err := io.ReadAll(stdin)
			if err != nil {
				fmt.Fprintln(stderr, err)
				return 1, false
			}
			content = string(data)
		}
		if r := client.Write(ctx, args[0], content); !r.OK {
			return fail(r), false
		}
		return 0, true

	case "rm":
		if r := client.Delete(ctx, args[0]); !r.OK {
			return fail(r), false
		}
		return 0, true

	case "mkdir":
		if r := client.CreateFolder(ctx, args[0]); !r.OK {
			return fail(r), false
		}
		return 0, true

	default: // mv
		dir, name := store.Split(args[1])
		if client.Exists(ctx, dir, name) {
			fmt.Fprintf(stderr, "%s already exists\n", args[1])
			return 1, false
		}
		if r := client.Move(ctx, args[0], args[1]); !r.OK {
			return fail(r), false
		}
		return 0, true
	}
}
