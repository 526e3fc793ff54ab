package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jcorbin/goclink/internal/byteio"
	"github.com/jcorbin/goclink/internal/logio"
	"github.com/jcorbin/goclink/internal/module"
	"github.com/jcorbin/goclink/internal/project"
	"github.com/jcorbin/goclink/internal/stdlib"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type command struct {
	timeout     time.Duration
	trace       bool
	dump        bool
	stackLimit  uint
	depthLimit  uint
	strictInput bool
	entry       string
	conflicts   module.ConflictPolicy
	root        string
	manifest    string
	inputs      inputList

	set map[string]bool
}

// inputList collects repeated -input flags.
type inputList []string

func (il *inputList) String() string     { return strings.Join(*il, ",") }
func (il *inputList) Set(s string) error { *il = append(*il, s); return nil }

func (cmd *command) bind(flags *flag.FlagSet) {
	flags.DurationVar(&cmd.timeout, "timeout", 0, "specify a time limit")
	flags.BoolVar(&cmd.trace, "trace", false, "enable trace logging")
	flags.BoolVar(&cmd.dump, "dump", false, "dump VM state after running")
	flags.UintVar(&cmd.stackLimit, "stack-limit", 0, "limit the explicit stack to this many symbols")
	flags.UintVar(&cmd.depthLimit, "depth-limit", 0, "limit the continuation stack to this many frames")
	flags.BoolVar(&cmd.strictInput, "strict-input", false, "make reading past the end of input an error")
	flags.StringVar(&cmd.entry, "entry", module.DefaultEntry, "the function to run")
	flags.Var(&cmd.conflicts, "conflicts", "what to do when modules define the same name: error, first, or last")
	flags.StringVar(&cmd.root, "root", "", "module root directory, defaults to the program file's directory")
	flags.StringVar(&cmd.manifest, "manifest", "", "project manifest, found from the working directory when no program file is given")
	flags.Var(&cmd.inputs, "input", "read input from a file instead of stdin, may be repeated; - means stdin")
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	log := logio.NewLogger(stderr)

	var cmd command
	flags := flag.NewFlagSet("goclink", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "Usage: goclink [flags] [program.clink]\n")
		flags.PrintDefaults()
	}
	cmd.bind(flags)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if flags.NArg() > 1 {
		log.Errorf("too many arguments: %q", flags.Args()[1:])
		return 2
	}
	cmd.set = make(map[string]bool)
	flags.Visit(func(f *flag.Flag) { cmd.set[f.Name] = true })

	ns, err := cmd.resolve(flags.Arg(0), log)
	if err != nil {
		log.ErrorIf(err)
		return log.ExitCode()
	}

	opts, err := cmd.vmOptions(stdin, stdout, log)
	if err != nil {
		log.ErrorIf(err)
		return log.ExitCode()
	}
	vm := New(ns, opts...)

	if cmd.timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.timeout)
		defer cancel()
	}
	err = vm.Run(ctx)
	if cmd.dump {
		vmDumper{vm: vm, out: stderr, namespace: true}.dump()
	}
	log.ErrorIf(err)
	log.ErrorIf(vm.Close())
	return log.ExitCode()
}

// resolve loads the program: the given file relative to its module root,
// or else the main module of a project manifest. Explicit flags override the
// manifest's settings; the std modules are always available last.
func (cmd *command) resolve(file string, log *logio.Logger) (*module.Namespace, error) {
	manPath := cmd.manifest
	if manPath == "" && file == "" {
		found, err := project.Find(".")
		if err != nil {
			return nil, fmt.Errorf("no program file given, and %w", err)
		}
		manPath = found
	}

	var (
		res         module.Resolver
		loaders     module.Multi
		entryModule string
	)
	if manPath != "" {
		man, err := project.Load(manPath)
		if err != nil {
			return nil, err
		}
		if cmd.trace {
			if man.Name != "" {
				log.Printf("TRACE", "using manifest %v for %v", man.Path, man.Name)
			} else {
				log.Printf("TRACE", "using manifest %v", man.Path)
			}
		}
		res = man.Resolver()
		entryModule = man.Main
		if !cmd.set["stack-limit"] {
			cmd.stackLimit = man.StackLimit
		}
		if !cmd.set["depth-limit"] {
			cmd.depthLimit = man.DepthLimit
		}
	}

	if file != "" {
		root := cmd.root
		if root == "" {
			root = filepath.Dir(file)
		}
		rel, err := filepath.Rel(root, file)
		if err != nil {
			return nil, err
		}
		if entryModule, err = module.PathOf(rel); err != nil {
			return nil, fmt.Errorf("%v: %w", file, err)
		}
		loaders = append(loaders, module.Dir(root))
	}
	if res.Loader != nil {
		loaders = append(loaders, res.Loader)
	}
	res.Loader = append(loaders, stdlib.Loader)

	if cmd.set["entry"] || res.Entry == "" {
		res.Entry = cmd.entry
	}
	cmd.entry = res.Entry
	if cmd.set["conflicts"] {
		res.Conflict = cmd.conflicts
	}
	if cmd.trace {
		res.Logf = log.Leveledf("TRACE")
	}
	return res.Resolve(entryModule)
}

func (cmd *command) vmOptions(stdin io.Reader, stdout io.Writer, log *logio.Logger) ([]VMOption, error) {
	opts := []VMOption{
		WithEntry(cmd.entry),
		WithOutput(stdout),
		WithStackLimit(cmd.stackLimit),
		WithDepthLimit(cmd.depthLimit),
		WithStrictInput(cmd.strictInput),
	}
	if cmd.trace {
		opts = append(opts, WithLogf(log.Leveledf("TRACE")))
	}

	if len(cmd.inputs) == 0 {
		return append(opts, WithInput(byteio.Named("<stdin>", stdin))), nil
	}
	for _, name := range cmd.inputs {
		if name == "-" {
			opts = append(opts, WithInput(byteio.Named("<stdin>", stdin)))
			continue
		}
		f, err := os.Open(name)
		if err != nil {
			for _, opt := range opts {
				if in, ok := opt.(inputOption); ok {
					if cl, ok := in.Reader.(io.Closer); ok {
						cl.Close()
					}
				}
			}
			return nil, err
		}
		opts = append(opts, WithInput(f))
	}
	return opts, nil
}
