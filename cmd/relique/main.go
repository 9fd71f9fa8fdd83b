package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jessevdk/go-flags"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/relique-lang/relique/internal/ast"
	"github.com/relique-lang/relique/internal/config"
	"github.com/relique-lang/relique/internal/dbstate"
	"github.com/relique-lang/relique/internal/executor"
	"github.com/relique-lang/relique/internal/parser"
)

var version = "dev"

type options struct {
	Verbose bool `short:"v" long:"verbose" description:"Also print the byte count written by each commit"`
	Version bool `long:"version" description:"Show this version"`
	Args    struct {
		Source string `positional-arg-name:"source" description:"Path to a .relique script"`
	} `positional-args:"yes"`
}

// parseOptions grounds its flags.NewParser usage on sqldef-sqldef's CLI
// driver: a handful of named flags plus one positional argument.
func parseOptions(args []string) *options {
	var opts options
	p := flags.NewParser(&opts, flags.Default)
	p.Usage = "[-v] source.relique"
	if _, err := p.ParseArgs(args); err != nil {
		os.Exit(1)
	}
	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}
	if opts.Args.Source == "" {
		p.WriteHelp(os.Stderr)
		os.Exit(1)
	}
	return &opts
}

// loadSidecar reads an optional .relique.yaml from the working directory.
// Its absence is not an error; a malformed file is reported and ignored,
// since it only ever adjusts cosmetic CLI behavior.
func loadSidecar() config.Sidecar {
	var sc config.Sidecar
	data, err := os.ReadFile(".relique.yaml")
	if err != nil {
		return sc
	}
	if err := yaml.Unmarshal(data, &sc); err != nil {
		fmt.Fprintf(os.Stderr, "warning: ignoring malformed .relique.yaml: %v\n", err)
		return config.Sidecar{}
	}
	return sc
}

// resolveSnapshotPath rewrites a bare (no directory separator) open/commit
// filename to live under the sidecar's configured snapshot directory,
// leaving an absolute or already-qualified path untouched.
func resolveSnapshotPath(cmd ast.Command, snapshotDir string) {
	if snapshotDir == "" {
		return
	}
	switch c := cmd.(type) {
	case *ast.OpenCmd:
		if filepath.Dir(c.Path) == "." {
			c.Path = filepath.Join(snapshotDir, c.Path)
		}
	case *ast.CommitCmd:
		if filepath.Dir(c.Path) == "." {
			c.Path = filepath.Join(snapshotDir, c.Path)
		}
	}
}

func resolveColor(sc config.Sidecar) bool {
	switch sc.Color {
	case "always":
		return true
	case "never":
		return false
	default:
		return isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stderr.Fd())
	}
}

func main() {
	opts := parseOptions(os.Args[1:])
	sc := loadSidecar()
	config.ColorOutput = resolveColor(sc)
	color.NoColor = !config.ColorOutput

	src, err := os.ReadFile(opts.Args.Source)
	if err != nil {
		color.Red("Unable to open file '%s'.", opts.Args.Source)
		os.Exit(1)
	}

	cmds, err := parser.Parse(string(src))
	if err != nil {
		color.Red("Parsing error occurred: %s", err)
		os.Exit(1)
	}

	db := dbstate.New()
	for _, cmd := range cmds {
		resolveSnapshotPath(cmd, sc.SnapshotDir)
		var res executor.Result
		db, res, err = executor.Run(cmd, db)
		if err != nil {
			color.Red("Error occurred: %s", err)
			os.Exit(1)
		}
		switch {
		case res.CommitBytes > 0:
			if opts.Verbose {
				color.Green("committed %s", humanize.Bytes(uint64(res.CommitBytes)))
			}
		default:
			if _, ok := cmd.(*ast.EvalCmd); ok {
				fmt.Println(res.Output)
			}
		}
	}
}
