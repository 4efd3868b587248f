// Command redline carries tracked changes from one .docx into another and
// produces reformatted, translated copies of a document.
package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/FocuswithJustin/redline/core/docx"
	"github.com/FocuswithJustin/redline/core/errors"
	"github.com/FocuswithJustin/redline/core/markup"
	"github.com/FocuswithJustin/redline/internal/archive"
	"github.com/FocuswithJustin/redline/internal/config"
	"github.com/FocuswithJustin/redline/internal/extract"
	"github.com/FocuswithJustin/redline/internal/logging"
	"github.com/FocuswithJustin/redline/internal/pipeline"
	"github.com/FocuswithJustin/redline/internal/translate"
)

const version = "0.1.0"

// Globals are flags shared by every command.
type Globals struct {
	Config    string `short:"c" help:"YAML configuration file" type:"path"`
	EnvFile   string `name:"env-file" help:"Environment file loaded before the configuration" default:".env"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"info" enum:"debug,info,warn,error"`
	LogFormat string `name:"log-format" help:"Log format (text, json)" default:"text" enum:"text,json"`
}

// CLI defines the command-line interface for redline.
type CLI struct {
	Globals

	Annotate AnnotateCmd `cmd:"" help:"Annotate a target document with the tracked changes of a source document"`
	Reformat ReformatCmd `cmd:"" help:"Translate a document, drop struck-through runs and append a paragraph"`
	Inspect  InspectCmd  `cmd:"" help:"List the parts of a document and summarize its content"`
	Diff     DiffCmd     `cmd:"" help:"Compare the parts of two documents"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// env is bound into every command's Run method.
type env struct {
	ctx     context.Context
	out     io.Writer
	globals *Globals
}

// loadConfig reads the configuration file when one was given, otherwise
// returns the defaults.
func (e *env) loadConfig() (*config.Config, error) {
	if e.globals.Config == "" {
		return config.Default(), nil
	}
	return config.Load(e.globals.Config)
}

// AnnotateCmd runs the annotation pipeline.
type AnnotateCmd struct {
	Source    string `help:"Document with tracked changes" type:"path"`
	Target    string `help:"Document to annotate" type:"path"`
	Output    string `short:"o" help:"Output path" type:"path"`
	Threshold int    `help:"Minimum match score from 0 to 100 (-1 keeps the configured value)" default:"-1"`
	Scorer    string `help:"Similarity scorer (ratio, token_sort, token_set, weighted)"`
	Order     string `help:"Change order (kind, position)"`
}

func (c *AnnotateCmd) Run(e *env) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	override(&cfg.Annotate.Source, c.Source)
	override(&cfg.Annotate.Target, c.Target)
	override(&cfg.Annotate.Output, c.Output)
	override(&cfg.Annotate.Scorer, c.Scorer)
	override(&cfg.Annotate.ChangeOrder, c.Order)
	if c.Threshold >= 0 {
		cfg.Annotate.Threshold = c.Threshold
	}
	if err := cfg.ValidateAnnotate(); err != nil {
		return err
	}

	res, err := pipeline.Annotate(e.ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Annotated: %s\n", res.Output)
	fmt.Fprintf(e.out, "  Changes:     %d\n", res.Changes)
	fmt.Fprintf(e.out, "  Matched:     %d\n", res.Matched)
	fmt.Fprintf(e.out, "  Annotations: %d in %d paragraphs\n", res.Stats.Annotations, res.Stats.Paragraphs)
	fmt.Fprintf(e.out, "  Run:         %s\n", res.RunID)
	return nil
}

// ReformatCmd runs the reformat pipeline.
type ReformatCmd struct {
	Input      string `help:"Document to reformat" type:"path"`
	Output     string `short:"o" help:"Output path" type:"path"`
	Locale     string `help:"Target locale, e.g. zh-TW"`
	AppendText string `name:"append" help:"Text of the appended paragraph"`
	Provider   string `help:"Translation provider (identity, gemini)"`
	Workers    int    `help:"Concurrent translation calls (0 keeps the configured value)"`
}

func (c *ReformatCmd) Run(e *env) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	override(&cfg.Reformat.Input, c.Input)
	override(&cfg.Reformat.Output, c.Output)
	override(&cfg.Reformat.TargetLocale, c.Locale)
	override(&cfg.Reformat.AppendText, c.AppendText)
	override(&cfg.Translator.Provider, c.Provider)
	if c.Workers > 0 {
		cfg.Reformat.Workers = c.Workers
	}
	if err := cfg.ValidateReformat(); err != nil {
		return err
	}

	tr, err := translate.New(cfg.TranslatorSettings())
	if err != nil {
		return err
	}
	res, err := pipeline.Reformat(e.ctx, cfg, tr)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Reformatted: %s\n", res.Output)
	fmt.Fprintf(e.out, "  Translated:   %d\n", res.Report.Translated)
	fmt.Fprintf(e.out, "  Failed:       %d\n", res.Report.Failed)
	fmt.Fprintf(e.out, "  Removed runs: %d\n", res.Report.RemovedRuns)
	fmt.Fprintf(e.out, "  Run:          %s\n", res.RunID)
	return nil
}

// InspectCmd prints the parts of a document and a content summary.
type InspectCmd struct {
	Path  string `arg:"" help:"Path to .docx" type:"existingfile"`
	Part  string `help:"Content part to summarize" default:"word/document.xml"`
	XPath string `name:"xpath" help:"XPath expression to evaluate (prefix w is bound)"`
}

func (c *InspectCmd) Run(e *env) error {
	a, err := archive.Open(c.Path)
	if err != nil {
		return err
	}

	fmt.Fprintf(e.out, "Archive: %s (%d parts)\n\n", c.Path, a.Len())
	for _, p := range a.Parts() {
		method := "deflate"
		if p.Method() == 0 {
			method = "store"
		}
		fmt.Fprintf(e.out, "  %-40s %8d  %-7s  %s\n", p.Name, len(p.Data), method, p.Digest()[:16])
	}

	doc, err := docx.Load(a, c.Part)
	if err != nil {
		return err
	}
	var ins, del int
	for _, ch := range extract.Changes(doc, extract.OrderByKind) {
		if ch.Kind == extract.Insertion {
			ins++
		} else {
			del++
		}
	}
	fmt.Fprintf(e.out, "\nContent: %s\n", c.Part)
	fmt.Fprintf(e.out, "  Paragraphs: %d\n", len(extract.Paragraphs(doc)))
	fmt.Fprintf(e.out, "  Runs:       %d\n", len(doc.FindAll(docx.R)))
	fmt.Fprintf(e.out, "  Insertions: %d\n", ins)
	fmt.Fprintf(e.out, "  Deletions:  %d\n", del)

	if c.XPath == "" {
		return nil
	}
	nodes, err := doc.Query(c.XPath, map[string]string{docx.Prefix: docx.NS})
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "\nXPath %s: %d nodes\n", c.XPath, len(nodes))
	for i, n := range nodes {
		fmt.Fprintf(e.out, "  [%d] %s %q\n", i, n.Name().Local, truncate(nodeText(n), 60))
	}
	return nil
}

// DiffCmd compares two documents part by part.
type DiffCmd struct {
	From string `arg:"" help:"Original document" type:"existingfile"`
	To   string `arg:"" help:"Changed document" type:"existingfile"`
}

func (c *DiffCmd) Run(e *env) error {
	from, err := archive.Open(c.From)
	if err != nil {
		return err
	}
	to, err := archive.Open(c.To)
	if err != nil {
		return err
	}
	changes := archive.Diff(from, to)
	if len(changes) == 0 {
		fmt.Fprintln(e.out, "No differences")
		return nil
	}
	for _, ch := range changes {
		fmt.Fprintf(e.out, "%-8s %s\n", ch.Kind, ch.Name)
	}
	fmt.Fprintf(e.out, "\n%d parts differ\n", len(changes))
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run(e *env) error {
	fmt.Fprintf(e.out, "redline version %s\n", version)
	return nil
}

// Helper functions

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}

// nodeText returns the text of a query result: a text leaf's own text, or
// the text of the leaves below any other element.
func nodeText(n *markup.Node) string {
	if n.Is(docx.T) || n.Is(docx.DelText) {
		return n.Text()
	}
	return docx.TextOf(n)
}

// loadEnv loads path into the environment. A missing file is not an error.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "load %s", path)
	}
	return nil
}

func run(args []string, stdout, stderr io.Writer) int {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("redline"),
		kong.Description("Reconcile tracked changes between .docx documents"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		parser.Errorf("%s", err)
		return 2
	}

	level, _ := logging.ParseLevel(cli.LogLevel)
	format, _ := logging.ParseFormat(cli.LogFormat)
	logging.InitLoggerTo(stderr, level, format)

	if err := loadEnv(cli.EnvFile); err != nil {
		fmt.Fprintf(stderr, "redline: %v\n", err)
		return 1
	}

	e := &env{ctx: context.Background(), out: stdout, globals: &cli.Globals}
	if err := ctx.Run(e); err != nil {
		fmt.Fprintf(stderr, "redline: %s\n", strings.TrimSpace(err.Error()))
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
