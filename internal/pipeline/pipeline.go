// Package pipeline runs the annotate and reformat flows end to end: open the
// archives, parse the content part, mutate it and write the repackaged
// result atomically.
//
// A structural failure (unreadable archive, malformed markup, failed write)
// aborts the run with a StepError naming the step, and nothing is written to
// the destination. Content-level problems (unmatched changes, failed
// translations) never abort a run.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/redline/core/docx"
	"github.com/FocuswithJustin/redline/core/markup"
	"github.com/FocuswithJustin/redline/internal/annotate"
	"github.com/FocuswithJustin/redline/internal/archive"
	"github.com/FocuswithJustin/redline/internal/config"
	"github.com/FocuswithJustin/redline/internal/extract"
	"github.com/FocuswithJustin/redline/internal/fileutil"
	"github.com/FocuswithJustin/redline/internal/logging"
	"github.com/FocuswithJustin/redline/internal/reformat"
	"github.com/FocuswithJustin/redline/internal/translate"
)

// Step names reported in StepError.
const (
	StepOpenSource  = "open source"
	StepOpenTarget  = "open target"
	StepOpenInput   = "open input"
	StepParseSource = "parse source"
	StepParseTarget = "parse target"
	StepParseInput  = "parse input"
	StepConfigure   = "configure"
	StepReformat    = "reformat"
	StepRepackage   = "repackage"
	StepWrite       = "write output"
)

// Pipeline names.
const (
	NameAnnotate = "annotate"
	NameReformat = "reformat"
)

// StepError reports the structural step that stopped a pipeline.
type StepError struct {
	Pipeline string
	Step     string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Pipeline, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// AnnotateResult describes a finished annotate run.
type AnnotateResult struct {
	RunID      string
	Output     string
	Changes    int // Tracked changes found in the source
	Paragraphs int // Non-empty paragraphs in the target
	Matched    int // Distinct change texts that found a paragraph
	Stats      annotate.Stats
	Duration   time.Duration
}

// ReformatResult describes a finished reformat run.
type ReformatResult struct {
	RunID    string
	Output   string
	Report   reformat.Report
	Duration time.Duration
}

// run tracks one pipeline invocation for logging.
type run struct {
	ctx      context.Context
	id       string
	pipeline string
	started  time.Time
}

func newRun(ctx context.Context, pipeline string) *run {
	id := uuid.NewString()
	return &run{
		ctx:      logging.WithRunID(ctx, id),
		id:       id,
		pipeline: pipeline,
		started:  time.Now(),
	}
}

// step runs fn as a named step, timing and logging it.
func (r *run) step(name string, fn func() error) error {
	logging.StepStarted(r.ctx, r.pipeline, name)
	start := time.Now()
	if err := fn(); err != nil {
		logging.StepFailed(r.ctx, r.pipeline, name, err)
		return &StepError{Pipeline: r.pipeline, Step: name, Err: err}
	}
	logging.StepCompleted(r.ctx, r.pipeline, name, time.Since(start))
	return nil
}

func (r *run) load(openStep, parseStep, path, part string) (*archive.Archive, *markup.Document, error) {
	var (
		a   *archive.Archive
		doc *markup.Document
	)
	if err := r.step(openStep, func() (err error) {
		a, err = archive.Open(path)
		return err
	}); err != nil {
		return nil, nil, err
	}
	if err := r.step(parseStep, func() (err error) {
		doc, err = docx.Load(a, part)
		return err
	}); err != nil {
		return nil, nil, err
	}
	return a, doc, nil
}

// save serializes doc into a copy of a and writes it to path.
func (r *run) save(a *archive.Archive, doc *markup.Document, part, path string) error {
	var data []byte
	if err := r.step(StepRepackage, func() (err error) {
		data, err = a.Repackage(map[string][]byte{part: doc.Serialize()})
		return err
	}); err != nil {
		return err
	}
	return r.step(StepWrite, func() error {
		return fileutil.WriteFileAtomic(path, data, 0644)
	})
}

// Annotate marks the target document wherever a tracked change in the
// source matches one of its paragraphs, and writes the result to
// cfg.Annotate.Output.
func Annotate(ctx context.Context, cfg *config.Config) (*AnnotateResult, error) {
	r := newRun(ctx, NameAnnotate)
	res := &AnnotateResult{RunID: r.id, Output: cfg.Annotate.Output}

	m, err := cfg.Matcher()
	if err != nil {
		return nil, &StepError{Pipeline: NameAnnotate, Step: StepConfigure, Err: err}
	}

	_, srcDoc, err := r.load(StepOpenSource, StepParseSource, cfg.Annotate.Source, cfg.ContentPart)
	if err != nil {
		return nil, err
	}
	target, tgtDoc, err := r.load(StepOpenTarget, StepParseTarget, cfg.Annotate.Target, cfg.ContentPart)
	if err != nil {
		return nil, err
	}

	changes := extract.Changes(srcDoc, cfg.Order())
	paragraphs := extract.Paragraphs(tgtDoc)
	texts := make([]string, len(changes))
	for i, c := range changes {
		texts[i] = c.Text
	}
	matches := m.Match(texts, paragraphs)
	res.Stats = annotate.Apply(tgtDoc, changes, matches)
	res.Changes, res.Paragraphs, res.Matched = len(changes), len(paragraphs), len(matches)

	for _, c := range changes {
		if _, ok := matches[c.Text]; !ok {
			logging.DebugContext(r.ctx, "change_unmatched", "kind", c.Kind.String(), "text", c.Text)
		}
	}
	if res.Changes > 0 && res.Matched == 0 {
		logging.WarnContext(r.ctx, "no_changes_matched",
			"changes", res.Changes,
			"threshold", m.Threshold,
		)
	}
	logging.InfoContext(r.ctx, "changes_matched",
		"changes", res.Changes,
		"paragraphs", res.Paragraphs,
		"matched", res.Matched,
		"annotations", res.Stats.Annotations,
	)

	if err := r.save(target, tgtDoc, cfg.ContentPart, cfg.Annotate.Output); err != nil {
		return nil, err
	}
	res.Duration = time.Since(r.started)
	return res, nil
}

// Reformat translates, filters and extends the input document and writes
// the result to cfg.Reformat.Output.
func Reformat(ctx context.Context, cfg *config.Config, tr translate.Translator) (*ReformatResult, error) {
	r := newRun(ctx, NameReformat)
	res := &ReformatResult{RunID: r.id, Output: cfg.Reformat.Output}

	input, doc, err := r.load(StepOpenInput, StepParseInput, cfg.Reformat.Input, cfg.ContentPart)
	if err != nil {
		return nil, err
	}

	if err := r.step(StepReformat, func() (err error) {
		res.Report, err = reformat.Run(r.ctx, doc, tr, cfg.ReformatOptions())
		return err
	}); err != nil {
		return nil, err
	}
	logging.InfoContext(r.ctx, "document_reformatted",
		"translated", res.Report.Translated,
		"failed", res.Report.Failed,
		"removed_runs", res.Report.RemovedRuns,
	)

	if err := r.save(input, doc, cfg.ContentPart, cfg.Reformat.Output); err != nil {
		return nil, err
	}
	res.Duration = time.Since(r.started)
	return res, nil
}
