// Package ui implements the manual-resolution capabilities over a plain
// terminal: numbered menus for patient/study selection and for series or
// instance pairings the matcher cannot decide.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jpfielding/dcmdiff.go/pkg/diff"
)

// Prompt reads decisions from in and writes menus to out. It satisfies
// diff.Selector and diff.Resolver.
type Prompt struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a Prompt, typically over os.Stdin/os.Stdout
func New(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out}
}

// SelectPatient asks the user to pick one patient
func (p *Prompt) SelectPatient(patients []*diff.Patient) (*diff.Patient, error) {
	fmt.Fprintf(p.out, "** found %d patients:\n", len(patients))
	for i, pat := range patients {
		fmt.Fprintf(p.out, "%4d - %s\n", i, pat.Label())
	}
	fmt.Fprintln(p.out, "** select ONE patient:")
	idx, _, err := p.choose(len(patients), false)
	if err != nil {
		return nil, err
	}
	return patients[idx], nil
}

// SelectStudy asks the user to pick one study
func (p *Prompt) SelectStudy(studies []*diff.Study) (*diff.Study, error) {
	fmt.Fprintf(p.out, "*** found %d studies:\n", len(studies))
	for i, st := range studies {
		fmt.Fprintf(p.out, "%4d - %s\n", i, st.Label())
	}
	fmt.Fprintln(p.out, "*** select one study:")
	idx, _, err := p.choose(len(studies), false)
	if err != nil {
		return nil, err
	}
	return studies[idx], nil
}

// ResolveSeries asks the user to pick a test series for an undecided
// reference series, or decline with "n"
func (p *Prompt) ResolveSeries(ref *diff.Series, candidates []*diff.Series) (*diff.Series, error) {
	if len(candidates) == 0 {
		fmt.Fprintf(p.out, "*** no candidate series left for %s\n", ref.Label())
		return nil, nil
	}
	fmt.Fprintf(p.out, "*** %d candidate series for %s:\n", len(candidates), ref.Label())
	for i, s := range candidates {
		fmt.Fprintf(p.out, "%4d - %s\n", i, s.Label())
	}
	fmt.Fprintln(p.out, "select one series (n=none):")
	idx, none, err := p.choose(len(candidates), true)
	if err != nil {
		return nil, err
	}
	if none {
		return nil, nil
	}
	return candidates[idx], nil
}

// ResolveInstance asks the user to pick among instances sharing an
// instance number, or decline with "n"
func (p *Prompt) ResolveInstance(ref *diff.Instance, candidates []*diff.Instance) (*diff.Instance, error) {
	fmt.Fprintf(p.out, "*** %d instances with instance number %d:\n", len(candidates), ref.Number)
	for i, inst := range candidates {
		fmt.Fprintf(p.out, "%4d - instance number %04d (%s)\n", i, inst.Number, inst.SOPInstanceUID)
	}
	fmt.Fprintln(p.out, "select one instance (n=none):")
	idx, none, err := p.choose(len(candidates), true)
	if err != nil {
		return nil, err
	}
	if none {
		return nil, nil
	}
	return candidates[idx], nil
}

// choose reads a selection in [0,n); allowNone accepts "n" as a decline.
// Invalid input re-prompts; EOF aborts.
func (p *Prompt) choose(n int, allowNone bool) (int, bool, error) {
	for {
		fmt.Fprint(p.out, "? ")
		line, err := p.in.ReadString('\n')
		if err != nil && line == "" {
			return 0, false, fmt.Errorf("reading selection: %w", err)
		}
		line = strings.TrimSpace(line)
		if allowNone && line == "n" {
			return 0, true, nil
		}
		idx, convErr := strconv.Atoi(line)
		if convErr == nil && idx >= 0 && idx < n {
			return idx, false, nil
		}
		fmt.Fprintf(p.out, "invalid selection %q\n", line)
		if err != nil {
			return 0, false, fmt.Errorf("reading selection: %w", err)
		}
	}
}
