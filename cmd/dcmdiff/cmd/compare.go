package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jpfielding/dcmdiff.go/pkg/dicom/tag"
	"github.com/jpfielding/dcmdiff.go/pkg/dicom/vr"
	"github.com/jpfielding/dcmdiff.go/pkg/diff"
	"github.com/jpfielding/dcmdiff.go/pkg/loader"
	"github.com/jpfielding/dcmdiff.go/pkg/render"
	"github.com/jpfielding/dcmdiff.go/pkg/ui"
)

// NewCompareCmd creates the compare cobra command
func NewCompareCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare REFERENCE TEST",
		Short: "compare a reference DICOM file or directory against a test one",
		Long: "compare loads both sides, matches series by Modality and SeriesDescription, " +
			"diffs instance attributes tag by tag and writes an HTML report. " +
			"Undecidable series/instance pairings are resolved interactively.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(ctx, cmd, args[0], args[1])
		},
	}

	pf := cmd.Flags()
	pf.StringP("out", "o", "./htmldiff", "output directory for the report")
	pf.StringP("compare", "c", "", "file with tags to compare exclusively, one keyword or 0xGGGGEEEE per line")
	pf.Bool("context", false, "produce a context diff instead of full instance listings")
	pf.IntP("lines", "l", 1, "number of context lines")
	pf.Bool("compare-one-inst", false, "only compare one instance per series")
	pf.Bool("ignore-private", false, "ignore all elements with an odd group number")
	pf.StringSlice("ignore-vr", nil, "value representations to ignore (e.g. SQ,OB,UN)")
	pf.StringSlice("ignore-group", nil, "groups to ignore (e.g. 0x0008,0x0010)")
	pf.StringSlice("ignore-tag", nil, "tags to ignore, keywords or 0xGGGGEEEE numbers")
	pf.String("pattern", "", "only load files matching this glob pattern (e.g. *.dcm)")

	return cmd
}

func runCompare(ctx context.Context, cmd *cobra.Command, refPath, testPath string) error {
	dict := tag.NewDictionary()

	filter, err := buildFilter(cmd, dict)
	if err != nil {
		return err
	}

	var loaderOpts []loader.Option
	if pattern, _ := cmd.Flags().GetString("pattern"); pattern != "" {
		loaderOpts = append(loaderOpts, loader.WithPattern(pattern))
	}
	ld, err := loader.New(dict, loaderOpts...)
	if err != nil {
		return err
	}

	prompt := ui.New(os.Stdin, os.Stdout)

	slog.InfoContext(ctx, "processing reference DICOM(s)", "path", refPath)
	refStudy, err := loadStudy(ld, prompt, refPath)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "processing test DICOM(s)", "path", testPath)
	testStudy, err := loadStudy(ld, prompt, testPath)
	if err != nil {
		return err
	}

	var comparerOpts []diff.ComparerOption
	if one, _ := cmd.Flags().GetBool("compare-one-inst"); one {
		comparerOpts = append(comparerOpts, diff.WithOneInstancePerSeries())
	}
	comparer := diff.NewComparer(filter, prompt, comparerOpts...)

	result, err := comparer.CompareStudies(refStudy, testStudy)
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("out")
	contextMode, _ := cmd.Flags().GetBool("context")
	lines, _ := cmd.Flags().GetInt("lines")
	renderer := render.New(render.Config{OutDir: outDir, Context: contextMode, Lines: lines}, dict)

	index, err := renderer.Render(result)
	if err != nil {
		return err
	}

	summary := result.Summary()
	slog.InfoContext(ctx, "report written",
		"index", index,
		"differ", summary.Differ,
		"only_reference", summary.OnlyRef,
		"only_test", summary.OnlyTest,
	)
	return nil
}

// buildFilter resolves every flag into the immutable FilterConfig before
// any matching begins; bad configuration fails the whole run here.
func buildFilter(cmd *cobra.Command, dict *tag.Dictionary) (*diff.Filter, error) {
	var cfg diff.FilterConfig

	if tagFile, _ := cmd.Flags().GetString("compare"); tagFile != "" {
		f, err := os.Open(tagFile)
		if err != nil {
			return nil, fmt.Errorf("opening tag list %s: %w", tagFile, err)
		}
		defer f.Close()
		cfg.CompareOnly, err = diff.LoadTagList(f, dict)
		if err != nil {
			return nil, err
		}
	}

	cfg.IgnorePrivate, _ = cmd.Flags().GetBool("ignore-private")

	ignoreTags, _ := cmd.Flags().GetStringSlice("ignore-tag")
	for _, s := range ignoreTags {
		t, err := dict.Parse(s)
		if err != nil {
			return nil, &diff.ConfigError{Reason: err.Error()}
		}
		cfg.IgnoreTags = append(cfg.IgnoreTags, t)
	}

	ignoreGroups, _ := cmd.Flags().GetStringSlice("ignore-group")
	for _, s := range ignoreGroups {
		g, err := dict.ParseGroup(s)
		if err != nil {
			return nil, &diff.ConfigError{Reason: err.Error()}
		}
		cfg.IgnoreGroups = append(cfg.IgnoreGroups, g)
	}

	ignoreVRs, _ := cmd.Flags().GetStringSlice("ignore-vr")
	for _, s := range ignoreVRs {
		v, err := vr.Parse(s)
		if err != nil {
			return nil, &diff.ConfigError{Reason: err.Error()}
		}
		cfg.IgnoreVRs = append(cfg.IgnoreVRs, v)
	}

	return diff.NewFilter(cfg)
}

// loadStudy loads one side and narrows it to a single study, asking the
// prompt when the source holds several patients or studies
func loadStudy(ld *loader.Loader, prompt *ui.Prompt, path string) (*diff.Study, error) {
	instances, err := ld.Load(path)
	if err != nil {
		return nil, err
	}
	hierarchy, err := diff.Index(instances)
	if err != nil {
		return nil, err
	}
	return hierarchy.ChooseStudy(prompt)
}
