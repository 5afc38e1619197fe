package main

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/danmuck/lasdev/internal/las"
	"github.com/danmuck/lasdev/internal/las/ascii"
	"github.com/danmuck/lasdev/internal/loader"
)

func newInspectCmd(a *app) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "inspect FILE...",
		Short: "Parse LAS files and summarise their sections and data sets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if workers <= 0 {
				workers = a.cfg.EffectiveWorkers()
			}
			results := a.loader.ReadAll(cmd.Context(), args, workers)
			return reportResults(cmd, results)
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "concurrent parses (default: config workers)")
	return cmd
}

func reportResults(cmd *cobra.Command, results []loader.Result) error {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render("FAIL")+" "+r.Err.Error())
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderSummary(r.Path, r.Doc))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

func renderSummary(path string, doc *las.Document) string {
	var lines []string
	lines = append(lines,
		titleStyle.Render(path),
		field("version", fmt.Sprintf("%s (%s)", doc.Version.Vers, doc.Version.Dialect)),
		field("wrap", yesNo(doc.Version.Wrap)),
		field("delimiter", doc.Version.Delimiter.String()),
		field("encoding", doc.Encoding),
	)
	for _, m := range []string{"WELL", "COMP", "FLD", "UWI"} {
		if v := doc.Well.Value(m); v != "" {
			lines = append(lines, field(strings.ToLower(m), v))
		}
	}
	for _, s := range doc.Sets {
		lines = append(lines, sectionStyle.Render(setLabel(s)), blockStyle.Render(renderSet(s)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderSet(s *las.DataSet) string {
	var lines []string
	if len(s.Parameters) > 0 {
		lines = append(lines, field("parameters", fmt.Sprint(len(s.Parameters))))
	}
	if s.HasDefinition {
		names := make([]string, 0, len(s.Channels))
		for _, ch := range s.Channels {
			if ch.Arity > 1 {
				names = append(names, fmt.Sprintf("%s[%d]", ch.Name, ch.Arity))
			} else {
				names = append(names, ch.Name)
			}
		}
		lines = append(lines, field("channels", strings.Join(names, " ")))
	}
	if s.HasData {
		lines = append(lines, field("binding", s.Binding), field("rows", fmt.Sprint(s.Rows)))
		if idx, err := indexRange(s); err == nil {
			lines = append(lines, field("index", idx))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func indexRange(s *las.DataSet) (string, error) {
	if len(s.Columns) == 0 || s.Rows == 0 || s.Columns[0].IsString() {
		return "", errors.New("no numeric index")
	}
	v := s.Columns[0].Values
	lo, hi := v[0], v[len(v)-1]
	if math.IsNaN(lo) || math.IsNaN(hi) {
		return "", errors.New("no numeric index")
	}
	return fmt.Sprintf("%s .. %s", ascii.FormatValue(lo), ascii.FormatValue(hi)), nil
}

func setLabel(s *las.DataSet) string {
	if s.Index > 0 {
		return fmt.Sprintf("%s[%d]", s.Name, s.Index)
	}
	return s.Name
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}
