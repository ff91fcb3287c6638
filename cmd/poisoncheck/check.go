package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kolkov/poisoning/cmd/poisoncheck/analysis"
)

var checkOpts = struct {
	strict  bool
	verbose bool
}{}

var checkCmd = &cobra.Command{
	Use:   "check [files or directories...]",
	Short: "Check Go sources for guard-discipline violations",
	Long: `Check parses the given Go files (directories are walked recursively)
and reports guards that are never released, never committed, or
discarded. Directories governed by a go.mod that does not depend on
the poisoning library are skipped.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runCheck(args))
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkOpts.strict, "strict", false, "treat warnings as errors")
	checkCmd.Flags().BoolVarP(&checkOpts.verbose, "verbose", "v", false, "print per-run statistics")
}

// runCheck checks every Go file reachable from args and returns the
// process exit code.
func runCheck(args []string) int {
	files, err := collectGoFiles(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "poisoncheck: %v\n", err)
		return 2
	}

	var (
		total    analysis.Stats
		checked   int
		findings  int
		failed    bool
		parseFail bool
	)
	for _, file := range files {
		report, err := analysis.CheckFile(file, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "poisoncheck: %v\n", err)
			parseFail = true
			continue
		}
		checked++
		total.GuardsSeen += report.Stats.GuardsSeen
		total.GuardsReleased += report.Stats.GuardsReleased
		total.GuardsCommitted += report.Stats.GuardsCommitted
		total.GuardsEscaped += report.Stats.GuardsEscaped

		for i := range report.Diagnostics {
			d := &report.Diagnostics[i]
			findings++
			if d.Severity == analysis.SeverityError || checkOpts.strict {
				failed = true
			}
			fmt.Println(d.String())
		}
	}

	if checkOpts.verbose {
		fmt.Printf("poisoncheck: %d files, %d guards (%d released, %d committed, %d escaped), %d findings\n",
			checked, total.GuardsSeen, total.GuardsReleased, total.GuardsCommitted,
			total.GuardsEscaped, findings)
	}

	switch {
	case parseFail:
		return 2
	case failed:
		return 1
	default:
		// Warnings alone, outside strict mode, do not fail the run.
		return 0
	}
}

// collectGoFiles expands args into the list of Go files to check.
// Directories are walked recursively; vendor, testdata and hidden or
// underscore-prefixed entries are skipped, matching the go tool's
// traversal rules. A "..." suffix on a directory is accepted and means
// the same recursive walk.
func collectGoFiles(args []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, arg := range args {
		arg = strings.TrimSuffix(arg, "...")
		if arg == "" {
			arg = "."
		}

		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if strings.HasSuffix(arg, ".go") {
				add(arg)
			}
			continue
		}

		if skip, err := skipModule(arg); err != nil {
			return nil, err
		} else if skip {
			if checkOpts.verbose {
				fmt.Printf("poisoncheck: skipping %s (module does not use the poisoning library)\n", arg)
			}
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			name := d.Name()
			if d.IsDir() {
				if path != arg && (name == "vendor" || name == "testdata" ||
					strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(name, ".go") {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// skipModule reports whether dir belongs to a module that cannot use
// the poisoning library. Trees without a go.mod are always checked.
func skipModule(dir string) (bool, error) {
	goMod := analysis.FindGoMod(dir)
	if goMod == "" {
		return false, nil
	}
	uses, err := analysis.UsesPoisoning(goMod)
	if err != nil {
		return false, err
	}
	return !uses, nil
}
