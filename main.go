package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"pysweep/internal/clean"
	"pysweep/internal/logging"
	"pysweep/internal/model"
	"pysweep/internal/scan"
	"pysweep/internal/tui"
	"pysweep/internal/web"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"github.com/tcnksm/go-latest"
)

func checkUpdate(currentVer string) {
	githubTag := &latest.GithubTag{
		Owner:      "pysweep",
		Repository: "pysweep",
	}

	res, err := latest.Check(githubTag, currentVer)
	if err != nil {
		return // Silently fail
	}

	if res.Outdated {
		fmt.Printf("\n✨ A new version is available: %s (you have %s)\n", res.Current, currentVer)
		fmt.Println("👉 Download it from https://github.com/pysweep/pysweep/releases")
	} else {
		fmt.Printf("✅ You are using the latest version: %s\n", currentVer)
	}
}

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pysweep [options]\n\n")
		fmt.Fprintf(os.Stderr, "pysweep finds Python interpreters and virtual environments across\n")
		fmt.Fprintf(os.Stderr, "package-manager conventions, cross-references their packages, and\n")
		fmt.Fprintf(os.Stderr, "safely removes the ones you no longer need.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  pysweep                           # Interactive TUI\n")
		fmt.Fprintf(os.Stderr, "  pysweep --venvs                   # List venvs by size\n")
		fmt.Fprintf(os.Stderr, "  pysweep --packages                # Duplicate/conflict report\n")
		fmt.Fprintf(os.Stderr, "  pysweep --json -o scan.json       # Export discovery as JSON\n")
		fmt.Fprintf(os.Stderr, "  pysweep --clean ~/old/.venv --dry-run\n")
		fmt.Fprintf(os.Stderr, "  pysweep --uninstall requests --from ~/proj/.venv\n")
	}

	interpFlag := pflag.BoolP("interpreters", "i", false, "List all Python interpreters")
	venvsFlag := pflag.BoolP("venvs", "e", false, "List all virtual environments")
	packagesFlag := pflag.BoolP("packages", "p", false, "Analyze packages across venvs")
	searchFlag := pflag.StringP("search", "s", "", "Search venvs and packages by name")
	jsonFlag := pflag.BoolP("json", "j", false, "Output discovery results as JSON")
	outputFlag := pflag.StringP("output", "o", "", "Write JSON output to the specified file")
	cleanFlag := pflag.StringP("clean", "c", "", "Delete the given venv or interpreter install")
	uninstallFlag := pflag.StringP("uninstall", "u", "", "Uninstall a package (requires --from)")
	fromFlag := pflag.String("from", "", "Venv path for --uninstall")
	dryRunFlag := pflag.BoolP("dry-run", "n", false, "Report what would be deleted without deleting")
	yesFlag := pflag.BoolP("yes", "y", false, "Skip the confirmation prompt")
	mdfindFlag := pflag.Bool("mdfind", false, "Use the macOS content index to speed up discovery")
	parallelFlag := pflag.Int("parallel", 4, "Parallel package-probe workers")
	noPackagesFlag := pflag.Bool("no-packages", false, "Skip package probing during --json export")
	pathFlag := pflag.String("path", "", "Extra root to scan recursively for venvs")
	depthFlag := pflag.Int("depth", 3, "Recursion depth for --path scanning")
	webFlag := pflag.BoolP("web", "w", false, "Start Web Mode on http://localhost:8080")
	logDirFlag := pflag.String("log-dir", "", "Directory for debug logs (default: disabled)")
	versionFlag := pflag.BoolP("version", "V", false, "Print version information")
	updateFlag := pflag.Bool("update", false, "Check for latest version")
	helpFlag := pflag.BoolP("help", "h", false, "Show this help message")
	pflag.Parse()

	if *helpFlag {
		pflag.Usage()
		return
	}

	if *versionFlag {
		fmt.Printf("pysweep version %s\n", model.Version)
		return
	}

	if *updateFlag {
		checkUpdate(model.Version)
		return
	}

	logging.Init(logging.Config{LogDir: *logDirFlag, Level: "debug"})

	cfg := scan.DefaultConfig()
	cfg.UseMdfind = *mdfindFlag
	cfg.Parallel = *parallelFlag
	cfg.ScanPath = *pathFlag
	cfg.MaxDepth = *depthFlag
	engine := scan.NewEngine(cfg, nil)

	switch {
	case *webFlag:
		web.NewServer(engine).Start("8080")
	case *cleanFlag != "":
		os.Exit(runCleanMode(*cleanFlag, *dryRunFlag, *yesFlag))
	case *uninstallFlag != "":
		os.Exit(runUninstallMode(engine, *uninstallFlag, *fromFlag, *dryRunFlag))
	case *interpFlag:
		runInterpretersMode(engine)
	case *venvsFlag:
		runVenvsMode(engine)
	case *packagesFlag:
		runPackagesMode(engine)
	case *searchFlag != "":
		runSearchMode(engine, *searchFlag)
	case *jsonFlag:
		runJsonMode(engine, *outputFlag, !*noPackagesFlag)
	default:
		runTuiMode(engine)
	}
}

func runInterpretersMode(engine *scan.Engine) {
	interpreters := engine.FindInterpreters()

	fmt.Printf("\nFound %d Python interpreters:\n\n", len(interpreters))
	fmt.Printf("%-12s %-10s %s\n", "Manager", "Size", "Version")
	fmt.Println(strings.Repeat("-", 80))

	sort.Slice(interpreters, func(i, j int) bool {
		return interpreters[i].SizeBytes > interpreters[j].SizeBytes
	})

	var total int64
	for _, it := range interpreters {
		version := it.Version
		if version == "" {
			version = "unknown"
		}
		marker := ""
		if it.IsSystem {
			marker = " (system)"
		}
		fmt.Printf("%-12s %-10s %s%s\n", "["+it.Manager+"]", model.FormatBytes(it.SizeBytes), version, marker)
		total += it.SizeBytes
	}
	fmt.Printf("\nTotal size: %s\n", model.FormatBytes(total))
}

func runVenvsMode(engine *scan.Engine) {
	venvs := engine.FindVenvs()

	fmt.Printf("\nFound %d virtual environments:\n\n", len(venvs))
	fmt.Printf("%-10s %-10s %-14s %-28s %s\n", "Manager", "Size", "Age", "Project", "Path")
	fmt.Println(strings.Repeat("-", 100))

	sort.Slice(venvs, func(i, j int) bool {
		return venvs[i].SizeBytes > venvs[j].SizeBytes
	})

	var total int64
	for _, v := range venvs {
		fmt.Printf("%-10s %-10s %-14s %-28.28s %s\n",
			"["+v.Manager+"]", model.FormatBytes(v.SizeBytes), model.FormatAge(v.LastModified),
			v.ProjectName, model.ShortenPath(v.Path, 50))
		total += v.SizeBytes
	}
	fmt.Printf("\nTotal size: %s\n", model.FormatBytes(total))
}

func runPackagesMode(engine *scan.Engine) {
	fmt.Println("Scanning virtual environments...")
	venvs := engine.FindVenvs()

	fmt.Printf("Analyzing packages in %d environments...\n", len(venvs))
	analyzer := scan.NewAnalyzer(engine, venvs)

	duplicates := analyzer.Duplicates()
	conflicts := analyzer.VersionConflicts()

	fmt.Printf("\n%s\n", strings.Repeat("=", 80))
	fmt.Println("Package Analysis")
	fmt.Printf("%s\n\n", strings.Repeat("=", 80))
	fmt.Printf("Total unique packages: %d\n", analyzer.UniquePackages())
	fmt.Printf("Packages in multiple venvs: %d\n", len(duplicates))
	fmt.Printf("Packages with version conflicts: %d\n\n", len(conflicts))

	if len(duplicates) > 0 {
		fmt.Println("Top 20 most duplicated packages:")
		for _, name := range analyzer.TopDuplicates(20) {
			installs := duplicates[name]
			seen := map[string]struct{}{}
			var versions []string
			for _, inst := range installs {
				if _, ok := seen[inst.Version]; !ok {
					seen[inst.Version] = struct{}{}
					versions = append(versions, inst.Version)
				}
			}
			sort.Strings(versions)
			fmt.Printf("  %s: %d copies\n", name, len(installs))
			fmt.Printf("    Versions: %s\n", strings.Join(versions, ", "))
		}
	}
}

func runSearchMode(engine *scan.Engine, pattern string) {
	fmt.Printf("Searching for %q...\n", pattern)
	venvs := engine.FindVenvs()

	lower := strings.ToLower(pattern)
	var matching []model.VirtualEnv
	for _, v := range venvs {
		if strings.Contains(strings.ToLower(v.ProjectName), lower) ||
			strings.Contains(strings.ToLower(v.Path), lower) {
			matching = append(matching, v)
		}
	}

	if len(matching) > 0 {
		fmt.Printf("\nFound %d matching virtual environments:\n\n", len(matching))
		for _, v := range matching {
			fmt.Printf("  %-10s %s (%s)\n", "["+v.Manager+"]", v.ProjectName, model.FormatBytes(v.SizeBytes))
			fmt.Printf("    %s\n", v.Path)
		}
	}

	analyzer := scan.NewAnalyzer(engine, venvs)
	hits := analyzer.FindPackage(pattern)
	if len(hits) > 0 {
		fmt.Printf("\nFound package %q in %d environments:\n\n", pattern, len(hits))
		for i, hit := range hits {
			if i >= 20 {
				fmt.Printf("  ... and %d more\n", len(hits)-20)
				break
			}
			fmt.Printf("  %s %s in %s\n", hit.Package.Name, hit.Package.Version, hit.Venv.ProjectName)
		}
	}
}

func runJsonMode(engine *scan.Engine, outputFile string, probePackages bool) {
	result := engine.Scan(probePackages)

	var out *os.File
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing to %s: %v\n", outputFile, err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	} else {
		out = os.Stdout
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding results: %v\n", err)
		os.Exit(1)
	}
	if outputFile != "" {
		fmt.Printf("Results saved to %s\n", outputFile)
	}
}

func runCleanMode(target string, dryRun, yes bool) int {
	guard := clean.NewGuard(nil)
	guard.Confirm = func(path string, size int64) bool {
		fmt.Printf("\nTarget: %s\n", path)
		fmt.Printf("Size: %s\n", model.FormatBytes(size))
		fmt.Print("\nAre you sure you want to delete this? [y/N]: ")
		reader := bufio.NewReader(os.Stdin)
		answer, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}

	plan, err := guard.Plan(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	res, err := guard.Execute(plan, clean.Options{DryRun: dryRun, SkipConfirmation: yes})
	switch {
	case err == nil && res.DryRun:
		fmt.Printf("[DRY RUN] Would delete %s (%s)\n", res.Target, model.FormatBytes(res.SizeBytes))
		return 0
	case err == nil:
		fmt.Printf("✓ Deleted %s (%s freed)\n", res.Target, model.FormatBytes(res.SizeBytes))
		return 0
	default:
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		return 1
	}
}

func runUninstallMode(engine *scan.Engine, pkg, venvPath string, dryRun bool) int {
	if venvPath == "" {
		fmt.Fprintln(os.Stderr, "Error: --uninstall requires --from VENV")
		return 1
	}

	v := engine.Prober().ProbeVenv(venvPath)
	if v == nil {
		fmt.Fprintf(os.Stderr, "Error: %s is not a virtual environment\n", venvPath)
		return 1
	}

	if dryRun {
		fmt.Printf("[DRY RUN] Would uninstall %s from %s\n", pkg, v.ProjectName)
		return 0
	}

	fmt.Printf("Uninstalling %s from %s...\n", pkg, v.ProjectName)
	if err := engine.Prober().UninstallPackage(v, pkg, false); err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		return 1
	}
	fmt.Printf("✓ Successfully uninstalled %s\n", pkg)
	return 0
}

func runTuiMode(engine *scan.Engine) {
	guard := clean.NewGuard(nil)
	m := tui.InitialModel(engine, guard)
	p := tea.NewProgram(&m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}
