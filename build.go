// build.go - Market Desk Build System
// Usage: go run build.go [-target=TARGET]
// Targets: all, web, weekly-report, clean, test, release

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	version = "1.4.0"
	module  = "marketdesk"
)

// BuildContext holds configuration for the build process
type BuildContext struct {
	Verbose bool
	Release bool
}

var (
	rootDir string
	distDir string

	// Executable names (key = source dir name, value = output name)
	executables = map[string]string{
		"web":           "marketdesk",
		"weekly-report": "weekly-report",
	}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("Failed to get current directory: %v", err))
	}
	rootDir = cwd
	distDir = filepath.Join(rootDir, "dist")

	if _, err := os.Stat(filepath.Join(rootDir, "go.mod")); os.IsNotExist(err) {
		panic(fmt.Sprintf("go.mod not found in %s. Run the build from the repository root.", rootDir))
	}
}

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	printHeader()
	startTime := time.Now()

	ctx := &BuildContext{Verbose: *verbose}

	switch *target {
	case "all":
		buildAll(ctx)
	case "web", "weekly-report":
		prepareDist(ctx.Verbose)
		buildExecutable(*target, ctx)
	case "clean":
		clean()
	case "test":
		runTests(ctx.Verbose)
	case "release":
		ctx.Release = true
		runTests(ctx.Verbose)
		buildAll(ctx)
	default:
		showHelp()
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "        Market Desk - Build System         " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func printWarning(msg string) {
	fmt.Printf("%s[WARNING]%s %s\n", colorYellow, colorReset, msg)
}

// Build all executables
func buildAll(ctx *BuildContext) {
	printInfo("Building all components...")
	prepareDist(ctx.Verbose)

	for name := range executables {
		buildExecutable(name, ctx)
	}

	copyConfigFiles(ctx.Verbose)
	printSuccess("All components built successfully!")
}

// buildExecutable builds one cmd/ package into dist. The link time is
// stamped into the app package and reported by /api/version.
func buildExecutable(name string, ctx *BuildContext) {
	exeName, ok := executables[name]
	if !ok {
		printError(fmt.Sprintf("Unknown executable: %s", name))
		os.Exit(1)
	}
	if runtime.GOOS == "windows" {
		exeName += ".exe"
	}

	printInfo(fmt.Sprintf("Building %s...", name))

	outputPath := filepath.Join(distDir, exeName)
	ldflags := fmt.Sprintf("-X %s/internal/app.BuildTime=%s", module, time.Now().UTC().Format(time.RFC3339))
	if ctx.Release {
		ldflags = "-s -w " + ldflags
	}

	args := []string{"build"}
	if ctx.Verbose {
		args = append(args, "-v")
	}
	if ctx.Release {
		args = append(args, "-trimpath")
	}
	args = append(args, "-ldflags", ldflags, "-o", outputPath, "./cmd/"+name)

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Stderr = os.Stderr
	if ctx.Verbose {
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
		cmd.Stdout = os.Stdout
	}

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", name, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		sizeMB := float64(info.Size()) / 1024 / 1024
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", exeName, sizeMB))
	}
}

func prepareDist(verbose bool) {
	if err := os.MkdirAll(distDir, 0755); err != nil {
		printError(fmt.Sprintf("Failed to create %s: %v", distDir, err))
		os.Exit(1)
	}
	if verbose {
		printInfo(fmt.Sprintf("Output directory: %s", distDir))
	}
}

// copyConfigFiles copies the sample configuration next to the binaries
func copyConfigFiles(verbose bool) {
	src := filepath.Join(rootDir, "configs", "config.yaml")
	data, err := os.ReadFile(src)
	if err != nil {
		printWarning(fmt.Sprintf("No sample config copied: %v", err))
		return
	}
	dest := filepath.Join(distDir, "config.yaml")
	if err := os.WriteFile(dest, data, 0644); err != nil {
		printError(fmt.Sprintf("Failed to copy %s: %v", src, err))
		return
	}
	if verbose {
		printInfo(fmt.Sprintf("Copied %s", dest))
	}
}

func clean() {
	printInfo("Cleaning build artifacts...")
	if err := os.RemoveAll(distDir); err != nil {
		printError(fmt.Sprintf("Failed to clean dist directory: %v", err))
		return
	}
	printSuccess("Build artifacts cleaned")
}

// Run tests
func runTests(verbose bool) {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}
	printSuccess("All tests passed")
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all               Build all executables (default)")
	fmt.Println("  web               Build the Market Desk server")
	fmt.Println("  weekly-report     Build the weekly report CLI")
	fmt.Println("  clean             Remove dist/")
	fmt.Println("  test              Run all tests with the race detector")
	fmt.Println("  release           Test, then build stripped binaries")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -v                Verbose output")
}
