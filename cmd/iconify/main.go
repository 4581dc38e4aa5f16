package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iconify-go/iconify/pkg"
	iconerrors "github.com/iconify-go/iconify/pkg/icons/errors"
	"github.com/iconify-go/iconify/pkg/icons/platform"
	"github.com/iconify-go/iconify/pkg/logging"
)

const version = "0.4.0"

// Exit codes, stable for scripting.
const (
	exitOK           = 0
	exitFailure      = 1
	exitNoArtwork    = 2
	exitInvalidImage = 3
	exitCompose      = 4
	exitPrivilege    = 5
	exitTarget       = 6
)

var (
	emojiArg     string
	imagePath    string
	sourceName   string
	candidateIdx int
	frameIdx     int
	sizesArg     string
	outputDir    string
	outputName   string
	retinaFlag   bool
	targetPath   string
	driveFlag    bool
	noApplyFlag  bool
	forceFlag    bool
	refreshFlag  bool
	refreshForce bool
	logLevel     string
	rootCmd      *cobra.Command
	versionFlag  bool
)

func getBuilderTimestamp() string {
	// Try to get vcs.time from build info
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.time" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					return t.UTC().Format(time.RFC3339)
				}
			}
		}
	}
	// Fallback to binary modification time
	if exePath, err := os.Executable(); err == nil {
		if stat, err := os.Stat(exePath); err == nil {
			return stat.ModTime().UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

func init() {
	rootCmd = &cobra.Command{
		Use:   "iconify",
		Short: "Turn emoji or images into icon bundles",
		Long: `Turn emoji or images into multi-resolution icon bundles (.ico + .iconset)
and optionally apply them to folders and drives.`,
		Run: runIconify,
	}

	rootCmd.Flags().StringVarP(&emojiArg, "emoji", "e", "", "Emoji name, hex code, U+ form, or literal character")
	rootCmd.Flags().StringVarP(&imagePath, "image", "i", "", "Path to a local source image")
	rootCmd.Flags().StringVar(&sourceName, "source", "", "Artwork source (twemoji, scrape, file)")
	rootCmd.Flags().IntVar(&candidateIdx, "candidate", -1, "Scraped candidate index (default: best ranked)")
	rootCmd.Flags().IntVar(&frameIdx, "frame", 0, "Animation frame to use for GIF sources")
	rootCmd.Flags().StringVar(&sizesArg, "sizes", "", "Comma-separated size ladder (default: 16,32,48,64,128,256)")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default: current directory)")
	rootCmd.Flags().StringVar(&outputName, "name", "", "Output basename (default: derived from the source)")
	rootCmd.Flags().BoolVar(&retinaFlag, "retina", false, "Also emit @2x iconset entries")
	rootCmd.Flags().StringVarP(&targetPath, "apply", "a", "", "Folder or drive root to apply the icon to")
	rootCmd.Flags().BoolVar(&driveFlag, "drive", false, "Treat the apply target as a drive root")
	rootCmd.Flags().BoolVar(&noApplyFlag, "no-apply", false, "Compose the bundle but do not touch the target")
	rootCmd.Flags().BoolVar(&forceFlag, "force", false, "Request elevation even for folder targets")
	rootCmd.Flags().BoolVar(&refreshFlag, "refresh", false, "Refresh the shell icon cache after applying")
	rootCmd.Flags().BoolVar(&refreshForce, "refresh-force", false, "Restart the shell while refreshing the cache")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.Flags().BoolVarP(&versionFlag, "version", "V", false, "Show version information")
}

func main() {
	// Handle --version or -V before cobra parses other flags
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-V") {
		fmt.Printf("iconify %s\n", version)
		fmt.Printf("Built: %s\n", getBuilderTimestamp())
		os.Exit(0)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFailure)
	}
}

func runIconify(cmd *cobra.Command, args []string) {
	if versionFlag {
		fmt.Printf("iconify %s\n", version)
		fmt.Printf("Built: %s\n", getBuilderTimestamp())
		return
	}

	if logLevel == "" {
		logLevel = logging.GetLogLevel()
	}
	logger := logging.NewLogger("iconify", logLevel, nil)

	// Refresh-only invocation: no artwork requested, just nudge the shell.
	if emojiArg == "" && imagePath == "" {
		if refreshFlag || refreshForce {
			if err := platform.Refresh(logger, platform.RefreshOptions{Force: refreshForce}); err != nil {
				logger.Error("Refresh failed", "error", err)
				os.Exit(exitFailure)
			}
			return
		}
		logger.Error("Nothing to do: pass --emoji, --image, or --refresh")
		os.Exit(exitNoArtwork)
	}

	sizes, err := parseSizes(sizesArg)
	if err != nil {
		logger.Error("Invalid size ladder", "sizes", sizesArg, "error", err)
		os.Exit(exitCompose)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := pkg.Options{
		Emoji:        emojiArg,
		ImagePath:    imagePath,
		Source:       sourceName,
		Candidate:    candidateIdx,
		Frame:        frameIdx,
		Sizes:        sizes,
		OutputDir:    outputDir,
		Name:         outputName,
		Retina:       retinaFlag,
		Target:       targetPath,
		Drive:        driveFlag,
		NoApply:      noApplyFlag,
		ForceElevate: forceFlag,
		ElevateArgs:  os.Args[1:],
		Refresh:      refreshFlag,
		RefreshForce: refreshForce,
	}

	res, err := pkg.Iconify(ctx, opts, logger)
	if err != nil {
		logger.Error("Run failed", "error", err)
		os.Exit(exitCode(err))
	}
	if res.Relaunched {
		logger.Info("🔒 Elevated process took over, exiting")
		return
	}

	logger.Info("🎉 Done",
		"ico", res.ICOPath,
		"iconset", res.IconsetPath,
		"origin", res.OriginID)
}

func parseSizes(arg string) ([]int, error) {
	if arg == "" {
		return nil, nil
	}
	parts := strings.Split(arg, ",")
	sizes := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid size %q", p)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, iconerrors.ErrNotFound), errors.Is(err, iconerrors.ErrNoArtwork):
		return exitNoArtwork
	case errors.Is(err, iconerrors.ErrInvalidImage), errors.Is(err, iconerrors.ErrDecode):
		return exitInvalidImage
	case errors.Is(err, iconerrors.ErrIncompleteBundle):
		return exitCompose
	case errors.Is(err, iconerrors.ErrInsufficientPrivilege):
		return exitPrivilege
	case errors.Is(err, iconerrors.ErrTargetNotFound), errors.Is(err, iconerrors.ErrTargetNotWritable):
		return exitTarget
	default:
		return exitFailure
	}
}
