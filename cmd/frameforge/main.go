package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"frameforge/internal/app"
	"frameforge/internal/config"
	"frameforge/internal/project"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "SaveProject").
func newApp(ctx context.Context, operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(ctx, cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// promptProjectName asks for a project name before the first save. The
// prompt only appears on an interactive terminal; otherwise the suggested
// name is kept as-is.
func promptProjectName(suggested string) string {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return suggested
	}

	fmt.Printf("Save as [%s]: ", suggested)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return suggested
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return suggested
	}
	return line
}

var rootCmd = &cobra.Command{
	Use:   "frameforge",
	Short: "Rotoscoping project archive tool",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:      %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:       %s\n", cfg.LogDir)
		fmt.Printf("AutoSave Mode: %s\n", cfg.AutoSave.Mode)
		fmt.Printf("Target:        %s\n", cfg.Target.Type)
		fmt.Printf("Catalog:       %s\n", cfg.Catalog.Type)
		return nil
	},
}

// inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect ARCHIVE",
	Short: "Show the contents of a project archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "InspectArchive")
		if err != nil {
			return err
		}
		defer a.Close()

		doc, err := a.InspectArchive(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Name:          %s\n", doc.Manifest.DisplayName)
		fmt.Printf("Format:        %s\n", project.FormatForFilename(args[0]))
		fmt.Printf("Version:       %s\n", doc.Manifest.FormatVersion)
		fmt.Printf("Created:       %s\n", doc.Manifest.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Modified:      %s\n", doc.Manifest.ModifiedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Frames:        %d drawn / %d total\n", len(doc.Frames), doc.Settings.Video.FrameCount)
		fmt.Printf("Checkpoints:   %d\n", len(doc.Checkpoints))
		if len(doc.EmbeddedVideo) > 0 {
			fmt.Printf("Video:         embedded (%d bytes)\n", len(doc.EmbeddedVideo))
		} else if src := doc.Settings.Video.VideoSource; src != nil {
			fmt.Printf("Video:         reference to %s\n", src.Filename)
		} else {
			fmt.Printf("Video:         none\n")
		}

		indices := doc.Frames.Indices()
		sort.Ints(indices)
		for _, i := range indices {
			fmt.Printf("  frame %d  (%d byte thumbnail)\n", i, len(doc.Frames[i].Thumbnail))
		}
		return nil
	},
}

// save command
var saveCmd = &cobra.Command{
	Use:   "save ARCHIVE",
	Short: "Open a project archive and save it back through the write target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "SaveProject")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.OpenProject(cmd.Context(), args[0]); err != nil {
			a.FailOperation()
			return err
		}

		s := a.Session()
		s.SetName(promptProjectName(s.Name()))
		s.MarkDirty()

		name, err := a.SaveProject(cmd.Context())
		if err != nil {
			a.FailOperation()
			return fmt.Errorf("save failed: %w", err)
		}

		fmt.Printf("Saved %s%s\n", name, s.Format().Extension())
		fmt.Println(s.StatusText())
		return nil
	},
}

// export command
var exportCmd = &cobra.Command{
	Use:   "export ARCHIVE OUTPUT",
	Short: "Export a project archive as a one-shot file copy",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "ExportProject")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.OpenProject(cmd.Context(), args[0]); err != nil {
			return err
		}

		f, err := os.Create(args[1])
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()

		if err := a.ExportProject(cmd.Context(), f); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		fmt.Printf("Exported to %s\n", args[1])
		return nil
	},
}

// convert command
var convertCmd = &cobra.Command{
	Use:   "convert ARCHIVE",
	Short: "Convert a project archive between formats",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, _ := cmd.Flags().GetString("to")

		var format project.Format
		switch to {
		case "lucas":
			format = project.FormatReference
		case "fluf":
			format = project.FormatEmbedded
		default:
			return fmt.Errorf("unknown format %q (expected lucas or fluf)", to)
		}

		a, err := newApp(cmd.Context(), "ConvertProject")
		if err != nil {
			return err
		}
		defer a.Close()

		name, err := a.ConvertProject(cmd.Context(), args[0], format)
		if err != nil {
			a.FailOperation()
			return fmt.Errorf("convert failed: %w", err)
		}

		fmt.Printf("Converted %s to %s\n", filepath.Base(args[0]), name)
		return nil
	},
}

// checkpoint command
var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Manage project checkpoints",
}

var checkpointListCmd = &cobra.Command{
	Use:   "list ARCHIVE",
	Short: "List checkpoints in an archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "ListCheckpoints")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.OpenProject(cmd.Context(), args[0]); err != nil {
			return err
		}

		checkpoints := a.Session().Checkpoints().List()
		if len(checkpoints) == 0 {
			fmt.Println("No checkpoints.")
			return nil
		}

		for _, cp := range checkpoints {
			fmt.Printf("%s  %s  %-20s  %d frame(s)\n",
				cp.ID,
				cp.CreatedAt.Format("2006-01-02 15:04:05"),
				cp.Name,
				len(cp.FrameIndices),
			)
		}
		return nil
	},
}

var checkpointCreateCmd = &cobra.Command{
	Use:   "create ARCHIVE",
	Short: "Create a checkpoint and save the archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")

		a, err := newApp(cmd.Context(), "CreateCheckpoint")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.OpenProject(cmd.Context(), args[0]); err != nil {
			a.FailOperation()
			return err
		}

		cp := a.Session().CreateCheckpoint(name)
		if _, err := a.SaveProject(cmd.Context()); err != nil {
			a.FailOperation()
			return fmt.Errorf("save failed: %w", err)
		}

		fmt.Printf("Created checkpoint %s (%s)\n", cp.Name, cp.ID)
		return nil
	},
}

var checkpointRestoreCmd = &cobra.Command{
	Use:   "restore ARCHIVE ID",
	Short: "Restore a checkpoint into the live frames and save the archive",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "RestoreCheckpoint")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.OpenProject(cmd.Context(), args[0]); err != nil {
			a.FailOperation()
			return err
		}

		if !a.Session().RestoreCheckpoint(args[1]) {
			a.FailOperation()
			return fmt.Errorf("no checkpoint with id %s", args[1])
		}

		if _, err := a.SaveProject(cmd.Context()); err != nil {
			a.FailOperation()
			return fmt.Errorf("save failed: %w", err)
		}

		fmt.Printf("Restored checkpoint %s\n", args[1])
		return nil
	},
}

var checkpointDeleteCmd = &cobra.Command{
	Use:   "delete ARCHIVE ID...",
	Short: "Delete checkpoints and save the archive",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "DeleteCheckpoints")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.OpenProject(cmd.Context(), args[0]); err != nil {
			a.FailOperation()
			return err
		}

		deleted := a.Session().DeleteCheckpoints(args[1:])
		if deleted == 0 {
			fmt.Println("No matching checkpoints.")
			return nil
		}

		if _, err := a.SaveProject(cmd.Context()); err != nil {
			a.FailOperation()
			return fmt.Errorf("save failed: %w", err)
		}

		fmt.Printf("Deleted %d checkpoint(s)\n", deleted)
		return nil
	},
}

var checkpointClearCmd = &cobra.Command{
	Use:   "clear ARCHIVE",
	Short: "Delete all checkpoints and save the archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "ClearCheckpoints")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.OpenProject(cmd.Context(), args[0]); err != nil {
			a.FailOperation()
			return err
		}

		cleared := a.Session().ClearCheckpoints()
		if cleared == 0 {
			fmt.Println("No checkpoints.")
			return nil
		}

		if _, err := a.SaveProject(cmd.Context()); err != nil {
			a.FailOperation()
			return fmt.Errorf("save failed: %w", err)
		}

		fmt.Printf("Cleared %d checkpoint(s)\n", cleared)
		return nil
	},
}

// video command
var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Manage the project's video source",
}

var videoValidateCmd = &cobra.Command{
	Use:   "validate ARCHIVE FILE",
	Short: "Check a video file against the archive's stored reference",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		duration, _ := cmd.Flags().GetFloat64("duration")

		a, err := newApp(cmd.Context(), "ValidateVideo")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.OpenProject(cmd.Context(), args[0]); err != nil {
			return err
		}

		info, err := os.Stat(args[1])
		if err != nil {
			return fmt.Errorf("stat video file: %w", err)
		}

		result, err := a.ValidateVideo(project.CandidateVideo{
			Filename:        filepath.Base(args[1]),
			FileSizeBytes:   info.Size(),
			DurationSeconds: duration,
		})
		if err != nil {
			return err
		}

		if result.IsExactMatch {
			fmt.Println("Exact match.")
			return nil
		}

		for _, d := range result.Differences {
			fmt.Printf("%-7s  %-10s  expected %s, got %s\n", d.Severity, d.Field, d.Expected, d.Actual)
		}
		if result.HasErrors() {
			return fmt.Errorf("video does not match the stored reference")
		}
		fmt.Println("Differences are warnings only; reconnect requires confirmation.")
		return nil
	},
}

// recent command
var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently opened project archives",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd.Context(), "RecentProjects")
		if err != nil {
			return err
		}
		defer a.Close()

		projects, err := a.RecentProjects(limit)
		if err != nil {
			return err
		}

		if len(projects) == 0 {
			fmt.Println("No recent projects.")
			return nil
		}

		for _, p := range projects {
			fmt.Printf("%s  %-6s  %-20s  %s\n",
				p.LastOpenedAt.Format("2006-01-02 15:04:05"),
				p.Format,
				p.Name,
				p.Path,
			)
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View project operation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd.Context(), "History")
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt.Valid {
				d := op.FinishedAt.Time.Sub(op.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-18s  %s  %-10s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
			)
		}
		return nil
	},
}

// watch command
var watchCmd = &cobra.Command{
	Use:   "watch ARCHIVE",
	Short: "Open an archive and auto-save it until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		a, err := newApp(ctx, "WatchProject")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.OpenProject(ctx, args[0]); err != nil {
			return err
		}

		if _, err := a.SaveProject(ctx); err != nil {
			return fmt.Errorf("initial save failed: %w", err)
		}

		fmt.Printf("Watching %s (Ctrl-C to stop)\n", args[0])
		a.Watch(ctx)
		fmt.Println(a.Session().StatusText())
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// checkpoint subcommands
	checkpointCmd.AddCommand(checkpointListCmd)
	checkpointCmd.AddCommand(checkpointCreateCmd)
	checkpointCreateCmd.Flags().StringP("name", "m", "", "Checkpoint name (defaults to a timestamp)")
	checkpointCmd.AddCommand(checkpointRestoreCmd)
	checkpointCmd.AddCommand(checkpointDeleteCmd)
	checkpointCmd.AddCommand(checkpointClearCmd)

	// video subcommands
	videoCmd.AddCommand(videoValidateCmd)
	videoValidateCmd.Flags().Float64P("duration", "d", 0, "Candidate video duration in seconds")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().String("to", "lucas", "Output format: lucas or fluf")
	rootCmd.AddCommand(checkpointCmd)
	rootCmd.AddCommand(videoCmd)
	rootCmd.AddCommand(recentCmd)
	recentCmd.Flags().IntP("limit", "n", 20, "Maximum number of projects to show")
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
	rootCmd.AddCommand(watchCmd)
}
