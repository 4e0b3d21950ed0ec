package main

import (
	"fmt"
	"os"

	"quickbackup/internal/app"
	"quickbackup/internal/backup"
	"quickbackup/internal/config"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
func newApp() (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config (run 'qb config init' first?): %w", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "qb",
	Short: "Profile-driven incremental backups",
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
		dest, _ := cmd.Flags().GetString("dest")

		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		cfg.DefaultDestination = dest

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		if dest != "" {
			fmt.Printf("Default destination: %s\n", dest)
		}
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
		fmt.Printf("Base Dir:            %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:             %s\n", cfg.LogDir)
		fmt.Printf("Index Path:          %s\n", cfg.IndexPath)
		fmt.Printf("Default destination: %s\n", orNotSet(cfg.DefaultDestination))
		fmt.Printf("Database:            %s (%s)\n", cfg.Database.Type, cfg.Database.DataDir)
		return nil
	},
}

// create command
var createCmd = &cobra.Command{
	Use:   "create NAME SOURCE...",
	Short: "Create a backup profile",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dest, _ := cmd.Flags().GetString("dest")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		name, sources := args[0], args[1:]
		if err := a.CreateProfile(name, sources, dest); err != nil {
			return err
		}

		fmt.Printf("Profile %q created\n", name)
		fmt.Printf("  Sources: %d\n", len(sources))
		if dest != "" {
			fmt.Printf("  Destination: %s\n", dest)
		}
		return nil
	},
}

// list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		profiles, err := a.ListProfiles()
		if err != nil {
			return err
		}

		if len(profiles) == 0 {
			fmt.Println("No backup profiles found. Create one with: qb create")
			return nil
		}

		fmt.Printf("%d profile(s)\n\n", len(profiles))
		for _, p := range profiles {
			last := "Never"
			if p.LastBackup.Valid {
				last = p.LastBackup.Time.Format("2006-01-02 15:04:05")
			}
			fmt.Printf("* %s\n", p.Name)
			fmt.Printf("  Sources: %d\n", len(p.Sources))
			fmt.Printf("  Last backup: %s\n\n", last)
		}
		return nil
	},
}

// show command
var showCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Show profile details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.GetProfile(args[0])
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("profile not found: %s", args[0])
		}

		fmt.Printf("Profile: %s\n", p.Name)
		fmt.Printf("Created: %s\n", p.CreatedAt.Format("2006-01-02 15:04:05"))
		last := "Never"
		if p.LastBackup.Valid {
			last = p.LastBackup.Time.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("Last backup: %s\n", last)

		fmt.Printf("\nSources (%d):\n", len(p.Sources))
		for _, src := range p.Sources {
			fmt.Printf("  [%s] %s\n", existsMark(src), src)
		}

		if p.Destination != "" {
			fmt.Printf("\nDestination:\n  [%s] %s\n", existsMark(p.Destination), p.Destination)
		} else {
			fmt.Printf("\nDestination: not set (uses --dest or config default)\n")
		}
		return nil
	},
}

// delete command
var deleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteProfile(args[0]); err != nil {
			return err
		}
		fmt.Printf("Profile %q deleted\n", args[0])
		return nil
	},
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup NAME",
	Short: "Run a backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dest, _ := cmd.Flags().GetString("dest")
		noIncremental, _ := cmd.Flags().GetBool("no-incremental")
		noCompress, _ := cmd.Flags().GetBool("no-compress")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := a.Backup(args[0], backup.Options{
			DestOverride: dest,
			Incremental:  !noIncremental,
			Compress:     !noCompress,
		})
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}

		printSummary(summary)
		return nil
	},
}

func printSummary(s *backup.Summary) {
	fmt.Println("Backup complete!")
	fmt.Printf("Files backed up: %d\n", s.Stats.FilesCopied)
	if s.Incremental && s.Stats.FilesSkipped > 0 {
		fmt.Printf("Files skipped (unchanged): %d\n", s.Stats.FilesSkipped)
	}
	if s.Stats.FilesFailed > 0 {
		fmt.Printf("Files failed: %d\n", s.Stats.FilesFailed)
	}
	fmt.Printf("Total size: %s\n", humanize.Bytes(uint64(s.Stats.BytesCopied)))
	if s.Archived {
		fmt.Printf("Compressed: %s (%.1f%% reduction) -> %s\n",
			humanize.Bytes(uint64(s.ArchiveSize)), s.Ratio*100, s.ArchivePath)
	} else {
		fmt.Printf("Snapshot: %s\n", s.SnapshotDir)
	}
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func existsMark(path string) string {
	if _, err := os.Stat(path); err != nil {
		return "missing"
	}
	return "ok"
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configInitCmd.Flags().String("dest", "", "Default backup destination")

	createCmd.Flags().String("dest", "", "Backup destination folder")

	backupCmd.Flags().String("dest", "", "Override destination")
	backupCmd.Flags().Bool("no-incremental", false, "Copy all files regardless of fingerprints")
	backupCmd.Flags().Bool("no-compress", false, "Keep the snapshot directory uncompressed")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(backupCmd)
}
