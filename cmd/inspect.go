package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"wp-backup/internal/archive"
	"wp-backup/internal/display"
	"wp-backup/internal/wpconfig"
)

var inspectArchive string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Validate a backup archive and show its contents",
	Long: `Extract a backup archive into a temporary workspace, run the same
validation the restore command uses, and print its manifest and
database settings. Nothing outside the workspace is touched.

Examples:
  wp-backup inspect -b /backups/20260830_120000_mysite.zip`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectArchive, "backup-file", "b", "", "path to the backup archive")
	inspectCmd.MarkFlagRequired("backup-file")

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	if err := validateGlobalFlags(); err != nil {
		return err
	}
	disp := newDisplay()

	if _, err := os.Stat(inspectArchive); err != nil {
		return fmt.Errorf("archive %s not found", inspectArchive)
	}

	ws, err := archive.NewWorkspace("wp-inspect-")
	if err != nil {
		return fmt.Errorf("cannot create workspace: %w", err)
	}
	defer ws.Close()

	extracted, err := archive.ExtractAndValidate(inspectArchive, ws.Root)
	if err != nil {
		disp.Error("archive is not restorable: %v", err)
		return err
	}
	disp.Success("archive is valid and restorable")

	if err := archive.Verify(inspectArchive); err != nil {
		disp.Warning("checksum verification failed: %v", err)
	}

	manifest, err := archive.ReadManifest(extracted)
	if err != nil {
		return err
	}
	disp.ShowManifest(manifest)

	cfg, err := wpconfig.Parse(extracted.ConfigPath)
	if err != nil {
		return err
	}
	disp.Step("database", "database %s on %s as user %s", cfg.DatabaseName, cfg.DatabaseHost, cfg.DatabaseUser)

	if info, err := os.Stat(extracted.SQLPath); err == nil {
		disp.Step("info", "database dump: %s", display.FormatBytes(info.Size()))
	}

	var fileCount int
	var totalSize int64
	filepath.WalkDir(extracted.FilesDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if info, infoErr := d.Info(); infoErr == nil {
			fileCount++
			totalSize += info.Size()
		}
		return nil
	})
	disp.Step("archive", "site files: %d files, %s", fileCount, display.FormatBytes(totalSize))
	return nil
}
