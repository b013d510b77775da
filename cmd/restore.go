package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"wp-backup/internal/display"
	"wp-backup/internal/restore"
)

var (
	restoreArchive     string
	restoreSiteRoot    string
	restoreDBOverride  string
	restoreAutoApprove bool
	restoreTimeout     time.Duration
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore a WordPress site from a backup archive",
	Long: `Restore the database and files of a WordPress site from an archive
created by the backup command.

The archive is validated before anything on the live site is touched,
and the database is restored before the file swap. The existing file
tree is renamed to a timestamped sibling, never deleted.

Examples:
  wp-backup restore -b /backups/20260830_120000_mysite.zip -w /var/www/mysite
  wp-backup restore -b backup.zip -w /var/www/mysite --auto-approve
  wp-backup restore -b backup.zip -w /var/www/mysite -d /srv/stack`,
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().StringVarP(&restoreArchive, "backup-file", "b", "", "path to the backup archive")
	restoreCmd.Flags().StringVarP(&restoreSiteRoot, "wordpress-root", "w", ".", "path the site is restored to")
	restoreCmd.Flags().StringVarP(&restoreDBOverride, "database", "d", "", "override detection: a dialect (mariadb, mysql) or a compose directory")
	restoreCmd.Flags().BoolVar(&restoreAutoApprove, "auto-approve", false, "skip the confirmation prompt")
	restoreCmd.Flags().DurationVar(&restoreTimeout, "timeout", 0, "abort the restore after this duration (0 = no limit)")

	restoreCmd.MarkFlagRequired("backup-file")
	viper.BindPFlag("auto_approve", restoreCmd.Flags().Lookup("auto-approve"))

	rootCmd.AddCommand(restoreCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	if err := validateGlobalFlags(); err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("logger setup failed: %w", err)
	}
	disp := newDisplay()

	autoApprove := restoreAutoApprove || viper.GetBool("auto_approve")
	colors := display.NewColorSystem(display.DefaultTheme(), colorDisabled())
	confirmer := display.NewConfirmer(colors, autoApprove)

	mgr := restore.NewManager(newRunner(), newExecutor(), logger, disp, confirmer)
	result, err := mgr.Run(cmd.Context(), restore.Options{
		ArchivePath: restoreArchive,
		SiteRoot:    restoreSiteRoot,
		DBOverride:  restoreDBOverride,
		AutoApprove: autoApprove,
		Timeout:     restoreTimeout,
	})
	if err != nil {
		if errors.Is(err, restore.ErrAborted) {
			disp.Warning("restore aborted")
			return nil
		}
		disp.Error("restore failed in phase %s: %v", mgr.State(), err)
		return err
	}

	disp.ShowRestoreSummary(&display.RestoreSummary{
		ArchivePath:   result.ArchivePath,
		SiteRoot:      result.SiteRoot,
		SafetyNetPath: result.SafetyNetPath,
		Duration:      result.Duration,
		Dialect:       string(result.Environment.Dialect),
		Containerized: result.Environment.Containerized,
		ContainerName: result.Environment.ContainerName,
		DatabaseName:  result.DatabaseName,
	})
	return nil
}
