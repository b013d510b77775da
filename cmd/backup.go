package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"wp-backup/internal/backup"
	"wp-backup/internal/display"
)

var (
	backupSiteRoot   string
	backupOutputDir  string
	backupDBOverride string
	backupPing       bool
	backupSkipVerify bool
	backupNoManifest bool
	backupTimeout    time.Duration
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create a backup archive of a WordPress site",
	Long: `Create a zip archive containing the site's full file tree and a SQL
dump of its database.

Credentials are read from the site's wp-config.php. The database
environment (containerized or native, MariaDB or MySQL) is detected
automatically; use -d to override detection with either a dialect name
or the directory holding the compose file.

Examples:
  wp-backup backup -w /var/www/mysite
  wp-backup backup -w /var/www/mysite -o /backups
  wp-backup backup -w /var/www/mysite -d mariadb --ping
  wp-backup backup -w /var/www/mysite -d /srv/stack --timeout 10m`,
	RunE: runBackup,
}

func init() {
	backupCmd.Flags().StringVarP(&backupSiteRoot, "wordpress-root", "w", ".", "path to the WordPress installation")
	backupCmd.Flags().StringVarP(&backupOutputDir, "output-dir", "o", ".", "directory for the backup archive")
	backupCmd.Flags().StringVarP(&backupDBOverride, "database", "d", "", "override detection: a dialect (mariadb, mysql) or a compose directory")
	backupCmd.Flags().BoolVar(&backupPing, "ping", false, "verify database connectivity before dumping (native only)")
	backupCmd.Flags().BoolVar(&backupSkipVerify, "skip-verify", false, "skip the post-write archive checksum pass")
	backupCmd.Flags().BoolVar(&backupNoManifest, "no-manifest", false, "omit the backup_info.txt metadata file")
	backupCmd.Flags().DurationVar(&backupTimeout, "timeout", 0, "abort the backup after this duration (0 = no limit)")

	viper.BindPFlag("site_root", backupCmd.Flags().Lookup("wordpress-root"))
	viper.BindPFlag("output_dir", backupCmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("skip_verify", backupCmd.Flags().Lookup("skip-verify"))
	viper.BindPFlag("no_manifest", backupCmd.Flags().Lookup("no-manifest"))
	viper.BindPFlag("ping", backupCmd.Flags().Lookup("ping"))

	rootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	if err := validateGlobalFlags(); err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("logger setup failed: %w", err)
	}
	disp := newDisplay()

	opts := backup.Options{
		SiteRoot:   backupSiteRoot,
		OutputDir:  backupOutputDir,
		DBOverride: backupDBOverride,
		Ping:       backupPing || viper.GetBool("ping"),
		SkipVerify: backupSkipVerify || viper.GetBool("skip_verify"),
		NoManifest: backupNoManifest || viper.GetBool("no_manifest"),
		Timeout:    backupTimeout,
	}
	if !cmd.Flags().Changed("wordpress-root") && viper.GetString("site_root") != "" {
		opts.SiteRoot = viper.GetString("site_root")
	}
	if !cmd.Flags().Changed("output-dir") && viper.GetString("output_dir") != "" {
		opts.OutputDir = viper.GetString("output_dir")
	}

	mgr := backup.NewManager(newRunner(), newExecutor(), logger, disp, version)
	result, err := mgr.Run(cmd.Context(), opts)
	if err != nil {
		disp.Error("backup failed: %v", err)
		return err
	}

	disp.ShowBackupSummary(&display.BackupSummary{
		ArchivePath:   result.ArchivePath,
		ArchiveSize:   result.ArchiveSize,
		Entries:       result.Entries,
		Duration:      result.Duration,
		Dialect:       string(result.Environment.Dialect),
		Containerized: result.Environment.Containerized,
		ContainerName: result.Environment.ContainerName,
		DatabaseName:  result.DatabaseName,
		Verified:      !opts.SkipVerify && result.VerifyWarning == "",
		VerifyWarning: result.VerifyWarning,
	})
	return nil
}
