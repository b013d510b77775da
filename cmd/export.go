package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"wp-backup/internal/archive"
	"wp-backup/internal/backup"
	"wp-backup/internal/display"
)

var (
	exportSiteRoot    string
	exportOutput      string
	exportDBOverride  string
	exportCompression string
	exportTimeout     time.Duration
)

var exportCmd = &cobra.Command{
	Use:   "export-db",
	Short: "Export only the site database as a SQL dump",
	Long: `Dump the site's database to a standalone SQL file without packaging
the file tree. The dump can be compressed with gzip, lz4 or zstd.

Examples:
  wp-backup export-db -w /var/www/mysite
  wp-backup export-db -w /var/www/mysite -c zstd -o mysite.sql.zst`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportSiteRoot, "wordpress-root", "w", ".", "path to the WordPress installation")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default <timestamp>_<database>.sql plus compression suffix)")
	exportCmd.Flags().StringVarP(&exportDBOverride, "database", "d", "", "override detection: a dialect (mariadb, mysql) or a compose directory")
	exportCmd.Flags().StringVarP(&exportCompression, "compression", "c", "none", "compression algorithm (none, gzip, lz4, zstd)")
	exportCmd.Flags().DurationVar(&exportTimeout, "timeout", 0, "abort the export after this duration (0 = no limit)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if err := validateGlobalFlags(); err != nil {
		return err
	}

	compression, err := archive.ParseCompressionType(exportCompression)
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("logger setup failed: %w", err)
	}
	disp := newDisplay()

	mgr := backup.NewManager(newRunner(), newExecutor(), logger, disp, version)
	result, err := mgr.ExportDatabase(cmd.Context(), backup.ExportOptions{
		SiteRoot:    exportSiteRoot,
		OutputPath:  exportOutput,
		DBOverride:  exportDBOverride,
		Compression: compression,
		Timeout:     exportTimeout,
	})
	if err != nil {
		disp.Error("export failed: %v", err)
		return err
	}

	disp.Success("database %s exported to %s (%s)",
		result.DatabaseName, result.OutputPath, display.FormatBytes(result.OutputSize))
	return nil
}
