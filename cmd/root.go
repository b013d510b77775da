// Package cmd wires the CLI surface: flags, configuration and the
// backup, restore, export-db and inspect subcommands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"wp-backup/internal/database"
	"wp-backup/internal/display"
	"wp-backup/internal/environment"
	"wp-backup/internal/logging"
)

var cfgFile string

// Global flag variables
var (
	verbose bool
	quiet   bool
	noColor bool
	logFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wp-backup",
	Short: "Backup and restore WordPress sites with their databases",
	Long: `wp-backup captures a WordPress installation as a single portable
archive: the full file tree plus a SQL dump of its database, read
straight from the site's own wp-config.php.

The tool detects how the database runs. Compose-managed containers are
dumped through docker exec; native servers are dumped with the local
client, and the dialect (MariaDB or MySQL) is probed automatically.

Examples:
  # Back up a site into the current directory
  wp-backup backup -w /var/www/mysite

  # Back up into a specific directory, forcing the mysql dialect
  wp-backup backup -w /var/www/mysite -o /backups -d mysql

  # Restore a site from an archive
  wp-backup restore -b /backups/20260830_120000_mysite.zip -w /var/www/mysite

  # Export only the database, zstd-compressed
  wp-backup export-db -w /var/www/mysite -c zstd

  # Show what an archive contains without restoring it
  wp-backup inspect -b /backups/20260830_120000_mysite.zip`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.wp-backup.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable color output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to file in addition to stdout")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	viper.BindPFlag("no_color", rootCmd.PersistentFlags().Lookup("no-color"))
	viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))

	rootCmd.AddCommand(createVersionCommand())
	rootCmd.AddCommand(createConfigCommand())
}

// validateGlobalFlags checks flag combinations shared by every subcommand.
func validateGlobalFlags() error {
	if verbose && quiet {
		return fmt.Errorf("--verbose and --quiet flags are mutually exclusive")
	}
	return nil
}

// newLogger builds the logger from the global flags.
func newLogger() (*logging.Logger, error) {
	level := logging.LogLevelNormal
	if viper.GetBool("verbose") || verbose {
		level = logging.LogLevelVerbose
	}
	if viper.GetBool("quiet") || quiet {
		level = logging.LogLevelQuiet
	}

	file := logFile
	if file == "" {
		file = viper.GetString("log_file")
	}

	return logging.NewLogger(logging.Config{
		Level:   level,
		Output:  os.Stderr,
		Format:  "text",
		LogFile: file,
	})
}

func colorDisabled() bool {
	return noColor || viper.GetBool("no_color")
}

func newDisplay() *display.Service {
	return display.NewService(colorDisabled())
}

func newRunner() environment.CommandRunner {
	return environment.NewExecRunner()
}

func newExecutor() database.Executor {
	return database.NewExecExecutor()
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".wp-backup" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".wp-backup")
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("WP_BACKUP")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// Version information (set by main package)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
	goVersion = "unknown"
)

// SetVersionInfo sets the version information from build flags
func SetVersionInfo(v, bt, gc, gv string) {
	version = v
	buildTime = bt
	gitCommit = gc
	goVersion = gv
}

// createVersionCommand creates the version subcommand
func createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("wp-backup version %s\n", version)
			fmt.Printf("Built: %s\n", buildTime)
			fmt.Printf("Commit: %s\n", gitCommit)
			fmt.Printf("Go version: %s\n", goVersion)
		},
	}
}

// createConfigCommand creates the config subcommand for generating sample config
func createConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Generate a sample configuration file",
		Long: `Generate a sample configuration file that can be used with the --config flag.

Examples:
  wp-backup config > ~/.wp-backup.yaml`,
		Run: func(cmd *cobra.Command, args []string) {
			sampleConfig := `# wp-backup configuration file

# Default site root when -w is not given
site_root: /var/www/mysite

# Default output directory for backup archives
output_dir: /backups

# Operation settings
verbose: false            # Enable verbose output
quiet: false              # Suppress non-error output
no_color: false           # Disable colorized output
log_file: ""              # Optional log file path (logs also go to stderr)
timeout: 0s               # Global operation timeout (0 = no limit)

# Backup settings
skip_verify: false        # Skip the post-write archive checksum pass
no_manifest: false        # Omit backup_info.txt from archives
ping: false               # Run a connectivity check before native dumps

# Restore settings
auto_approve: false       # Skip the confirmation prompt before restoring

# Environment variable examples:
# WP_BACKUP_SITE_ROOT=/var/www/mysite
# WP_BACKUP_OUTPUT_DIR=/backups
# WP_BACKUP_NO_COLOR=1
# WP_BACKUP_AUTO_APPROVE=1
`
			fmt.Print(sampleConfig)
		},
	}
}
