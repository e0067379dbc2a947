package cmd

import (
	"errors"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/josephlewis42/minish/commands"
	"github.com/josephlewis42/minish/core/config"
	"github.com/josephlewis42/minish/core/logger"
	"github.com/josephlewis42/minish/core/proc"
)

var (
	cfgPath    string
	command    string
	exitStatus int
)

func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		log.Println("Couldn't load config, using defaults: did you run init?")
		return config.Default(), nil
	}

	return configuration, err
}

// openEvents opens the configured event log, if any.
func openEvents(configuration *config.Configuration) (*logger.SessionLogger, io.Closer, error) {
	if !configuration.HasEventLog() {
		return nil, io.NopCloser(nil), nil
	}

	fd, err := configuration.OpenEventLog()
	if err != nil {
		return nil, nil, err
	}
	return logger.NewJsonLinesLogRecorder(fd).NewSession(), fd, nil
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "minish",
	Short: "A minimal line oriented shell",
	Long: `A minimal shell that runs single commands, background commands,
two stage pipelines (a | b) and conditionals (a && b).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		events, closer, err := openEvents(configuration)
		if err != nil {
			return err
		}
		defer closer.Close()

		sh := commands.NewShell(configuration, proc.Stdio{
			Stdin:  cmd.InOrStdin(),
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		}, events)
		sh.Logger = log.New(cmd.ErrOrStderr(), "minish: ", 0)

		if cmd.Flags().Changed("command") {
			exitStatus = sh.RunLine(command)
			return nil
		}

		if commands.IsTerminal(cmd.InOrStdin()) {
			// Terminal signals go to the foreground child; the shell keeps running.
			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, os.Interrupt, syscall.SIGQUIT)
			defer signal.Stop(sigs)
			go func() {
				for range sigs {
				}
			}()
		}

		exitStatus = sh.Run()
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
	os.Exit(exitStatus)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
	rootCmd.Flags().StringVarP(&command, "command", "c", "", "run LINE and exit with its status")
}
