package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/josephlewis42/minish/core/logger"
)

var eventsCmd = &cobra.Command{
	Use:     "events",
	Aliases: []string{"logs"},
	Short:   "Explore the command event log.",
}

var reportCommand = &cobra.Command{
	Use:   "report [FILE]",
	Short: "Show a report of executed commands.",
	Long: `Summarize an event log. Reads FILE if given, otherwise the event_log
configured in the config path.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		fd, err := openEventLog(args)
		if err != nil {
			return err
		}
		defer fd.Close()

		report, err := logger.Summarize(fd)
		if err != nil {
			return err
		}

		out, err := yaml.Marshal(report)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		return nil
	},
}

func openEventLog(args []string) (io.ReadCloser, error) {
	if len(args) == 1 {
		return os.Open(args[0])
	}

	config, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if !config.HasEventLog() {
		return nil, fmt.Errorf("no event_log configured in %q", cfgPath)
	}
	return config.ReadEventLog()
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(reportCommand)
}
