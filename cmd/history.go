// Package cmd implements the command-line interface for tokgrab.
package cmd

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/tokgrab-cli/tokgrab/color"
	"github.com/tokgrab-cli/tokgrab/history"
	"github.com/tokgrab-cli/tokgrab/icon"
	"github.com/tokgrab-cli/tokgrab/open"
	"github.com/tokgrab-cli/tokgrab/style"
	"github.com/tokgrab-cli/tokgrab/util"
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().BoolP("open", "o", false, "Open the first matching download with the system handler")
	historyCmd.Flags().BoolP("delete", "d", false, "Remove the first matching record from the history")
	historyCmd.MarkFlagsMutuallyExclusive("open", "delete")
}

// historyCmd inspects previously completed downloads.
var historyCmd = &cobra.Command{
	Use:   "history [query]...",
	Short: "List or search previously completed downloads",
	Long: `List the download history, most recent first. With a query, the
history is narrowed down by a fuzzy title match, closest title first.`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		records, err := history.Search(strings.Join(args, " "))
		handleErr(err)

		if len(records) == 0 {
			fmt.Printf("%s Nothing in the history\n", icon.Get(icon.Skip))
			return
		}

		if lo.Must(cmd.Flags().GetBool("open")) {
			first := records[0]
			fmt.Printf("%s Opening %s\n", icon.Get(icon.Progress), first.Path)
			handleErr(open.Start(first.Path))
			return
		}

		if lo.Must(cmd.Flags().GetBool("delete")) {
			first := records[0]
			handleErr(history.Remove(first))
			fmt.Printf("%s Removed %s\n", icon.Get(icon.Success), first.Title)
			return
		}

		for _, record := range records {
			fmt.Printf(
				"%s %s\n  %s\n",
				style.Faint(record.When()),
				style.Fg(color.Purple)(record.String()),
				style.Faint(record.Path),
			)
		}

		fmt.Printf("\n%s\n", util.Quantify(len(records), "record", "records"))
	},
}
