// Package cmd implements the command-line interface for tokgrab.
package cmd

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tokgrab-cli/tokgrab/batch"
	"github.com/tokgrab-cli/tokgrab/filesystem"
	"github.com/tokgrab-cli/tokgrab/history"
	"github.com/tokgrab-cli/tokgrab/icon"
	"github.com/tokgrab-cli/tokgrab/key"
	"github.com/tokgrab-cli/tokgrab/log"
	"github.com/tokgrab-cli/tokgrab/source"
	"github.com/tokgrab-cli/tokgrab/style"
	"github.com/tokgrab-cli/tokgrab/tikwm"
	"github.com/tokgrab-cli/tokgrab/transfer"
	"github.com/tokgrab-cli/tokgrab/util"
	"github.com/tokgrab-cli/tokgrab/where"
)

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("variant", "V", "", "The media variant to download (video, hd, cover, music)")
	lo.Must0(batchCmd.RegisterFlagCompletionFunc("variant", completionVariants))

	batchCmd.Flags().IntP("concurrency", "c", 0, "Cap on simultaneous transfers (0 for unbounded)")
	lo.Must0(viper.BindPFlag(key.DownloadsConcurrency, batchCmd.Flags().Lookup("concurrency")))

	batchCmd.Flags().StringP("file", "f", "", "Read links from a file, one per line")
}

// batchCmd downloads many links at once.
var batchCmd = &cobra.Command{
	Use:   "batch [url]...",
	Short: "Download the media behind many links at once",
	Long: `Resolve several links and download them concurrently.

Links can be passed as arguments or collected in a file given with --file,
one link per line. Lines starting with # are ignored. Links pointing at an
unrecognized domain are discarded before the batch starts.`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		variant, err := resolveVariant(cmd, false)
		handleErr(err)

		links := args
		if path := lo.Must(cmd.Flags().GetString("file")); path != "" {
			fromFile, err := readLinks(path)
			handleErr(err)
			links = append(links, fromFile...)
		}

		if len(links) == 0 {
			handleErr(fmt.Errorf("no links given, pass them as arguments or with --file"))
		}

		var record func(url string, media *source.Media, outcome transfer.Outcome)
		if viper.GetBool(key.HistorySaveOnDownload) {
			record = func(url string, media *source.Media, outcome transfer.Outcome) {
				if err := history.Save(media, url, variant, outcome); err != nil {
					log.Warnf("save history: %v", err)
				}
			}
		}

		var erase func()
		job, err := batch.Run(cmd.Context(), links, batch.Options{
			Fetcher: tikwm.New(),
			Variant: variant,
			Dir:     where.Downloads(),
			Limit:   viper.GetInt(key.DownloadsConcurrency),
			OnProgress: func(completed, total, percent int) {
				if erase != nil {
					erase()
				}
				erase = util.PrintErasable(fmt.Sprintf(
					"%s %d/%d (%d%%)",
					icon.Get(icon.Download), completed, total, percent,
				))
			},
			Record: record,
		})
		handleErr(err)

		results := job.Wait()
		if erase != nil {
			erase()
		}

		var downloaded, skipped, failed int
		for _, result := range results {
			switch result.Status {
			case batch.Downloaded:
				downloaded++
				fmt.Printf("%s %s %s\n",
					icon.Get(icon.Success),
					style.Bold(result.Path),
					style.Faint(fmt.Sprintf("(%s)", util.FormatBytes(result.Bytes))),
				)
			case batch.FailedFetch, batch.FailedTransfer:
				failed++
				fmt.Printf("%s %s: %v\n", icon.Get(icon.Fail), result.URL, result.Err)
			default:
				skipped++
				fmt.Printf("%s %s %s\n", icon.Get(icon.Skip), result.URL, style.Faint(result.Status.String()))
			}
		}

		fmt.Printf(
			"\n%s, %s, %s\n",
			util.Quantify(downloaded, "download", "downloads"),
			util.Quantify(skipped, "skip", "skips"),
			util.Quantify(failed, "failure", "failures"),
		)
	},
}

// readLinks collects non-empty, non-comment lines from a file.
func readLinks(path string) ([]string, error) {
	contents, err := filesystem.API().ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read links from %s: %w", path, err)
	}

	var links []string
	for _, line := range strings.Split(string(contents), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		links = append(links, line)
	}
	return links, nil
}
