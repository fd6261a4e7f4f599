// Package cmd implements the command-line interface for tokgrab.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tokgrab-cli/tokgrab/color"
	"github.com/tokgrab-cli/tokgrab/filesystem"
	"github.com/tokgrab-cli/tokgrab/history"
	"github.com/tokgrab-cli/tokgrab/icon"
	"github.com/tokgrab-cli/tokgrab/key"
	"github.com/tokgrab-cli/tokgrab/log"
	"github.com/tokgrab-cli/tokgrab/prompt"
	"github.com/tokgrab-cli/tokgrab/source"
	"github.com/tokgrab-cli/tokgrab/style"
	"github.com/tokgrab-cli/tokgrab/tikwm"
	"github.com/tokgrab-cli/tokgrab/transfer"
	"github.com/tokgrab-cli/tokgrab/tui"
	"github.com/tokgrab-cli/tokgrab/util"
	"github.com/tokgrab-cli/tokgrab/where"
	"golang.org/x/term"
)

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().StringP("variant", "V", "", "The media variant to download (video, hd, cover, music)")
	lo.Must0(getCmd.RegisterFlagCompletionFunc("variant", completionVariants))
	getCmd.Flags().BoolP("json", "j", false, "Print the resolved metadata as a JSON object and exit")
	getCmd.Flags().BoolP("plain", "p", false, "Report progress as plain text instead of the interactive view")
	getCmd.Flags().StringP("output", "o", "", "Specify a file path to write the JSON output")
}

func completionVariants(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return lo.Map(source.Variants(), func(v source.Variant, _ int) string {
		return v.String()
	}), cobra.ShellCompDirectiveNoFileComp
}

// getOutput is the structured metadata representation for scriptable mode.
type getOutput struct {
	Title    string            `json:"title"`
	Region   string            `json:"region"`
	Duration string            `json:"duration"`
	Cover    string            `json:"cover,omitempty"`
	Variants map[string]string `json:"variants"`
	Filename string            `json:"filename"`
}

func newGetOutput(media *source.Media, variant source.Variant) *getOutput {
	variants := make(map[string]string)
	for _, v := range source.Variants() {
		if url, ok := media.VariantURL(v).Get(); ok {
			variants[v.String()] = url
		}
	}

	return &getOutput{
		Title:    media.Title,
		Region:   media.Region,
		Duration: media.Duration(),
		Cover:    media.Cover.OrElse(""),
		Variants: variants,
		Filename: media.Filename(variant),
	}
}

// getCmd downloads a single link.
var getCmd = &cobra.Command{
	Use:   "get [url]",
	Short: "Download the media behind a single link",
	Long: `Resolve a link through the metadata API and download the selected variant.

A partially downloaded file is resumed from where it left off.
While downloading, space pauses and resumes, q cancels.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		link := args[0]
		if !source.IsSupportedURL(link) {
			handleErr(fmt.Errorf("unsupported url %s", link))
		}

		interactive := !lo.Must(cmd.Flags().GetBool("json")) && !lo.Must(cmd.Flags().GetBool("plain"))
		variant, err := resolveVariant(cmd, interactive)
		handleErr(err)

		erase := util.PrintErasable(fmt.Sprintf("%s Resolving metadata...", icon.Get(icon.Progress)))
		media, err := tikwm.New().Fetch(cmd.Context(), link)
		erase()
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(writeJson(cmd, newGetOutput(media, variant)))
			return
		}

		printMedia(media)

		remote, ok := media.VariantURL(variant).Get()
		if !ok {
			handleErr(fmt.Errorf("%s has no %s variant", link, variant))
		}

		path := filepath.Join(where.Downloads(), media.Filename(variant))
		if exists, _ := filesystem.API().Exists(path); exists {
			again, err := prompt.Overwrite(path)
			handleErr(err)
			if !again {
				fmt.Printf("%s Kept existing %s\n", icon.Get(icon.Skip), path)
				return
			}
		}

		request := transfer.Request{URL: remote, Path: path}

		var outcome transfer.Outcome
		if lo.Must(cmd.Flags().GetBool("plain")) {
			outcome, err = downloadPlain(cmd.Context(), request)
		} else {
			outcome, err = tui.Run(&tui.Options{Title: media.Title, Request: request})
		}

		if errors.Is(err, context.Canceled) {
			fmt.Printf("%s Cancelled, partial file kept at %s\n", icon.Get(icon.Pause), path)
			return
		}
		handleErr(err)

		if viper.GetBool(key.HistorySaveOnDownload) {
			if err := history.Save(media, link, variant, outcome); err != nil {
				log.Warnf("save history: %v", err)
			}
		}

		fmt.Printf(
			"%s Saved to %s %s\n",
			icon.Get(icon.Success),
			style.Bold(outcome.Path),
			style.Faint(fmt.Sprintf("(%s)", util.FormatBytes(outcome.Bytes))),
		)
	},
}

// resolveVariant reads the variant flag. When the flag is absent, interactive
// callers get a survey pick and non-interactive ones the standard video.
func resolveVariant(cmd *cobra.Command, interactive bool) (source.Variant, error) {
	flag := lo.Must(cmd.Flags().GetString("variant"))
	if flag != "" {
		return source.ParseVariant(flag)
	}
	if interactive && term.IsTerminal(int(os.Stdin.Fd())) {
		return prompt.Variant()
	}
	return source.StandardVideo, nil
}

func printMedia(media *source.Media) {
	fmt.Println(style.Fg(color.Purple)(style.Bold(media.Title)))
	fmt.Printf(
		"%s %s\n",
		style.Faint(media.Duration()),
		style.Faint(fmt.Sprintf("[%s]", media.Region)),
	)
}

// downloadPlain runs the transfer with erasable textual progress.
func downloadPlain(ctx context.Context, request transfer.Request) (transfer.Outcome, error) {
	task := transfer.New(request)

	done := make(chan struct{})
	go func() {
		defer close(done)
		var erase func()
		for event := range task.Events() {
			if progress, ok := event.(transfer.Progress); ok {
				if erase != nil {
					erase()
				}
				erase = util.PrintErasable(fmt.Sprintf(
					"%s Downloading... %d%%",
					icon.Get(icon.Download),
					progress.Percent,
				))
			}
		}
		if erase != nil {
			erase()
		}
	}()

	outcome, err := task.Run(ctx)
	<-done
	return outcome, err
}

func writeJson(cmd *cobra.Command, output *getOutput) error {
	target := os.Stdout
	if path := lo.Must(cmd.Flags().GetString("output")); path != "" {
		file, err := filesystem.API().Create(path)
		if err != nil {
			return err
		}
		defer util.Ignore(file.Close)
		return json.NewEncoder(file).Encode(output)
	}
	return json.NewEncoder(target).Encode(output)
}

func init() {
	getCmd.AddCommand(getSchemaCmd)
}

// getSchemaCmd generates the JSON schema for the scriptable metadata output.
var getSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate the JSON schema for the structured metadata output",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			name := t.Name()
			if strings.EqualFold(name, "getOutput") {
				return "output"
			}
			return name
		}

		handleErr(json.NewEncoder(os.Stdout).Encode(reflector.Reflect(&getOutput{})))
	},
}
