package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/discogstools/tools"
)

func newSearchCmd(flags *rootFlags, version string) *cobra.Command {
	var args tools.SearchArgs

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search Discogs releases",
		Long:  `Search Discogs releases and print the first page of results as JSON.`,
		Example: `  discogs-tools search --artist Nirvana --title Nevermind
  discogs-tools search --barcode "7 20642 44252 8"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := json.Marshal(args)
			if err != nil {
				return err
			}
			return runTool(cmd, flags, version, tools.NameSearchReleases, raw)
		},
	}

	f := cmd.Flags()
	f.StringVar(&args.Title, "title", "", "Release title")
	f.StringVar(&args.Artist, "artist", "", "Artist name")
	f.StringVar(&args.Barcode, "barcode", "", "Barcode")
	f.StringVar(&args.Label, "label", "", "Label name")
	f.StringVar(&args.CatNo, "catno", "", "Catalog number")
	f.IntVar(&args.Year, "year", 0, "Release year")
	f.StringVar(&args.Format, "format", "", "Format, e.g. Vinyl or CD")
	f.StringVar(&args.Country, "country", "", "Country of release")
	return cmd
}

func newReleaseCmd(flags *rootFlags, version string) *cobra.Command {
	return &cobra.Command{
		Use:     "release <id>",
		Short:   "Show one Discogs release",
		Long:    `Retrieve genres, styles, tracklist and images of one release and print them as JSON.`,
		Example: `  discogs-tools release 123456`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			id, err := strconv.Atoi(argv[0])
			if err != nil {
				return fmt.Errorf("release id %q is not an integer", argv[0])
			}
			raw, err := json.Marshal(tools.DetailsArgs{ReleaseID: id})
			if err != nil {
				return err
			}
			return runTool(cmd, flags, version, tools.NameGetReleaseDetails, raw)
		},
	}
}

// runTool invokes one tool and prints its value to stdout and its
// notifications to stderr.
func runTool(cmd *cobra.Command, flags *rootFlags, version, name string, raw json.RawMessage) error {
	ctx := cmd.Context()
	a, err := flags.newApp(ctx, version, cmd.ErrOrStderr(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.WithoutCancel(ctx)) }()

	res, err := a.Tools.Call(ctx, name, raw)
	if err != nil {
		return err
	}
	printNotifications(cmd.ErrOrStderr(), res.Notifications)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(res.Value); err != nil {
		return err
	}
	if res.IsError() {
		return ErrToolFailed
	}
	return nil
}

func printNotifications(w io.Writer, notes []tools.Notification) {
	for _, n := range notes {
		fmt.Fprintf(w, "%s: %s\n", n.Level, n.Message)
	}
}
