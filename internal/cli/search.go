package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atomicstack/grpm/internal/app"
	"github.com/atomicstack/grpm/internal/backend"
	"github.com/atomicstack/grpm/internal/config"
	"github.com/atomicstack/grpm/internal/filter"
	"github.com/atomicstack/grpm/internal/release"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newSearchCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "search OWNER[/REPO] [REPO] [RELEASE] [ASSET]",
		Short: "List matching releases, or their assets when an asset pattern is given",
		Long:  `RELEASE is "latest", an exact tag written as "t:TAG", or a pattern.
A numeric RELEASE with no ASSET looks up that asset ID directly.`,
		Args:  maxArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve(cmd, args, deps)
			if err != nil {
				return err
			}
			if cfg.App.Owner == "" || cfg.App.Repo == "" {
				return &config.Error{Err: fmt.Errorf("search needs OWNER/REPO")}
			}
			client, closeClient, err := deps.NewClient(cfg.App)
			if err != nil {
				return err
			}
			defer closeClient()
			return search(cmd.Context(), client, cfg.App, cmd.OutOrStdout())
		},
	}
}

func search(ctx context.Context, client backend.Client, cfg app.Config, w io.Writer) error {
	if cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.FetchTimeout)
		defer cancel()
	}
	if id, ok := assetID(cfg.ReleasePattern, cfg.AssetPattern); ok {
		asset, err := client.GetAsset(ctx, cfg.Owner, cfg.Repo, id)
		if err != nil {
			return &backend.FetchError{Kind: backend.KindAsset, Owner: cfg.Owner, Repo: cfg.Repo, Err: err}
		}
		writeAssets(w, []assetRow{{tag: "-", asset: asset}})
		return nil
	}

	// Patterns come from the command line, so bad ones are usage errors.
	finder, err := parseReleaseFinder(cfg.ReleasePattern, cfg.Match)
	if err != nil {
		return &config.Error{Err: fmt.Errorf("release pattern: %w", err)}
	}
	assetMatcher, err := filter.Compile(cfg.AssetPattern, cfg.Match)
	if err != nil {
		return &config.Error{Err: fmt.Errorf("asset pattern: %w", err)}
	}

	all, err := client.ListReleases(ctx, cfg.Owner, cfg.Repo)
	if err != nil {
		return &backend.FetchError{Kind: backend.KindListReleases, Owner: cfg.Owner, Repo: cfg.Repo, Err: err}
	}
	releases := finder.find(all)

	if filter.IsEmpty(cfg.AssetPattern) {
		writeReleases(w, releases)
		return nil
	}
	var rows []assetRow
	for _, r := range releases {
		for _, a := range filter.Apply(assetMatcher, r.Assets, release.NameOf) {
			rows = append(rows, assetRow{tag: r.Tag, asset: a})
		}
	}
	writeAssets(w, rows)
	return nil
}

type assetRow struct {
	tag   string
	asset release.Asset
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	tb := tablewriter.NewWriter(w)
	tb.SetAutoWrapText(false)
	tb.SetBorder(false)
	tb.SetHeaderLine(false)
	tb.SetColumnSeparator("")
	tb.SetHeader(header)
	tb.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	aligns := make([]int, len(header))
	for i := range aligns {
		aligns[i] = tablewriter.ALIGN_LEFT
	}
	tb.SetColumnAlignment(aligns)
	return tb
}

func writeReleases(w io.Writer, releases []release.Release) {
	tb := newTable(w, []string{"Tag", "Name", "Published", "Assets", "Flags"})
	for _, r := range releases {
		published := "-"
		if !r.PublishedAt.IsZero() {
			published = r.PublishedAt.Format("2006-01-02")
		}
		tb.Append([]string{r.Tag, r.DisplayName(), published, strconv.Itoa(len(r.Assets)), flags(r)})
	}
	tb.Render()
}

func writeAssets(w io.Writer, rows []assetRow) {
	tb := newTable(w, []string{"Release", "Asset", "Size", "Downloads", "URL"})
	for _, row := range rows {
		a := row.asset
		tb.Append([]string{
			row.tag,
			a.Name,
			humanize.Bytes(uint64(a.Size)),
			humanize.Comma(a.DownloadCount),
			a.DownloadURL,
		})
	}
	tb.Render()
}

func flags(r release.Release) string {
	var out []string
	if r.Draft {
		out = append(out, "draft")
	}
	if r.Prerelease {
		out = append(out, "pre")
	}
	return strings.Join(out, ",")
}
