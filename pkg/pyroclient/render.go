package pyroclient

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Arkiver2/pyroTorrent/pkg/filetree"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
)

func renderTorrentList(output io.Writer, summaries []TorrentSummary) {
	table := newTable(output, []string{"Name", "Size", "Down", "Up", "Done", "Hash"})

	for _, summary := range summaries {
		done := "no"
		if summary.Complete {
			done = "yes"
		}

		table.Append([]string{
			summary.Name,
			formatBytes(summary.SizeBytes),
			formatRate(summary.DownloadRate),
			formatRate(summary.UploadRate),
			done,
			summary.Hash,
		})
	}

	table.Render()
}

func renderGlobalStats(output io.Writer, stats *GlobalStats) {
	fmt.Fprintf(output, "libtorrent:        %s\n", stats.LibtorrentVersion)
	fmt.Fprintf(output, "download:          %s (%s total)\n", formatRate(stats.DownloadRate), formatBytes(stats.DownloadTotal))
	fmt.Fprintf(output, "upload:            %s (%s total)\n", formatRate(stats.UploadRate), formatBytes(stats.UploadTotal))
	fmt.Fprintf(output, "download throttle: %s\n", formatThrottle(stats.DownloadThrottle))
	fmt.Fprintf(output, "upload throttle:   %s\n", formatThrottle(stats.UploadThrottle))
	fmt.Fprintf(output, "memory usage:      %s\n", formatBytes(stats.MemoryUsage))
}

func renderTorrentDetails(output io.Writer, details *TorrentDetails) {
	active := "no"
	if details.Active {
		active = "yes"
	}

	fmt.Fprintf(output, "name:        %s\n", details.Name)
	fmt.Fprintf(output, "hash:        %s\n", details.Hash)
	fmt.Fprintf(output, "size:        %s\n", formatBytes(details.SizeBytes))
	fmt.Fprintf(output, "downloaded:  %s\n", formatBytes(details.DownloadTotal))
	fmt.Fprintf(output, "active:      %s\n", active)
	fmt.Fprintf(output, "loaded from: %s\n", details.LoadedFile)
	if details.Message != "" {
		fmt.Fprintf(output, "message:     %s\n", details.Message)
	}
}

func renderFileTree(output io.Writer, root *filetree.Node) {
	fmt.Fprintf(output, ". %s (%d/%d chunks)\n", formatBytes(root.SizeBytes), root.CompletedChunks, root.TotalChunks)

	root.Walk(func(depth int, node *filetree.Node) {
		name := node.Name
		if !node.IsLeaf {
			name += "/"
		}

		fmt.Fprintf(output, "%s%s %s (%d/%d chunks)\n",
			strings.Repeat("  ", depth+1),
			name,
			formatBytes(node.SizeBytes),
			node.CompletedChunks,
			node.TotalChunks)
	})
}

func newTable(output io.Writer, headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(output)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)

	// piped output stays machine-friendly
	if file, isFile := output.(*os.File); !isFile || !isatty.IsTerminal(file.Fd()) {
		table.SetBorder(false)
	}

	return table
}

const (
	kiB = 1024
	miB = 1024 * kiB
	giB = 1024 * miB
	tiB = 1024 * giB
)

func formatBytes(n int64) string {
	switch {
	case n >= tiB:
		return fmt.Sprintf("%.2f TiB", float64(n)/tiB)
	case n >= giB:
		return fmt.Sprintf("%.2f GiB", float64(n)/giB)
	case n >= miB:
		return fmt.Sprintf("%.2f MiB", float64(n)/miB)
	case n >= kiB:
		return fmt.Sprintf("%.2f kiB", float64(n)/kiB)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func formatRate(bytesPerSecond int64) string {
	return formatBytes(bytesPerSecond) + "/s"
}

func formatThrottle(limitBytes int64) string {
	if limitBytes == 0 {
		return "unlimited"
	}

	return formatRate(limitBytes)
}
