// The client flows behind pyroTorrent's pages: torrent listings, single-torrent
// details, file trees and daemon-wide stats, each fetched as one batched XML-RPC
// round trip and cached for a short window.
package pyroclient

import (
	"context"
	"fmt"
	"log"

	"github.com/Arkiver2/pyroTorrent/pkg/filetree"
	"github.com/Arkiver2/pyroTorrent/pkg/requestcache"
	"github.com/Arkiver2/pyroTorrent/pkg/rtconfig"
	"github.com/Arkiver2/pyroTorrent/pkg/rtmethods"
	"github.com/Arkiver2/pyroTorrent/pkg/rtquery"
	"github.com/Arkiver2/pyroTorrent/pkg/rtrpc"
	"github.com/function61/gokit/logex"
	"github.com/samber/lo"
)

// the views rtorrent ships with
var validViews = []string{
	"default", "complete", "incomplete", "started", "stopped", "active", "hashing", "seeding",
}

type App struct {
	conf   *rtconfig.Config
	cache  *requestcache.Cache
	logger *log.Logger

	// test seam; real connections in production
	newInvoker func(target rtconfig.RemoteTarget) (rtrpc.Invoker, error)
}

func NewApp(conf *rtconfig.Config, logger *log.Logger) *App {
	return &App{
		conf:   conf,
		cache:  requestcache.New(requestcache.DefaultTTL, logex.Prefix("requestcache", logger)),
		logger: logger,
		newInvoker: func(target rtconfig.RemoteTarget) (rtrpc.Invoker, error) {
			return rtrpc.New(target, logger)
		},
	}
}

func (a *App) GlobalStats(ctx context.Context, targetName string) (*GlobalStats, error) {
	invoker, err := a.invoker(targetName)
	if err != nil {
		return nil, err
	}

	query := rtquery.New(invoker, rtmethods.GlobalMethods()).
		Op("get_upload_rate").
		Op("get_download_rate").
		Op("get_upload_rate_total").
		Op("get_download_rate_total").
		Op("get_upload_throttle").
		Op("get_download_throttle").
		Op("get_memory_usage").
		Op("get_libtorrent_version")

	records, err := a.cached(ctx, targetName, query)
	if err != nil {
		return nil, err
	}

	return globalStatsFromRecord(records[""])
}

// the info hashes of one view's torrents
func (a *App) DownloadList(ctx context.Context, targetName string, view string) ([]string, error) {
	if view == "" {
		view = "default"
	}
	if !lo.Contains(validViews, view) {
		return nil, fmt.Errorf("invalid view: %s", view)
	}

	invoker, err := a.invoker(targetName)
	if err != nil {
		return nil, err
	}

	remoteName, err := rtmethods.GlobalMethods().Resolve("download_list")
	if err != nil {
		return nil, err
	}

	value, err := invoker.Invoke(ctx, remoteName, view)
	if err != nil {
		return nil, err
	}

	items, isArray := value.([]interface{})
	if !isArray {
		return nil, fmt.Errorf("%w: download_list did not return an array", rtrpc.ErrProtocol)
	}

	hashes := make([]string, 0, len(items))
	for _, item := range items {
		hash, isString := item.(string)
		if !isString {
			return nil, fmt.Errorf("%w: download_list entry is %T", rtrpc.ErrProtocol, item)
		}

		hashes = append(hashes, hash)
	}

	return hashes, nil
}

// every row of the listing page, one round trip for the hashes plus one batched
// round trip for all attributes of all torrents
func (a *App) TorrentList(ctx context.Context, targetName string, view string) ([]TorrentSummary, error) {
	hashes, err := a.DownloadList(ctx, targetName, view)
	if err != nil {
		return nil, err
	}

	if len(hashes) == 0 {
		return []TorrentSummary{}, nil
	}

	invoker, err := a.invoker(targetName)
	if err != nil {
		return nil, err
	}

	query := rtquery.New(invoker, rtmethods.TorrentMethods())
	for _, hash := range hashes {
		query.ForEntity(hash).
			Op("get_hash").
			Op("get_name").
			Op("get_size_bytes").
			Op("get_download_rate").
			Op("get_upload_rate").
			Op("get_download_total").
			Op("is_complete")
	}

	records, err := a.cached(ctx, targetName, query)
	if err != nil {
		return nil, err
	}

	summaries := make([]TorrentSummary, 0, len(hashes))
	for _, hash := range hashes {
		summary, err := torrentSummaryFromRecord(records[hash])
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, *summary)
	}

	return summaries, nil
}

func (a *App) TorrentDetails(ctx context.Context, targetName string, hash string) (*TorrentDetails, error) {
	invoker, err := a.invoker(targetName)
	if err != nil {
		return nil, err
	}

	query := rtquery.New(invoker, rtmethods.TorrentMethods()).
		ForEntity(hash).
		Op("get_hash").
		Op("get_name").
		Op("get_size_bytes").
		Op("get_download_total").
		Op("get_loaded_file").
		Op("get_message").
		Op("is_active")

	records, err := a.cached(ctx, targetName, query)
	if err != nil {
		return nil, err
	}

	return torrentDetailsFromRecord(records[hash])
}

// the torrent's directory tree, reconstructed from the flat per-file listing
func (a *App) FileTree(ctx context.Context, targetName string, hash string) (*filetree.Node, error) {
	invoker, err := a.invoker(targetName)
	if err != nil {
		return nil, err
	}

	countQuery := rtquery.New(invoker, rtmethods.TorrentMethods()).
		ForEntity(hash).
		Op("get_size_files")

	countRecords, err := a.cached(ctx, targetName, countQuery)
	if err != nil {
		return nil, err
	}

	fileCount, err := countRecords[hash].Int("get_size_files")
	if err != nil {
		return nil, err
	}

	query := rtquery.New(invoker, rtmethods.FileMethods())
	fileIDs := make([]string, 0, fileCount)
	for i := int64(0); i < fileCount; i++ {
		fileID := fmt.Sprintf("%s:%d", hash, i)
		fileIDs = append(fileIDs, fileID)

		query.ForEntity(fileID).
			Op("get_path_components").
			Op("get_size_bytes").
			Op("get_size_chunks").
			Op("get_completed_chunks")
	}

	records, err := a.cached(ctx, targetName, query)
	if err != nil {
		return nil, err
	}

	entries := make([]filetree.Entry, 0, len(fileIDs))
	for _, fileID := range fileIDs {
		record := records[fileID]

		components, err := record.Strings("get_path_components")
		if err != nil {
			return nil, err
		}
		size, err := record.Int("get_size_bytes")
		if err != nil {
			return nil, err
		}
		totalChunks, err := record.Int("get_size_chunks")
		if err != nil {
			return nil, err
		}
		completedChunks, err := record.Int("get_completed_chunks")
		if err != nil {
			return nil, err
		}

		entries = append(entries, filetree.Entry{
			PathComponents:  components,
			SizeBytes:       size,
			CompletedChunks: completedChunks,
			TotalChunks:     totalChunks,
		})
	}

	return filetree.Build(entries)
}

func (a *App) GetThrottle(ctx context.Context, targetName string, direction string) (int64, error) {
	value, err := a.invokeGlobal(ctx, targetName, "get_"+direction+"_throttle")
	if err != nil {
		return 0, err
	}

	limit, isInt := value.(int64)
	if !isInt {
		return 0, fmt.Errorf("%w: throttle is %T", rtrpc.ErrProtocol, value)
	}

	return limit, nil
}

func (a *App) SetThrottle(ctx context.Context, targetName string, direction string, limitBytes int64) error {
	_, err := a.invokeGlobal(ctx, targetName, "set_"+direction+"_throttle", limitBytes)
	return err
}

// start=false loads the torrent stopped, like dropping it in the watch directory
func (a *App) AddTorrent(ctx context.Context, targetName string, torrentPath string, start bool) error {
	op := "add_torrent"
	if start {
		op = "add_torrent_start"
	}

	_, err := a.invokeGlobal(ctx, targetName, op, torrentPath)
	return err
}

func (a *App) invokeGlobal(ctx context.Context, targetName string, op string, args ...interface{}) (interface{}, error) {
	invoker, err := a.invoker(targetName)
	if err != nil {
		return nil, err
	}

	remoteName, err := rtmethods.GlobalMethods().Resolve(op)
	if err != nil {
		return nil, err
	}

	return invoker.Invoke(ctx, remoteName, args...)
}

func (a *App) invoker(targetName string) (rtrpc.Invoker, error) {
	target, err := a.conf.Target(targetName)
	if err != nil {
		return nil, err
	}

	return a.newInvoker(*target)
}

// fingerprints are scoped per target: the same hash on two daemons is still two
// different requests
func (a *App) cached(
	ctx context.Context,
	targetName string,
	query *rtquery.Query,
) (map[string]*rtquery.ResultRecord, error) {
	if err := query.Err(); err != nil {
		return nil, err
	}

	return a.cache.GetOrMaterialize(ctx, targetName+"/"+query.Fingerprint(), query.Materialize)
}
