package pyroclient

import (
	"errors"

	"github.com/Arkiver2/pyroTorrent/pkg/rtquery"
	"github.com/Arkiver2/pyroTorrent/pkg/rtrpc"
)

// the daemon-wide figures shown on every page
type GlobalStats struct {
	UploadRate        int64
	DownloadRate      int64
	UploadTotal       int64
	DownloadTotal     int64
	UploadThrottle    int64
	DownloadThrottle  int64
	MemoryUsage       int64
	LibtorrentVersion string
}

// one row of the torrent listing
type TorrentSummary struct {
	Hash          string
	Name          string
	SizeBytes     int64
	DownloadRate  int64
	UploadRate    int64
	DownloadTotal int64
	Complete      bool
}

// the single-torrent page's fields
type TorrentDetails struct {
	Hash          string
	Name          string
	SizeBytes     int64
	DownloadTotal int64
	LoadedFile    string
	Message       string
	Active        bool
}

func globalStatsFromRecord(record *rtquery.ResultRecord) (*GlobalStats, error) {
	stats := &GlobalStats{}

	fields := []fieldDecode{
		intInto(&stats.UploadRate, "get_upload_rate"),
		intInto(&stats.DownloadRate, "get_download_rate"),
		intInto(&stats.UploadTotal, "get_upload_rate_total"),
		intInto(&stats.DownloadTotal, "get_download_rate_total"),
		intInto(&stats.UploadThrottle, "get_upload_throttle"),
		intInto(&stats.DownloadThrottle, "get_download_throttle"),
		intInto(&stats.MemoryUsage, "get_memory_usage"),
		stringInto(&stats.LibtorrentVersion, "get_libtorrent_version"),
	}

	if err := decodeFields(record, fields); err != nil {
		return nil, err
	}

	return stats, nil
}

func torrentSummaryFromRecord(record *rtquery.ResultRecord) (*TorrentSummary, error) {
	summary := &TorrentSummary{}

	fields := []fieldDecode{
		stringInto(&summary.Hash, "get_hash"),
		stringInto(&summary.Name, "get_name"),
		intInto(&summary.SizeBytes, "get_size_bytes"),
		intInto(&summary.DownloadRate, "get_download_rate"),
		intInto(&summary.UploadRate, "get_upload_rate"),
		intInto(&summary.DownloadTotal, "get_download_total"),
		boolInto(&summary.Complete, "is_complete"),
	}

	if err := decodeFields(record, fields); err != nil {
		return nil, err
	}

	return summary, nil
}

func torrentDetailsFromRecord(record *rtquery.ResultRecord) (*TorrentDetails, error) {
	details := &TorrentDetails{}

	fields := []fieldDecode{
		stringInto(&details.Hash, "get_hash"),
		stringInto(&details.Name, "get_name"),
		intInto(&details.SizeBytes, "get_size_bytes"),
		intInto(&details.DownloadTotal, "get_download_total"),
		stringInto(&details.LoadedFile, "get_loaded_file"),
		stringInto(&details.Message, "get_message"),
		boolInto(&details.Active, "is_active"),
	}

	if err := decodeFields(record, fields); err != nil {
		return nil, err
	}

	return details, nil
}

// A remote fault on one field leaves the struct field at its zero value so the rest
// of the entity still renders (the page shows "N/A", not an error page). Anything
// else - wrong types, missing fields - is a real error.
type fieldDecode func(record *rtquery.ResultRecord) error

func decodeFields(record *rtquery.ResultRecord, fields []fieldDecode) error {
	for _, decode := range fields {
		if err := decode(record); err != nil {
			fault := &rtrpc.Fault{}
			if errors.As(err, &fault) {
				continue
			}

			return err
		}
	}

	return nil
}

func intInto(target *int64, op string) fieldDecode {
	return func(record *rtquery.ResultRecord) error {
		value, err := record.Int(op)
		if err != nil {
			return err
		}

		*target = value
		return nil
	}
}

func stringInto(target *string, op string) fieldDecode {
	return func(record *rtquery.ResultRecord) error {
		value, err := record.String(op)
		if err != nil {
			return err
		}

		*target = value
		return nil
	}
}

func boolInto(target *bool, op string) fieldDecode {
	return func(record *rtquery.ResultRecord) error {
		value, err := record.Bool(op)
		if err != nil {
			return err
		}

		*target = value
		return nil
	}
}
