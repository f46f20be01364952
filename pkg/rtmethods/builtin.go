package rtmethods

// The built-in tables target rtorrent's pre-0.9 command names. To support a renamed
// remote surface, add or edit rows here; the local names are the stable API.

// operations on the daemon itself (empty entity scope)
func GlobalMethods() *Table {
	return mustTable([]MethodSpec{
		{"get_upload_throttle", "get_upload_rate", "Returns the upload throttle limit in bytes/s."},
		{"set_upload_throttle", "set_upload_rate", "Sets the upload throttle limit in bytes/s."},
		{"get_download_throttle", "get_download_rate", "Returns the download throttle limit in bytes/s."},
		{"set_download_throttle", "set_download_rate", "Sets the download throttle limit in bytes/s."},
		{"get_upload_rate", "get_up_rate", "Returns the current upload rate in bytes/s."},
		{"get_upload_rate_total", "get_up_total", "Returns total bytes uploaded."},
		{"get_download_rate", "get_down_rate", "Returns the current download rate in bytes/s."},
		{"get_download_rate_total", "get_down_total", "Returns total bytes downloaded."},
		{"get_memory_usage", "get_memory_usage", "Returns rtorrent's memory usage in bytes."},
		{"get_libtorrent_version", "system.library_version", "Returns the libtorrent version string."},
		{"add_torrent", "load", "Loads a torrent from the given path/URL without starting it."},
		{"add_torrent_start", "load_start", "Loads a torrent from the given path/URL and starts it."},
		{"download_list", "download_list", "Returns the info hashes of a view's torrents."},
	})
}

// operations taking a torrent's info hash as entity
func TorrentMethods() *Table {
	return mustTable([]MethodSpec{
		{"get_hash", "d.get_hash", "Returns the torrent's info hash."},
		{"get_name", "d.get_name", "Returns the torrent's name."},
		{"get_size_bytes", "d.get_size_bytes", "Returns the torrent's total size in bytes."},
		{"get_size_files", "d.get_size_files", "Returns the number of files in the torrent."},
		{"get_download_rate", "d.get_down_rate", "Returns the torrent's download rate in bytes/s."},
		{"get_upload_rate", "d.get_up_rate", "Returns the torrent's upload rate in bytes/s."},
		{"get_download_total", "d.get_down_total", "Returns bytes downloaded for the torrent."},
		{"is_complete", "d.complete", "Returns whether the torrent has finished downloading."},
		{"is_active", "d.is_active", "Returns whether the torrent is active."},
		{"get_loaded_file", "d.get_loaded_file", "Returns the path of the .torrent file loaded."},
		{"get_message", "d.get_message", "Returns the torrent's tracker/status message."},
	})
}

// operations taking (info hash, file index) as entity
func FileMethods() *Table {
	return mustTable([]MethodSpec{
		{"get_path", "f.get_path", "Returns the file's path relative to the torrent root."},
		{"get_path_components", "f.get_path_components", "Returns the file's path split into components."},
		{"get_size_bytes", "f.get_size_bytes", "Returns the file's size in bytes."},
		{"get_size_chunks", "f.get_size_chunks", "Returns the number of chunks the file spans."},
		{"get_completed_chunks", "f.get_completed_chunks", "Returns the number of completed chunks."},
		{"get_priority", "f.get_priority", "Returns the file's download priority."},
	})
}

func mustTable(specs []MethodSpec) *Table {
	table, err := NewTable(specs)
	if err != nil {
		panic(err)
	}

	return table
}
