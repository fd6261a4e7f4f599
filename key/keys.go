// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Download Output - these keys govern where and how fetched media is written to disk.
const (
	DownloadsDir         = "downloads.dir"
	DownloadsConcurrency = "downloads.concurrency"
)

// Metadata Fetcher - these keys configure the upstream metadata API client.
const (
	FetcherTimeout = "fetcher.timeout"
	FetcherRetries = "fetcher.retries"
	FetcherCache   = "fetcher.cache"
)

// Transfer Engine - these keys tune the byte-streaming layer.
const (
	TransferTimeout = "transfer.timeout"
)

// History Tracking - these keys configure the persistence of completed downloads.
const (
	HistorySaveOnDownload = "history.save_on_download"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the terminal application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
