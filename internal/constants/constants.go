// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort        = "8080"
	DefaultDBPath      = "cadenza.db"
	DefaultArtworkDir  = "artwork"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultScanWorkers = 4
	ShutdownTimeout    = 5 * time.Second
)

// Cache capacities
const (
	ArtCacheCapacity        = 200
	AudioPropsCacheCapacity = 1000
)

// Batch processing
const (
	// SmallBatchThreshold is the input size below which work is not chunked
	// and runs with concurrency equal to the input size.
	SmallBatchThreshold = 10
	IOBatchSize         = 16
)

// Persistence limits
const (
	// MaxSQLVars is the SQLite per-statement bind parameter ceiling.
	// Chunk sizes are derived from it per entity type.
	MaxSQLVars = 999
)

// MIME Types
const (
	MimeTypeFLAC = "audio/flac"
	MimeTypeMP3  = "audio/mpeg"
	MimeTypeMP4  = "audio/mp4"
	MimeTypeOgg  = "audio/ogg"
	MimeTypeWAV  = "audio/wav"
	MimeTypeJPEG = "image/jpeg"
)

// Library fallbacks
const (
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"
)

// Settings keys
const (
	SettingBlockedDirs = "blocked_directories"
	SettingAllowedDirs = "allowed_directories"
	SettingDeepScan    = "deep_scan"
)

// SupportedExtensions maps audio file extensions to their MIME type.
var SupportedExtensions = map[string]string{
	".flac": MimeTypeFLAC,
	".mp3":  MimeTypeMP3,
	".m4a":  MimeTypeMP4,
	".mp4":  MimeTypeMP4,
	".ogg":  MimeTypeOgg,
	".opus": MimeTypeOgg,
	".wav":  MimeTypeWAV,
}
