package catalog

import (
	"context"
	"fmt"
	"hash/fnv"
	"io/fs"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/avilaroman/cadenza/internal/constants"
	"github.com/avilaroman/cadenza/internal/domain"
	"github.com/avilaroman/cadenza/internal/logger"
	"github.com/avilaroman/cadenza/internal/tagging"
)

var trackPrefixPattern = regexp.MustCompile(`^\s*(\d{1,2})[\s._-]+(.+)$`)

// FSProvider enumerates audio files under one or more media directories.
// Record ids are derived from the cleaned absolute path, so a file keeps its
// id across scans as long as it does not move.
type FSProvider struct {
	dirs []string
	log  *logger.Logger
}

// NewFSProvider creates a filesystem catalog over the given media directories.
func NewFSProvider(dirs []string, log *logger.Logger) *FSProvider {
	return &FSProvider{dirs: dirs, log: log.WithComponent("catalog")}
}

// Enumerate walks every media directory sequentially and returns one record
// per supported audio file. Unreadable entries are skipped, never fatal; a
// failure to walk a whole directory aborts the enumeration.
func (p *FSProvider) Enumerate(ctx context.Context) ([]domain.FileRecord, error) {
	var records []domain.FileRecord

	for _, dir := range p.dirs {
		err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, walkErr error) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if walkErr != nil {
				p.log.WithFile(path).Debug("skipping unreadable entry", "error", walkErr)
				return nil
			}
			if entry.IsDir() {
				return nil
			}
			if _, ok := constants.SupportedExtensions[strings.ToLower(filepath.Ext(path))]; !ok {
				return nil
			}

			records = append(records, p.recordFor(path))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("enumerate %s: %w", dir, err)
		}
	}

	p.log.Info("enumeration complete", "files", len(records))
	return records, nil
}

func (p *FSProvider) recordFor(path string) domain.FileRecord {
	clean := filepath.Clean(path)
	record := domain.FileRecord{
		ID:         StableID(clean),
		Path:       clean,
		ParentPath: filepath.Dir(clean),
	}

	tags, err := tagging.ReadTags(clean)
	if err != nil {
		p.log.WithFile(clean).Debug("tag read failed, using filename fallback", "error", err)
		record.TrackNo, record.Title = parseTrackPrefix(baseName(clean))
		return record
	}

	record.Title = tags.Title
	record.RawArtist = tags.Artist
	record.Album = tags.Album
	record.TrackNo = tags.TrackNo
	record.DurationMS = tags.DurationMS

	if record.Title == "" {
		record.TrackNo, record.Title = parseTrackPrefix(baseName(clean))
	}
	return record
}

// StableID maps a cleaned path to a stable positive int64 identifier.
func StableID(cleanPath string) int64 {
	h := fnv.New64a()
	h.Write([]byte(filepath.ToSlash(cleanPath)))
	id := int64(h.Sum64() & 0x7fffffffffffffff)
	if id == 0 {
		id = 1
	}
	return id
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// parseTrackPrefix splits names like "03 - Title" into track number and title.
func parseTrackPrefix(name string) (int, string) {
	match := trackPrefixPattern.FindStringSubmatch(name)
	if len(match) != 3 {
		return 0, strings.TrimSpace(name)
	}
	number, err := strconv.Atoi(match[1])
	if err != nil || number <= 0 {
		return 0, strings.TrimSpace(name)
	}
	return number, strings.TrimSpace(match[2])
}
