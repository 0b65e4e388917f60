// Package tagging wraps the container-format readers used during a library
// sync: cheap tag reads at enumeration time, embedded picture extraction, and
// the fast/slow audio-property probes. All readers treat unreadable or
// malformed files as "no value", never as a fatal error.
package tagging

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"
	"go.senan.xyz/taglib"
)

// ErrUnsupported is returned for container formats no reader understands.
var ErrUnsupported = errors.New("unsupported container format")

// Tags are the container-reported fields read cheaply at enumeration time.
type Tags struct {
	Title      string
	Artist     string
	Album      string
	TrackNo    int
	DurationMS int64
}

// ReadTags reads the basic tag fields from the file at path. Unknown formats
// and read failures yield zero Tags with ErrUnsupported or the read error;
// callers are expected to fall back to filename-derived metadata.
func ReadTags(path string) (Tags, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return readMP3Tags(path)
	case ".flac":
		return readFLACTags(path)
	default:
		return Tags{}, ErrUnsupported
	}
}

func readMP3Tags(path string) (Tags, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return Tags{}, err
	}
	defer tag.Close()

	tags := Tags{
		Title:   strings.TrimSpace(tag.Title()),
		Artist:  strings.TrimSpace(tag.Artist()),
		Album:   strings.TrimSpace(tag.Album()),
		TrackNo: leadingInt(tag.GetTextFrame(tag.CommonID("Track number/Position in set")).Text),
	}

	// ID3 frames carry no timing data; the container probe does.
	if props, propErr := taglib.ReadProperties(path); propErr == nil {
		tags.DurationMS = props.Length.Milliseconds()
	}

	return tags, nil
}

func readFLACTags(path string) (Tags, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return Tags{}, err
	}

	var tags Tags
	for _, meta := range f.Meta {
		if meta.Type != flac.VorbisComment {
			continue
		}
		cmt, parseErr := flacvorbis.ParseFromMetaDataBlock(*meta)
		if parseErr != nil {
			continue
		}
		tags.Title = firstComment(cmt, flacvorbis.FIELD_TITLE)
		tags.Artist = firstComment(cmt, flacvorbis.FIELD_ARTIST)
		tags.Album = firstComment(cmt, flacvorbis.FIELD_ALBUM)
		tags.TrackNo = leadingInt(firstComment(cmt, flacvorbis.FIELD_TRACKNUMBER))
		break
	}

	if info, infoErr := f.GetStreamInfo(); infoErr == nil && info.SampleRate > 0 {
		tags.DurationMS = int64(info.SampleCount) * 1000 / int64(info.SampleRate)
	}

	return tags, nil
}

func firstComment(cmt *flacvorbis.MetaDataBlockVorbisComment, field string) string {
	values, err := cmt.Get(field)
	if err != nil || len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

// leadingInt parses the leading decimal run of a track-number tag such as
// "3" or "3/12".
func leadingInt(s string) int {
	n := 0
	seen := false
	for _, r := range strings.TrimSpace(s) {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		seen = true
	}
	if !seen {
		return 0
	}
	return n
}
