package tagging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacpicture"
	flac "github.com/go-flac/go-flac"
)

// ErrNoPicture is returned when a file carries no embedded cover art.
var ErrNoPicture = errors.New("no embedded picture")

// Picture is an embedded cover image pulled out of an audio container.
type Picture struct {
	Data     []byte
	MimeType string
}

// PictureExtractor extracts embedded cover art from audio files.
type PictureExtractor interface {
	ExtractPicture(path string) (Picture, error)
}

// EmbeddedPictureExtractor reads cover art directly from the container
// metadata (ID3v2 APIC frames, FLAC PICTURE blocks). When the parser rejects
// path-based access it retries through an already-open file descriptor.
type EmbeddedPictureExtractor struct{}

func (EmbeddedPictureExtractor) ExtractPicture(path string) (Picture, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return extractMP3Picture(path)
	case ".flac":
		return extractFLACPicture(path)
	default:
		return Picture{}, ErrNoPicture
	}
}

func extractMP3Picture(path string) (Picture, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		// Retry via descriptor for sources that refuse path opens.
		f, openErr := os.Open(path)
		if openErr != nil {
			return Picture{}, openErr
		}
		defer f.Close()
		tag, err = id3v2.ParseReader(f, id3v2.Options{Parse: true})
		if err != nil {
			return Picture{}, err
		}
		return pictureFromTag(tag)
	}
	defer tag.Close()
	return pictureFromTag(tag)
}

func pictureFromTag(tag *id3v2.Tag) (Picture, error) {
	frames := tag.GetFrames(tag.CommonID("Attached picture"))
	for _, frame := range frames {
		pic, ok := frame.(id3v2.PictureFrame)
		if !ok || len(pic.Picture) == 0 {
			continue
		}
		return Picture{Data: pic.Picture, MimeType: pic.MimeType}, nil
	}
	return Picture{}, ErrNoPicture
}

func extractFLACPicture(path string) (Picture, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		fd, openErr := os.Open(path)
		if openErr != nil {
			return Picture{}, openErr
		}
		defer fd.Close()
		f, err = flac.ParseBytes(fd)
		if err != nil {
			return Picture{}, err
		}
	}

	for _, meta := range f.Meta {
		if meta.Type != flac.Picture {
			continue
		}
		pic, parseErr := flacpicture.ParseFromMetaDataBlock(*meta)
		if parseErr != nil || len(pic.ImageData) == 0 {
			continue
		}
		return Picture{Data: pic.ImageData, MimeType: pic.MIME}, nil
	}
	return Picture{}, ErrNoPicture
}
