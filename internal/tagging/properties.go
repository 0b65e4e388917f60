package tagging

import (
	"path/filepath"
	"strings"

	flac "github.com/go-flac/go-flac"
	"go.senan.xyz/taglib"

	"github.com/avilaroman/cadenza/internal/constants"
	"github.com/avilaroman/cadenza/internal/domain"
)

// PropertiesReader probes a file for its audio properties. Readers return
// whatever subset of fields they can determine; missing fields stay nil.
type PropertiesReader interface {
	ReadProperties(path string) (domain.AudioMeta, error)
}

// FastReader derives properties from cheap container metadata only: the MIME
// type from the extension and, for FLAC, the sample rate from StreamInfo. It
// never decodes audio frames.
type FastReader struct{}

func (FastReader) ReadProperties(path string) (domain.AudioMeta, error) {
	var meta domain.AudioMeta

	ext := strings.ToLower(filepath.Ext(path))
	if mime, ok := constants.SupportedExtensions[ext]; ok {
		meta.MimeType = &mime
	}

	if ext == ".flac" {
		f, err := flac.ParseFile(path)
		if err != nil {
			return meta, err
		}
		if info, infoErr := f.GetStreamInfo(); infoErr == nil && info.SampleRate > 0 {
			rate := int64(info.SampleRate)
			meta.SampleRate = &rate
		}
	}

	return meta, nil
}

// DeepProber opens the container with taglib and fills bitrate, sample rate
// and MIME type. It is the slow fallback used only on deep scans.
type DeepProber struct{}

func (DeepProber) ReadProperties(path string) (domain.AudioMeta, error) {
	props, err := taglib.ReadProperties(path)
	if err != nil {
		return domain.AudioMeta{}, err
	}

	var meta domain.AudioMeta
	if mime, ok := constants.SupportedExtensions[strings.ToLower(filepath.Ext(path))]; ok {
		meta.MimeType = &mime
	}
	if props.Bitrate > 0 {
		// taglib reports kbit/s
		bitrate := int64(props.Bitrate) * 1000
		meta.Bitrate = &bitrate
	}
	if props.SampleRate > 0 {
		rate := int64(props.SampleRate)
		meta.SampleRate = &rate
	}

	return meta, nil
}
