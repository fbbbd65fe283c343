package ingest

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"masta/model"
)

// Sidecar template consumed by external media-library software. Name,
// biography and genre values are XML-escaped; the upstream catalog is
// free-text and unescaped content would produce invalid XML.
const artistNFOTemplate = `<?xml version="1.0" encoding="UTF-8" standalone="yes" ?>
<artist>
    <name>%[1]s</name>
    <sortname>%[1]s</sortname>
    <type>Person</type>
    <gender></gender>
    <disambiguation></disambiguation>%[2]s
    <style></style>
    <mood></mood>
    <yearsactive></yearsactive>
    <born></born>
    <formed></formed>
    <biography>%[3]s</biography>
    <died></died>
    <disbanded></disbanded>
</artist>
`

// NFOWriter writes per-artist NFO sidecar files into the media tree.
type NFOWriter struct {
	mediaRoot string
}

// NewNFOWriter creates an NFOWriter rooted at mediaRoot.
func NewNFOWriter(mediaRoot string) *NFOWriter {
	return &NFOWriter{mediaRoot: mediaRoot}
}

// RenderArtistNFO renders the sidecar XML for an artist. Genres must be
// loaded on the artist.
func RenderArtistNFO(artist *model.Artist) string {
	var genres strings.Builder
	for _, genre := range artist.Genres {
		genres.WriteString("\n    <genre>")
		genres.WriteString(escapeXML(genre.Name))
		genres.WriteString("</genre>")
	}
	return fmt.Sprintf(artistNFOTemplate, escapeXML(artist.Name), genres.String(), escapeXML(artist.Bio))
}

// Write renders and writes the artist's sidecar file, creating the
// artist directory if needed and overwriting any existing sidecar.
func (w *NFOWriter) Write(artist *model.Artist) error {
	dir := filepath.Join(w.mediaRoot, filepath.FromSlash(artist.DirPath()))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create artist directory %s: %w", dir, err)
	}

	dest := filepath.Join(w.mediaRoot, filepath.FromSlash(artist.NFOPath()))
	if err := os.WriteFile(dest, []byte(RenderArtistNFO(artist)), 0644); err != nil {
		return fmt.Errorf("failed to write nfo for artist %d: %w", artist.ID, err)
	}
	return nil
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}
