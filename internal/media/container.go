package media

import (
	"bytes"
	"fmt"
	"io"
)

// SniffContainer checks that r starts with an MPEG-4 "ftyp" box and rewinds
// it to the start. It returns the major brand, e.g. "isom" or "mp42".
func SniffContainer(r io.ReadSeeker) (string, error) {
	header := make([]byte, 12)
	if _, err := io.ReadFull(r, header); err != nil {
		return "", fmt.Errorf("reading container header: %w", err)
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewinding stream: %w", err)
	}

	if !bytes.Equal(header[4:8], []byte("ftyp")) {
		return "", fmt.Errorf("not an MPEG-4 container (box type %q)", header[4:8])
	}

	return string(header[8:12]), nil
}
