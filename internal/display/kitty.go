package display

import (
	"encoding/base64"
	"fmt"
	"io"
)

// Kitty graphics escape sequences carry at most chunkLen bytes of base64
// payload each; every chunk except the last sets m=1.
const (
	escapeStart = "\x1b_G"
	escapeEnd   = "\x1b\\"
	chunkLen    = 4096
)

// Reading raw bytes in multiples of 3 keeps base64 padding out of every
// chunk but the last, so chunks can be encoded independently.
const rawBlockLen = chunkLen / 4 * 3

// renderInline streams image bytes from r to out as kitty graphics chunks.
// The image is encoded block by block straight off the download, never
// buffered whole. An empty reader writes nothing.
func renderInline(out io.Writer, r io.Reader) error {
	cur, err := readBlock(r)
	if err != nil && err != io.EOF {
		return err
	}
	if len(cur) == 0 {
		return nil
	}

	first := true
	for {
		next, err := readBlock(r)
		if err != nil && err != io.EOF {
			return err
		}

		last := len(next) == 0
		payload := base64.StdEncoding.EncodeToString(cur)
		if _, err := fmt.Fprintf(out, "%s%s;%s%s", escapeStart, chunkParams(first, last), payload, escapeEnd); err != nil {
			return err
		}
		if last {
			return nil
		}
		first = false
		cur = next
	}
}

func readBlock(r io.Reader) ([]byte, error) {
	block := make([]byte, rawBlockLen)
	n, err := io.ReadFull(r, block)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return block[:n], io.EOF
	}
	return block[:n], err
}

// chunkParams picks the control data for one chunk: the first carries the
// transmit action, the rest only continuation markers.
func chunkParams(first, last bool) string {
	switch {
	case first && last:
		return "a=T,f=100,q=2"
	case first:
		return "a=T,f=100,q=2,m=1"
	case last:
		return "m=0"
	default:
		return "m=1"
	}
}
