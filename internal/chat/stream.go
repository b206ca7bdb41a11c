package chat

import (
	"bytes"
	"encoding/json"
	"strings"
)

const (
	dataPrefix = "data: "
	doneMarker = "[DONE]"
)

// streamPayload is the JSON shape of one content line of the upstream
// stream. Only the incremental text is of interest.
type streamPayload struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// chunkDecoder reassembles protocol lines from raw byte chunks. Bytes are
// buffered until a full line arrives, so a multi-byte character split across
// two chunks is reassembled intact. One decoder lives exactly as long as one
// draft; state never leaks between turns.
type chunkDecoder struct {
	buf     bytes.Buffer
	done    bool
	skipped int
}

// Feed appends raw bytes and returns the content deltas completed by them,
// in arrival order. Malformed lines are skipped, not fatal.
func (d *chunkDecoder) Feed(p []byte) []string {
	d.buf.Write(p)

	var deltas []string
	for {
		raw := d.buf.Bytes()
		i := bytes.IndexByte(raw, '\n')
		if i < 0 {
			break
		}
		line := string(raw[:i])
		d.buf.Next(i + 1)
		if text, ok := d.decodeLine(line); ok {
			deltas = append(deltas, text)
		}
	}
	return deltas
}

// Flush decodes a trailing unterminated line, if any. Called once at
// stream end.
func (d *chunkDecoder) Flush() []string {
	if d.buf.Len() == 0 {
		return nil
	}
	line := d.buf.String()
	d.buf.Reset()
	if text, ok := d.decodeLine(line); ok {
		return []string{text}
	}
	return nil
}

func (d *chunkDecoder) decodeLine(line string) (string, bool) {
	line = strings.TrimRight(line, "\r")
	if !strings.HasPrefix(line, dataPrefix) {
		// Blank keep-alives, comments, event names: not content lines.
		return "", false
	}
	payload := strings.TrimPrefix(line, dataPrefix)
	if strings.TrimSpace(payload) == doneMarker {
		d.done = true
		return "", false
	}

	var chunk streamPayload
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		d.skipped++
		return "", false
	}
	if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
		return "", false
	}
	return chunk.Choices[0].Delta.Content, true
}

// Done reports whether the explicit terminal line was seen.
func (d *chunkDecoder) Done() bool {
	return d.done
}

// Skipped returns how many malformed data lines were dropped.
func (d *chunkDecoder) Skipped() int {
	return d.skipped
}
