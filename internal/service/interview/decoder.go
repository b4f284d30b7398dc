package interview

import (
	"encoding/json"
	"strings"
)

const (
	dataPrefix     = "data: "
	doneSentinel   = "[DONE]"
	commentPrefix  = ":"
	carriageReturn = "\r"
)

// chunkPayload mirrors the upstream completion chunk shape; only the content
// delta is consumed.
type chunkPayload struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Decoder incrementally parses the newline-delimited "data: {json}" stream
// protocol. It owns a residual buffer so the network read loop can hand it
// arbitrarily sized chunks; a payload split across reads is re-buffered and
// completed by a later Feed rather than discarded.
type Decoder struct {
	rest string
	done bool
}

// NewDecoder returns a Decoder ready to consume a fresh stream.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Done reports whether the [DONE] terminator has been seen. Once set, all
// further input is ignored.
func (d *Decoder) Done() bool {
	return d.done
}

// Feed consumes the next chunk of the response body and returns the content
// deltas completed by it, in order.
func (d *Decoder) Feed(p []byte) []string {
	if d.done {
		return nil
	}

	buf := d.rest + string(p)
	var deltas []string

	for {
		idx := strings.IndexByte(buf, '\n')
		if idx < 0 {
			break
		}

		line := strings.TrimSuffix(buf[:idx], carriageReturn)
		buf = buf[idx+1:]

		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}

		payload := line[len(dataPrefix):]
		if payload == doneSentinel {
			d.done = true
			d.rest = ""
			return deltas
		}

		var chunk chunkPayload
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			// Likely a payload the upstream flushed mid-chunk: restore the
			// prefix, rejoin with the unprocessed remainder, and let the
			// next read complete it.
			d.rest = dataPrefix + payload + buf
			return deltas
		}

		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			deltas = append(deltas, chunk.Choices[0].Delta.Content)
		}
	}

	d.rest = buf
	return deltas
}
