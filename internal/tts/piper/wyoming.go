package piper

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type wyomingEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// writeEvent sends a Wyoming event: header line, JSON line, then payload.
func writeEvent(w io.Writer, evt wyomingEvent, payload []byte) error {
	jsonBytes, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(jsonBytes) + len(payload) + 24)
	fmt.Fprintf(&buf, "%d %d\n", len(jsonBytes), len(payload))
	buf.Write(jsonBytes)
	buf.WriteByte('\n')
	buf.Write(payload)

	_, err = w.Write(buf.Bytes())
	return err
}

// readEvent reads one Wyoming event and its payload.
func readEvent(r *bufio.Reader) (*wyomingEvent, []byte, error) {
	header, err := r.ReadString('\n')
	if err != nil {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}

	jsonLen, payloadLen, err := parseHeader(strings.TrimSuffix(header, "\n"))
	if err != nil {
		return nil, nil, err
	}

	jsonBuf := make([]byte, jsonLen+1) // trailing \n
	if _, err := io.ReadFull(r, jsonBuf); err != nil {
		return nil, nil, fmt.Errorf("reading json: %w", err)
	}

	var evt wyomingEvent
	if err := json.Unmarshal(jsonBuf[:jsonLen], &evt); err != nil {
		return nil, nil, fmt.Errorf("unmarshalling event: %w", err)
	}

	var payload []byte
	if payloadLen > 0 {
		payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, nil, fmt.Errorf("reading payload: %w", err)
		}
	}
	return &evt, payload, nil
}

func parseHeader(line string) (jsonLen, payloadLen int, err error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("invalid wyoming header: %q", line)
	}
	if jsonLen, err = strconv.Atoi(fields[0]); err != nil || jsonLen < 0 {
		return 0, 0, fmt.Errorf("invalid json length in header %q", line)
	}
	if payloadLen, err = strconv.Atoi(fields[1]); err != nil || payloadLen < 0 {
		return 0, 0, fmt.Errorf("invalid payload length in header %q", line)
	}
	return jsonLen, payloadLen, nil
}

// pcmToWAV wraps raw little-endian PCM in a 44-byte WAV header.
func pcmToWAV(pcm []byte, sampleRate, channels, bytesPerSample int) []byte {
	header := struct {
		Riff          [4]byte
		FileLen       uint32
		Wave          [4]byte
		Fmt           [4]byte
		FmtLen        uint32
		Format        uint16
		Channels      uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
		Data          [4]byte
		DataLen       uint32
	}{
		Riff:          [4]byte{'R', 'I', 'F', 'F'},
		FileLen:       uint32(36 + len(pcm)),
		Wave:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		FmtLen:        16,
		Format:        1, // PCM
		Channels:      uint16(channels),
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * channels * bytesPerSample),
		BlockAlign:    uint16(channels * bytesPerSample),
		BitsPerSample: uint16(bytesPerSample * 8),
		Data:          [4]byte{'d', 'a', 't', 'a'},
		DataLen:       uint32(len(pcm)),
	}

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(pcm)))
	_ = binary.Write(buf, binary.LittleEndian, header)
	buf.Write(pcm)
	return buf.Bytes()
}
