package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// Transcript is the conversation so far. On the wire it may be a string, an
// array of strings, or an array of {"sender", "text"} objects; it is stored as
// one line per utterance.
type Transcript string

type utterance struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// UnmarshalJSON accepts every transcript shape the frontends send.
func (t *Transcript) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Transcript(strings.TrimSpace(s))
		return nil

	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}

		lines := make([]string, 0, len(items))
		for _, item := range items {
			line, err := utteranceLine(item)
			if err != nil {
				return err
			}
			if line != "" {
				lines = append(lines, line)
			}
		}
		*t = Transcript(strings.Join(lines, "\n"))
		return nil

	default:
		return errors.New("transcript must be a string or an array")
	}
}

func utteranceLine(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}

	var u utterance
	if err := json.Unmarshal(raw, &u); err != nil {
		return "", errors.New("transcript entries must be strings or {sender, text} objects")
	}

	text := strings.TrimSpace(u.Text)
	sender := strings.TrimSpace(u.Sender)
	switch {
	case text == "":
		return "", nil
	case sender == "":
		return text, nil
	default:
		return sender + ": " + text, nil
	}
}
