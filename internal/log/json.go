package log

import (
	"encoding/json"
	"io"
	"time"

	"github.com/alecthomas/errors"
)

var _ Sink = (*jsonSink)(nil)

type jsonEntry struct {
	Entry
	Time time.Time `json:"time"`
}

func newJSONSink(w io.Writer) *jsonSink {
	return &jsonSink{
		enc: json.NewEncoder(w),
	}
}

type jsonSink struct {
	enc *json.Encoder
}

func (j *jsonSink) Log(entry Entry) error {
	jentry := jsonEntry{
		Entry: entry,
		Time:  entry.Time.UTC(),
	}
	return errors.WithStack(j.enc.Encode(jentry))
}
