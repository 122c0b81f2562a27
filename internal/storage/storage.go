package storage

import "time"

// TimestampLayout mirrors the default string form of a local datetime with
// microseconds, e.g. "2025-03-01 14:05:09.123456".
const TimestampLayout = "2006-01-02 15:04:05.000000"

const chatLogHeader = "timestamp,question,answer"

// ChatRecord is one persisted question/answer exchange. Question and Answer
// are stored sanitized: no commas and no line breaks.
type ChatRecord struct {
	Timestamp string
	Question  string
	Answer    string
}

// Time parses the record timestamp. Records written by other tools may use a
// different layout, in which case ok is false.
func (r ChatRecord) Time() (time.Time, bool) {
	t, err := time.ParseInLocation(TimestampLayout, r.Timestamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Recorder abstracts persistence of chat records.
// Records should return entries in the order they were appended.
// Implementations must be safe for concurrent use within one process.
type Recorder interface {
	Append(question, answer string) error
	Records() ([]ChatRecord, error)
}
