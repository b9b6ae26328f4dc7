// Package smsbackup reads exported SMS archives for batch import.
//
// Two formats are understood, chosen by file extension: the XML written by
// Android "SMS Backup & Restore" and a plain JSON array of messages.
package smsbackup

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrUnsupportedFormat is returned for files whose extension is neither .xml nor .json.
var ErrUnsupportedFormat = errors.New("unsupported backup format")

// Message is one SMS as found in a backup.
type Message struct {
	Sender string
	Body   string
	// Date is when the phone received the message; zero if the backup has none.
	Date time.Time
}

type xmlSMS struct {
	Address string `xml:"address,attr"`
	Body    string `xml:"body,attr"`
	Date    string `xml:"date,attr"`
}

type xmlBackup struct {
	XMLName xml.Name `xml:"smses"`
	SMS     []xmlSMS `xml:"sms"`
}

type jsonMessage struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
	Date    string `json:"date"`
}

// raw is a message before its date is parsed; the date string is kept for
// the duplicate signature.
type raw struct {
	sender, body, date string
}

// Read loads every distinct message in the backup at path, in file order.
func Read(path string) ([]Message, error) {
	var decode func([]byte) ([]raw, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		decode = decodeXML
	case ".json":
		decode = decodeJSON
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	records, err := decode(data)
	if err != nil {
		return nil, err
	}
	return dedupe(records), nil
}

func decodeXML(data []byte) ([]raw, error) {
	var backup xmlBackup
	if err := xml.Unmarshal(data, &backup); err != nil {
		return nil, fmt.Errorf("error parsing XML: %w", err)
	}
	out := make([]raw, 0, len(backup.SMS))
	for _, s := range backup.SMS {
		out = append(out, raw{sender: s.Address, body: s.Body, date: s.Date})
	}
	return out, nil
}

func decodeJSON(data []byte) ([]raw, error) {
	var msgs []jsonMessage
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("error parsing JSON: %w", err)
	}
	out := make([]raw, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, raw{sender: m.Sender, body: m.Message, date: m.Date})
	}
	return out, nil
}

// dedupe drops repeats of the same date, sender and body, keeping the first.
func dedupe(records []raw) []Message {
	seen := make(map[string]bool, len(records))
	out := make([]Message, 0, len(records))
	for _, r := range records {
		signature := r.date + "|" + r.sender + "|" + r.body
		if seen[signature] {
			continue
		}
		seen[signature] = true
		out = append(out, Message{Sender: r.sender, Body: r.body, Date: parseDate(r.date)})
	}
	return out
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseDate accepts epoch milliseconds or one of dateLayouts. Anything else
// yields the zero time.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
