// Package faq holds the offline question/answer store used when the remote
// model cannot be reached.
package faq

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Entry maps a question fragment to its canned answer.
type Entry struct {
	Fragment string
	Answer   string
}

// Store is immutable after Load and safe for concurrent readers.
type Store struct {
	entries []Entry
	lowered []string
}

// Load reads a fragment→answer document. JSON is the default format; .yaml
// and .yml files are parsed as YAML, .toml files as TOML. The returned store is never nil: on any
// read or parse failure it is empty and the error says why.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Store{}, fmt.Errorf("read faq: %w", err)
	}
	var entries []Entry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		entries, err = parseYAML(data)
	case ".toml":
		entries, err = parseTOML(data)
	default:
		entries, err = parseJSON(data)
	}
	if err != nil {
		return &Store{}, fmt.Errorf("parse faq %s: %w", path, err)
	}
	return New(entries), nil
}

// New builds a store from entries in lookup order. Later duplicates replace
// the answer of the first occurrence without moving it.
func New(entries []Entry) *Store {
	s := &Store{}
	index := make(map[string]int, len(entries))
	for _, e := range entries {
		if i, ok := index[e.Fragment]; ok {
			s.entries[i].Answer = e.Answer
			continue
		}
		index[e.Fragment] = len(s.entries)
		s.entries = append(s.entries, e)
		s.lowered = append(s.lowered, strings.ToLower(e.Fragment))
	}
	return s
}

// Lookup returns the answer of the first entry whose fragment occurs in
// prompt, ignoring case.
func (s *Store) Lookup(prompt string) (string, bool) {
	if s == nil {
		return "", false
	}
	p := strings.ToLower(prompt)
	for i, frag := range s.lowered {
		if frag == "" {
			continue
		}
		if strings.Contains(p, frag) {
			return s.entries[i].Answer, true
		}
	}
	return "", false
}

func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries returns a copy of the entries in lookup order.
func (s *Store) Entries() []Entry {
	if s == nil {
		return nil
	}
	return append([]Entry(nil), s.entries...)
}

var errNotObject = errors.New("faq document must be an object of string values")

// parseJSON walks the token stream so the document order survives; a plain
// map would lose it.
func parseJSON(data []byte) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errNotObject
	}
	var entries []Entry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errNotObject
		}
		var answer string
		if err := dec.Decode(&answer); err != nil {
			return nil, fmt.Errorf("value of %q: %w", key, err)
		}
		entries = append(entries, Entry{Fragment: key, Answer: answer})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after faq object")
	}
	return entries, nil
}

func parseYAML(data []byte) ([]Entry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errNotObject
	}
	m := doc.Content[0]
	entries := make([]Entry, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := m.Content[i], m.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return nil, errNotObject
		}
		entries = append(entries, Entry{Fragment: k.Value, Answer: v.Value})
	}
	return entries, nil
}

// parseTOML accepts top-level string keys only; MetaData.Keys keeps them in
// document order.
func parseTOML(data []byte) ([]Entry, error) {
	var m map[string]string
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(m))
	for _, k := range md.Keys() {
		if len(k) != 1 {
			return nil, errNotObject
		}
		entries = append(entries, Entry{Fragment: k[0], Answer: m[k[0]]})
	}
	return entries, nil
}
