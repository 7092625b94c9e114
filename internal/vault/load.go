package vault

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrSourceNotFound is returned when no parseable conversation list can be
// located at the given input path. Callers match it with errors.Is.
var ErrSourceNotFound = errors.New("no parseable conversation data found")

const conversationsFile = "conversations.json"

// Load reads a ChatGPT data export and returns its conversation list.
// The path may be an export ZIP, an extracted export folder, or a direct
// path to conversations.json.
func Load(path string) ([]Conversation, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrSourceNotFound)
	}

	if info.IsDir() {
		target, err := findInFolder(path)
		if err != nil {
			return nil, err
		}
		return loadFile(target)
	}

	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return loadZip(path)
	}

	if filepath.Base(path) == conversationsFile {
		return loadFile(path)
	}

	return nil, fmt.Errorf("input must be an export ZIP, folder, or %s: %w", conversationsFile, ErrSourceNotFound)
}

// findInFolder locates conversations.json inside an extracted export.
// The top level is checked first; nested layouts fall back to a walk.
func findInFolder(folder string) (string, error) {
	direct := filepath.Join(folder, conversationsFile)
	if info, err := os.Stat(direct); err == nil && !info.IsDir() {
		return direct, nil
	}

	var found string
	walkErr := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries, keep walking
		}
		if !d.IsDir() && d.Name() == conversationsFile {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if walkErr == nil && found != "" {
		return found, nil
	}
	return "", fmt.Errorf("could not find %s in %s: %w", conversationsFile, folder, ErrSourceNotFound)
}

func loadFile(path string) ([]Conversation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return decodeConversations(f)
}

func loadZip(path string) ([]Conversation, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip %s: %w", path, err)
	}
	defer zr.Close()

	// conversations.json can sit anywhere inside the archive; prefer the
	// entry closest to the root.
	var candidates []*zip.File
	for _, zf := range zr.File {
		if strings.HasSuffix(zf.Name, conversationsFile) {
			candidates = append(candidates, zf)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("could not find %s inside %s: %w", conversationsFile, path, ErrSourceNotFound)
	}
	sort.Slice(candidates, func(i, j int) bool {
		di := strings.Count(candidates[i].Name, "/")
		dj := strings.Count(candidates[j].Name, "/")
		if di != dj {
			return di < dj
		}
		return len(candidates[i].Name) < len(candidates[j].Name)
	})

	rc, err := candidates[0].Open()
	if err != nil {
		return nil, fmt.Errorf("open %s in zip: %w", candidates[0].Name, err)
	}
	defer rc.Close()
	return decodeConversations(rc)
}

// decodeConversations parses the top-level conversation array. Individual
// records with an unexpected shape are skipped; a top level that is not an
// array counts as source-not-found.
func decodeConversations(r io.Reader) ([]Conversation, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%s format not recognized (expected a list): %w", conversationsFile, ErrSourceNotFound)
	}

	conversations := make([]Conversation, 0, len(raw))
	for _, rec := range raw {
		var conv Conversation
		if err := json.Unmarshal(rec, &conv); err != nil {
			continue
		}
		conversations = append(conversations, conv)
	}
	return conversations, nil
}
