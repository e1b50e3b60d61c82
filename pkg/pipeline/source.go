/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: source.go
Description: Filesystem-backed message sources for StreamSchema. A directory source
treats subdirectories as topics with one message per file; a file source treats one
file as a single topic with one message per line.
*/

package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DirSource reads message samples from a directory tree. Each subdirectory is
// a topic and each regular file inside it one raw message. A directory without
// subdirectories is itself a single topic named after its base name.
type DirSource struct {
	root string
}

// NewDirSource creates a directory-backed message source
func NewDirSource(root string) *DirSource {
	return &DirSource{root: root}
}

// Topics lists subdirectory names, or the root's base name when the root
// holds files directly.
func (s *DirSource) Topics(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory: %w", err)
	}

	var topics []string
	for _, entry := range entries {
		if entry.IsDir() {
			topics = append(topics, entry.Name())
		}
	}
	if len(topics) == 0 {
		return []string{filepath.Base(s.root)}, nil
	}
	sort.Strings(topics)
	return topics, nil
}

// Sample reads up to max files from the topic directory, sorted by name so
// repeated runs see the same messages.
func (s *DirSource) Sample(ctx context.Context, topic string, max int) ([][]byte, error) {
	dir := filepath.Join(s.root, topic)
	if topic == filepath.Base(s.root) {
		if _, err := os.Stat(dir); err != nil {
			dir = s.root
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read topic directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	messages := make([][]byte, 0, len(names))
	for _, name := range names {
		if max > 0 && len(messages) >= max {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read message file %s: %w", name, err)
		}
		messages = append(messages, data)
	}
	return messages, nil
}

// FileSource reads one file as a single topic, one message per line. Blank
// lines are skipped. The topic name is the file's base name without extension.
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed message source
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Topics returns the single topic derived from the file name
func (s *FileSource) Topics(ctx context.Context) ([]string, error) {
	base := filepath.Base(s.path)
	return []string{strings.TrimSuffix(base, filepath.Ext(base))}, nil
}

// Sample reads up to max non-blank lines as messages
func (s *FileSource) Sample(ctx context.Context, topic string, max int) ([][]byte, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open message file: %w", err)
	}
	defer file.Close()

	var messages [][]byte
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if max > 0 && len(messages) >= max {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		messages = append(messages, []byte(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan message file: %w", err)
	}
	return messages, nil
}
