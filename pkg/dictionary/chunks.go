package dictionary

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// ChunkInfo contains metadata about a chunk file
type ChunkInfo struct {
	ID        int
	Filename  string
	WordCount int
}

// LoadStats summarizes a chunk directory load.
type LoadStats struct {
	AvailableChunks int
	LoadedChunks    int
	LoadedWords     int
	FailedChunks    []int
}

// ListChunks scans dir for dict_NNNN.bin files, sorted by ID.
func ListChunks(dir string) ([]ChunkInfo, error) {
	files, err := filepath.Glob(filepath.Join(dir, "dict_*.bin"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan for chunk files: %w", err)
	}

	var chunks []ChunkInfo
	for _, file := range files {
		// dict_0001.bin -> 1
		idStr := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(file), "dict_"), ".bin")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			continue
		}
		wordCount, err := chunkWordCount(file)
		if err != nil {
			log.Warnf("Failed to get word count for chunk %s: %v", file, err)
		}
		chunks = append(chunks, ChunkInfo{ID: id, Filename: file, WordCount: wordCount})
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].ID < chunks[j].ID
	})
	return chunks, nil
}

// LoadDir adds chunks from dir in ID order until maxWords words were read (0 = all).
// A corrupt chunk is logged and skipped.
func (d *Dictionary) LoadDir(dir string, maxWords int) (LoadStats, error) {
	chunks, err := ListChunks(dir)
	if err != nil {
		return LoadStats{}, err
	}
	if len(chunks) == 0 {
		return LoadStats{}, fmt.Errorf("no chunk files found in %s", dir)
	}

	stats := LoadStats{AvailableChunks: len(chunks)}
	read := 0
	for _, chunk := range chunks {
		if maxWords > 0 && read >= maxWords {
			break
		}
		added, err := readChunk(chunk.Filename, func(word string, score int) bool {
			return d.Add(word, score)
		})
		if err != nil {
			log.Warnf("Failed to load chunk %d: %v", chunk.ID, err)
			stats.FailedChunks = append(stats.FailedChunks, chunk.ID)
			continue
		}
		log.Debugf("Chunk %d loaded: %d words", chunk.ID, added)
		read += chunk.WordCount
		stats.LoadedChunks++
		stats.LoadedWords += added
	}
	return stats, nil
}

// WriteChunk writes words in the chunk format. A word's rank is its position plus one.
//
//	int32 count | { uint16 len | bytes | uint16 rank } * count
func WriteChunk(path string, words []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chunk file %s: %w", path, err)
	}
	w := bufio.NewWriter(f)

	write := func(v any) {
		if err == nil {
			err = binary.Write(w, binary.LittleEndian, v)
		}
	}
	write(int32(len(words)))
	for i, word := range words {
		write(uint16(len(word)))
		if err == nil {
			_, err = w.WriteString(word)
		}
		rank := i + 1
		if rank > 65535 {
			rank = 65535
		}
		write(uint16(rank))
	}
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write chunk file %s: %w", path, err)
	}
	return nil
}

// chunkWordCount reads the word count from a chunk file's header
func chunkWordCount(filename string) (int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	var wordCount int32
	if err := binary.Read(file, binary.LittleEndian, &wordCount); err != nil {
		return 0, err
	}
	return int(wordCount), nil
}

// readChunk streams the entries of one chunk file into add and returns how many were new.
func readChunk(filename string, add func(word string, score int) bool) (int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to open chunk file %s: %w", filename, err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)

	var totalEntries int32
	if err := binary.Read(reader, binary.LittleEndian, &totalEntries); err != nil {
		return 0, fmt.Errorf("failed to read chunk header: %w", err)
	}
	if totalEntries < 0 {
		return 0, fmt.Errorf("invalid word count in %s: %d", filename, totalEntries)
	}

	added := 0
	for count := 0; count < int(totalEntries); count++ {
		var wordLen uint16
		if err := binary.Read(reader, binary.LittleEndian, &wordLen); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return added, fmt.Errorf("failed to read word length: %w", err)
		}

		wordBytes := make([]byte, wordLen)
		if _, err := io.ReadFull(reader, wordBytes); err != nil {
			return added, fmt.Errorf("failed to read word: %w", err)
		}

		var rank uint16
		if err := binary.Read(reader, binary.LittleEndian, &rank); err != nil {
			return added, fmt.Errorf("failed to read rank: %w", err)
		}

		if add(string(wordBytes), rankScore(int(rank))) {
			added++
		}
	}
	return added, nil
}
