package domain

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// CombineDigests folds an artifact-path to metadata mapping into one combined
// digest. The paths are sorted before folding so the result is independent of
// map iteration order; NUL separators and an explicit presence marker keep
// the encoding unambiguous, so any difference in key set, value or absence
// changes the result.
//
// A nil metadata value (lookup failed or the file is missing) contributes an
// absence marker that no present metadata can collide with, which is what
// turns metadata I/O failures into conservative misses downstream.
func CombineDigests(mdMap map[string]*FileMetadata) string {
	paths := make([]string, 0, len(mdMap))
	for p := range mdMap {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	h := xxhash.New()
	for _, p := range paths {
		writeMetadataTo(h, p, mdMap[p])
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

const (
	markerAbsent  byte = 0
	markerPresent byte = 1
)

func writeMetadataTo(h *xxhash.Digest, path string, md *FileMetadata) {
	_, _ = h.WriteString(path)
	_, _ = h.Write([]byte{0})

	if md == nil {
		_, _ = h.Write([]byte{markerAbsent, 0})
		return
	}

	_, _ = h.Write([]byte{markerPresent})
	_, _ = h.WriteString(md.Digest)
	_, _ = h.Write([]byte{0})
	_ = binary.Write(h, binary.LittleEndian, md.Size)
	_ = binary.Write(h, binary.LittleEndian, md.ModTimeNanos)
	_, _ = h.Write([]byte{0})
}
