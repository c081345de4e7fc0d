package processor

import (
	"fmt"
	"strings"

	"github.com/golang/snappy"
)

// CompressedSuffix - расширение снимков, сжатых Snappy
const CompressedSuffix = ".sz"

// IsCompressed сообщает, хранится ли снимок по этому пути в сжатом виде
func IsCompressed(path string) bool {
	return strings.HasSuffix(path, CompressedSuffix)
}

// CompressSnapshot сжимает содержимое снимка
func CompressSnapshot(data []byte) []byte {
	return snappy.Encode(nil, data)
}

// DecompressSnapshot распаковывает содержимое снимка
func DecompressSnapshot(data []byte) ([]byte, error) {
	decompressed, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("snappy decode: %w", err)
	}
	return decompressed, nil
}
