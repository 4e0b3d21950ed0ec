package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// digestChunkSize is the read buffer used when hashing file content.
// Hashing memory use is bounded by this regardless of file size.
const digestChunkSize = 8192

// DigestOf computes the hex-encoded MD5 digest of the file at path by
// streaming its content. The digest is a change-detection fingerprint,
// not a security primitive.
func DigestOf(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening file for digest: %w", err)
	}
	defer f.Close()

	h := md5.New()
	buf := make([]byte, digestChunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
