package rag

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// fingerprintBlockSize bounds memory use while hashing arbitrarily large
// uploads.
const fingerprintBlockSize = 4096

// FileMD5 returns the hex MD5 digest of the file's content, read in
// fixed-size blocks. The digest is the dedup key for uploads.
func FileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for hashing: %w", err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.CopyBuffer(h, f, make([]byte, fingerprintBlockSize)); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
