package object

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"
)

// ErrInvalidName rejects file names that are empty or try to climb out of the owner directory.
var ErrInvalidName = errors.New("invalid file name")

// NewKey builds "<owner dir>/<random>_<file name>".
func NewKey(owner, fileName string) (string, error) {
	name, err := cleanName(fileName)
	if err != nil {
		return "", err
	}
	return path.Join(OwnerDir(owner), randomID()+"_"+name), nil
}

// OwnerDir maps an owner id (a user id or external identity) to a stable hex directory name,
// so identities with ':' or '/' never reach a path.
func OwnerDir(owner string) string {
	sum := sha256.Sum256([]byte(owner))
	return hex.EncodeToString(sum[:])
}

func cleanName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidName
	}
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(strings.TrimSpace(name))
	if name == "" {
		return "", ErrInvalidName
	}
	return name, nil
}

// Sniff reads up to 512 bytes to detect the content type and returns a reader
// that replays them ahead of the rest of r.
func Sniff(r io.Reader) (string, io.Reader, error) {
	var head [512]byte
	n, err := io.ReadFull(r, head[:])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, fmt.Errorf("read sniff: %w", err)
	}
	buf := make([]byte, n)
	copy(buf, head[:n])
	return http.DetectContentType(buf), io.MultiReader(bytes.NewReader(buf), r), nil
}

func randomID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
