package delim

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"nless/internal/util/logx"
)

// cachedSpec is the serializable shape of a Spec.
type cachedSpec struct {
	Kind    string `json:"kind"`
	Char    string `json:"char,omitempty"`
	Pattern string `json:"pattern,omitempty"`
}

// cacheDir returns a directory under the OS temp dir to store delimiter caches.
func cacheDir() string {
	return filepath.Join(os.TempDir(), "nless-delim-cache")
}

// cacheKey derives a stable key from the absolute file path.
func cacheKey(filePath string) (string, error) {
	if strings.TrimSpace(filePath) == "" {
		return "", errors.New("empty path")
	}
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return "", err
	}
	h := sha1.Sum([]byte(abs))
	return hex.EncodeToString(h[:]), nil
}

// LoadCached attempts to read a cached delimiter spec for a given file path.
func LoadCached(filePath string) (Spec, bool) {
	key, err := cacheKey(filePath)
	if err != nil {
		return Spec{}, false
	}
	p := filepath.Join(cacheDir(), fmt.Sprintf("delim_%s.json", key))
	f, err := os.Open(p)
	if err != nil {
		return Spec{}, false
	}
	defer f.Close()
	var c cachedSpec
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		return Spec{}, false
	}
	switch c.Kind {
	case "literal":
		return Literal(c.Char), true
	case "whitespace":
		return Whitespace(), true
	case "regex":
		re, err := regexp.Compile(c.Pattern)
		if err != nil {
			return Spec{}, false
		}
		return Regex(re), true
	case "raw":
		return Raw(), true
	}
	return Spec{}, false
}

// SaveCached writes the delimiter spec to cache keyed by file path.
func SaveCached(filePath string, s Spec) error {
	key, err := cacheKey(filePath)
	if err != nil {
		return err
	}
	c := cachedSpec{}
	switch s.Kind {
	case KindLiteral:
		c.Kind, c.Char = "literal", s.Char
	case KindWhitespace:
		c.Kind = "whitespace"
	case KindRegex:
		c.Kind, c.Pattern = "regex", s.Pattern.String()
	default:
		c.Kind = "raw"
	}
	dir := cacheDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	p := filepath.Join(dir, fmt.Sprintf("delim_%s.json", key))
	tmp := p + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		return err
	}
	logx.Infof("delim: cached spec saved to %s", p)
	return nil
}
