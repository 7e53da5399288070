package driver

import (
	"crypto/sha256"
	"fmt"
	"slices"
	"strings"

	"awaitlint/internal/lint"
	"awaitlint/internal/version"
)

// Digest keys the disk cache.
type Digest [32]byte

// combineDigest: H(content || fingerprint).
func combineDigest(content [32]byte, fingerprint string) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	_, _ = h.Write([]byte(fingerprint))
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// fingerprint describes every setting that changes what a file lints to.
// Rule levels are sorted so map order never leaks into the key.
func fingerprint(opts Options) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "schema=%d;version=%s;max=%d;size=%d", diskCacheSchemaVersion, version.Version, opts.MaxDiagnostics, opts.Parse.MaxFileSize)
	names := make([]string, 0, len(opts.Levels))
	for name := range opts.Levels {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(&sb, ";%s=%s", name, opts.Levels[name])
	}
	for _, rule := range lint.Rules() {
		sb.WriteString(";rule=" + rule.Name())
	}
	return sb.String()
}
