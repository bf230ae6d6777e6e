package config

import (
	"crypto/sha256"
	"encoding/json"
)

// fingerprint is the digest of cfg's canonical JSON encoding. Two files that
// decode to the same settings share a fingerprint, whatever their format,
// key order or comments. The zero value means "unknown".
type fingerprint [sha256.Size]byte

func (f fingerprint) short() string {
	const hex = "0123456789abcdef"
	b := make([]byte, 12)
	for i := range 6 {
		b[2*i], b[2*i+1] = hex[f[i]>>4], hex[f[i]&0x0f]
	}
	return string(b)
}

func fingerprintOf(cfg *Config) fingerprint {
	if cfg == nil {
		return fingerprint{}
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return fingerprint{}
	}
	return sha256.Sum256(b)
}
