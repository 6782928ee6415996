package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// InputDescriptor identifies the image to analyze, either by reference (URL)
// or by inline bytes. Exactly one of the two forms must be set; the API layer
// rejects ambiguous descriptors before any store interaction. Hash optionally
// carries a precomputed content digest.
type InputDescriptor struct {
	URL  string `json:"url,omitempty"`
	Data []byte `json:"data,omitempty"`
	Hash string `json:"hash,omitempty"`
}

func (d InputDescriptor) ByReference() bool {
	return d.URL != ""
}

func (d InputDescriptor) ByInlineBytes() bool {
	return len(d.Data) > 0
}

// ContentHash returns the digest used to content-address this input. A
// caller-supplied hash wins; inline bytes are digested directly; a reference
// without a hash is addressed by its URL, since the content is unknown until
// a worker fetches it.
func (d InputDescriptor) ContentHash() string {
	if d.Hash != "" {
		return d.Hash
	}
	if len(d.Data) > 0 {
		sum := sha256.Sum256(d.Data)
		return hex.EncodeToString(sum[:])
	}
	sum := sha256.Sum256([]byte(d.URL))
	return hex.EncodeToString(sum[:])
}
