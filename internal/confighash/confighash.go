// Package confighash computes content-addressed fingerprints for builder
// inputs: an ordered stream of items (raw bytes, text, or file paths) is
// fed through two seeded xxhash passes to produce a 128-bit digest. The
// digest is the basis the decider uses to tell whether a builder's
// inputs changed since its last recorded decision.
package confighash

import (
	"bufio"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const (
	seedLo uint64 = 0x646f6373 // "docs"
	seedHi uint64 = 0x68617368 // "hash"

	readChunkSize = 64 * 1024
)

// Digest is a 128-bit content fingerprint.
type Digest struct {
	Lo uint64
	Hi uint64
}

// String renders the digest as 32 lowercase hex characters.
func (d Digest) String() string {
	var buf [16]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(d.Lo >> (8 * (7 - i)))
		buf[8+i] = byte(d.Hi >> (8 * (7 - i)))
	}
	return hex.EncodeToString(buf[:])
}

// IsZero reports whether the digest has its zero value.
func (d Digest) IsZero() bool { return d.Lo == 0 && d.Hi == 0 }

// Item is a single term fed into Hash. Order matters: Hash(a, b) differs
// from Hash(b, a).
type Item interface {
	writeTo(w io.Writer) error
}

// BytesItem hashes a raw byte slice.
type BytesItem []byte

func (b BytesItem) writeTo(w io.Writer) error {
	_, err := w.Write(b)
	return err
}

// TextItem hashes a UTF-8 string, e.g. a builder's class name or a CLI
// argument, so it contributes to the fingerprint without needing to be
// wrapped in BytesItem at every call site.
type TextItem string

func (t TextItem) writeTo(w io.Writer) error {
	_, err := io.WriteString(w, string(t))
	return err
}

// PathItem hashes a file's contents, streamed in chunks rather than read
// into memory all at once. Known-variable byte ranges in PDF and SVG
// files (creation timestamps, producer strings) are stripped first so
// that two builds which differ only in those fields still fingerprint
// identically.
type PathItem struct {
	Path string
}

func (p PathItem) writeTo(w io.Writer) error {
	f, err := os.Open(p.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(p.Path)) {
	case ".pdf":
		data, err := io.ReadAll(f)
		if err != nil {
			return err
		}
		_, err = w.Write(stripPDFVariance(data))
		return err
	case ".svg":
		data, err := io.ReadAll(f)
		if err != nil {
			return err
		}
		_, err = w.Write(stripSVGVariance(data))
		return err
	default:
		buf := make([]byte, readChunkSize)
		r := bufio.NewReaderSize(f, readChunkSize)
		for {
			n, readErr := r.Read(buf)
			if n > 0 {
				if _, err := w.Write(buf[:n]); err != nil {
					return err
				}
			}
			if readErr == io.EOF {
				return nil
			}
			if readErr != nil {
				return readErr
			}
		}
	}
}

// multiDigest fans a single write out to both seeded hash states.
type multiDigest struct {
	lo *xxhash.Digest
	hi *xxhash.Digest
}

func (m multiDigest) Write(p []byte) (int, error) {
	m.lo.Write(p) //nolint:errcheck // xxhash.Digest.Write never errors
	m.hi.Write(p) //nolint:errcheck
	return len(p), nil
}

// Hash combines items, in order, into a single 128-bit digest.
func Hash(items ...Item) (Digest, error) {
	lo := xxhash.NewWithSeed(seedLo)
	hi := xxhash.NewWithSeed(seedHi)
	m := multiDigest{lo: lo, hi: hi}

	for i, item := range items {
		// A single 0x1f separator between terms keeps Hash([]Item{"ab","c"})
		// from colliding with Hash([]Item{"a","bc"}).
		if i > 0 {
			if _, err := m.Write([]byte{0x1f}); err != nil {
				return Digest{}, err
			}
		}
		if err := item.writeTo(m); err != nil {
			return Digest{}, err
		}
	}

	return Digest{Lo: lo.Sum64(), Hi: hi.Sum64()}, nil
}
