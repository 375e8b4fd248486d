package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/krau/konaclassify/service"
)

// Fingerprint identifies a model setup: the contents of its model files,
// its label list and the preprocessing applied to inputs. Empty paths are
// skipped.
func Fingerprint(files []string, labels []string, opts service.PreprocessOptions) (string, error) {
	h := sha256.New()
	for _, path := range files {
		if path == "" {
			continue
		}
		if err := hashFile(h, path); err != nil {
			return "", err
		}
	}
	for _, l := range labels {
		io.WriteString(h, l)
		h.Write([]byte{0})
	}
	var buf [4]byte
	for _, v := range []uint32{uint32(opts.Width), uint32(opts.Height)} {
		binary.LittleEndian.PutUint32(buf[:], v)
		h.Write(buf[:])
	}
	for _, m := range opts.Mean {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(m))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))[:16], nil
}

func hashFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to fingerprint %s: %w", path, err)
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to fingerprint %s: %w", path, err)
	}
	// file boundary
	w.Write([]byte{0xff})
	return nil
}
