package hwpv5

import (
	"crypto/aes"
	"encoding/binary"
	"errors"
	"fmt"
)

const distributeDataSize = 256

// decryptViewText strips the leading DISTRIBUTE_DOC_DATA record of a
// distribution document section and AES-128 ECB decrypts the remainder.
// A trailing partial block is dropped.
func decryptViewText(raw []byte) ([]byte, error) {
	s := NewRecScanner(raw)
	rec, err := s.ScanNext()
	if err != nil {
		return nil, errors.New("missing distribute doc header")
	}
	if rec.Tag != TagDistributeDocData || rec.Size != distributeDataSize {
		return nil, fmt.Errorf("invalid distribution document stream (tag=0x%x, size=%d)", rec.Tag, rec.Size)
	}

	key, err := deriveKey(rec.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	body := raw[s.Offset():]
	bs := block.BlockSize()
	out := make([]byte, len(body)-len(body)%bs)
	for i := 0; i+bs <= len(out); i += bs {
		block.Decrypt(out[i:i+bs], body[i:i+bs])
	}
	return out, nil
}

// deriveKey extracts the AES-128 key from the distribution header:
// 1. Extract seed from first 4 bytes
// 2. Generate 256-byte random array using MSVC rand() with seed
// 3. XOR the random array with distData
// 4. Extract 16-byte key at offset (seed & 0x0F) + 4
func deriveKey(distData []byte) ([]byte, error) {
	if len(distData) != distributeDataSize {
		return nil, errors.New("invalid distribution data size")
	}

	seed := binary.LittleEndian.Uint32(distData[0:4])

	rng := &msvcRand{state: seed}
	randomArray := make([]byte, distributeDataSize)
	for i := 0; i < distributeDataSize; {
		val := rng.rand()
		cnt := rng.rand()

		v := byte(val & 0xFF)
		c := int((cnt & 0x0F) + 1)
		for j := 0; j < c && i < distributeDataSize; j++ {
			randomArray[i] = v
			i++
		}
	}

	offset := int((seed & 0x0F) + 4)
	key := make([]byte, 16)
	for i := range key {
		key[i] = distData[offset+i] ^ randomArray[offset+i]
	}
	return key, nil
}

// msvcRand implements MS Visual C++ rand()
// Formula: next = previous * 214013 + 2531011
type msvcRand struct {
	state uint32
}

func (r *msvcRand) rand() uint32 {
	r.state = r.state*214013 + 2531011
	return (r.state >> 16) & 0x7FFF
}
