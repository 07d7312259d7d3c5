package utils

import (
    "crypto/aes"
    "crypto/cipher"
    "crypto/rand"
    "encoding/hex"
    "errors"
    "fmt"
)

// FieldBox encrypts and decrypts individual sensitive column values with
// AES-256-GCM.  Host tax ids and bank accounts pass through a FieldBox at
// the storage boundary: encrypted on every write, decrypted only on the
// authorized admin review read.  Ciphertexts are hex strings of
// nonce||sealed so they fit ordinary VARCHAR columns.
type FieldBox struct {
    aead cipher.AEAD
}

// ErrDecrypt is returned when a stored value cannot be authenticated,
// either because it was tampered with or the key is wrong.
var ErrDecrypt = errors.New("field decryption failed")

// NewFieldBox builds a FieldBox from a hex-encoded 32-byte key.
func NewFieldBox(hexKey string) (*FieldBox, error) {
    key, err := hex.DecodeString(hexKey)
    if err != nil {
        return nil, fmt.Errorf("field key: %w", err)
    }
    if len(key) != 32 {
        return nil, fmt.Errorf("field key: need 32 bytes, got %d", len(key))
    }
    block, err := aes.NewCipher(key)
    if err != nil {
        return nil, err
    }
    aead, err := cipher.NewGCM(block)
    if err != nil {
        return nil, err
    }
    return &FieldBox{aead: aead}, nil
}

// Seal encrypts a plaintext field value.  Empty input stays empty so
// optional columns round-trip without producing ciphertext for nothing.
func (b *FieldBox) Seal(plain string) (string, error) {
    if plain == "" {
        return "", nil
    }
    nonce := make([]byte, b.aead.NonceSize())
    if _, err := rand.Read(nonce); err != nil {
        return "", err
    }
    sealed := b.aead.Seal(nonce, nonce, []byte(plain), nil)
    return hex.EncodeToString(sealed), nil
}

// Open decrypts a value previously produced by Seal.
func (b *FieldBox) Open(enc string) (string, error) {
    if enc == "" {
        return "", nil
    }
    raw, err := hex.DecodeString(enc)
    if err != nil {
        return "", ErrDecrypt
    }
    ns := b.aead.NonceSize()
    if len(raw) < ns {
        return "", ErrDecrypt
    }
    plain, err := b.aead.Open(nil, raw[:ns], raw[ns:], nil)
    if err != nil {
        return "", ErrDecrypt
    }
    return string(plain), nil
}
