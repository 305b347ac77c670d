package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/relloyd/aorist/constants"
	"github.com/relloyd/aorist/helper"
	"github.com/spf13/afero"
)

const defaultFileKey = "vp;8vJbo$7aPXD^34zxY(LUo]d4EodCP"

// fileKey returns the 32 byte AES key used for local config files.
// AORIST_CONFIG_KEY overrides the default passphrase.
func fileKey() []byte {
	k := sha256.Sum256([]byte(helper.ReadValueFromEnvWithDefault(constants.EnvVarConfigKey, defaultFileKey)))
	return k[:]
}

// EncryptedFile stores base64 encoded AES-GCM sealed bytes.
type EncryptedFile struct {
	Dirname  string
	FileName string
	FullPath string
	fs       afero.Fs
	key      []byte
	mu       sync.Mutex
}

func NewEncryptedFile(fs afero.Fs, dirName string, filename string) *EncryptedFile {
	return &EncryptedFile{
		Dirname:  dirName,
		FileName: filename,
		FullPath: path.Join(dirName, filename),
		fs:       fs,
		key:      fileKey(),
	}
}

func (f *EncryptedFile) Set(text []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sealed, err := Encrypt(text, f.key)
	if err != nil {
		return err
	}
	if err = makeDir(f.fs, f.Dirname); err != nil {
		return err
	}
	b64 := base64.StdEncoding.EncodeToString(sealed)
	if err = afero.WriteFile(f.fs, f.FullPath, []byte(b64), 0600); err != nil {
		return errors.Wrapf(err, "error writing config file %v", f.FullPath)
	}
	return nil
}

func (f *EncryptedFile) Get() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ok, err := afero.Exists(f.fs, f.FullPath)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, FileNotFoundError{f.FullPath}
	}
	b64, err := afero.ReadFile(f.fs, f.FullPath)
	if err != nil {
		return nil, err
	}
	cipherText, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(b64)))
	if err != nil {
		return nil, errors.Wrapf(err, "config file %v is not base64 encoded", f.FullPath)
	}
	b, err := Decrypt(cipherText, f.key)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to decrypt config file %v (check %v)", f.FullPath, constants.EnvVarConfigKey)
	}
	return b, nil
}

// Encrypt seals text with AES-GCM and prefixes the random nonce.
func Encrypt(text []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, text, nil), nil
}

func Decrypt(text []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(text) < nonceSize {
		return nil, fmt.Errorf("encrypted text is too short")
	}
	nonce, cipherText := text[:nonceSize], text[nonceSize:]
	return gcm.Open(nil, nonce, cipherText, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(c)
}
