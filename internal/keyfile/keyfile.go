// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package keyfile stores signer keys as 25-word mnemonics.
//
// The mnemonic encodes the 32-byte ed25519 seed with a checksum word, so a
// key file can be re-typed by hand. Files are not encrypted.
package keyfile

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"strings"

	algocrypto "github.com/algorand/go-algorand-sdk/v2/crypto"
	"github.com/algorand/go-algorand-sdk/v2/mnemonic"

	"github.com/aplane-algo/apvault/internal/address"
	"github.com/aplane-algo/apvault/internal/fsutil"
)

// ErrKeyExists is returned by Generate and Save when the target file
// already exists.
var ErrKeyExists = errors.New("key file already exists")

// Generate creates a random signer key and saves it at path.
func Generate(path string) (ed25519.PrivateKey, error) {
	account := algocrypto.GenerateAccount()
	if err := Save(path, account.PrivateKey); err != nil {
		return nil, err
	}
	return account.PrivateKey, nil
}

// Save writes sk to path as a mnemonic. An existing key file is never
// replaced, even by a concurrent writer.
func Save(path string, sk ed25519.PrivateKey) error {
	words, err := Encode(sk)
	if err != nil {
		return err
	}
	err = fsutil.WriteFileExclusive(path, []byte(words+"\n"))
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%w: %s", ErrKeyExists, path)
	}
	if err != nil {
		return fmt.Errorf("failed to write key file %s: %w", path, err)
	}
	return nil
}

// Load reads a signer key from path.
func Load(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	sk, err := Decode(string(data))
	if err != nil {
		return nil, fmt.Errorf("key file %s: %w", path, err)
	}
	return sk, nil
}

// Encode converts sk to its mnemonic.
func Encode(sk ed25519.PrivateKey) (string, error) {
	if len(sk) != ed25519.PrivateKeySize {
		return "", fmt.Errorf("invalid private key size: expected %d bytes, got %d", ed25519.PrivateKeySize, len(sk))
	}
	words, err := mnemonic.FromPrivateKey(sk)
	if err != nil {
		return "", fmt.Errorf("failed to encode mnemonic: %w", err)
	}
	return words, nil
}

// Decode parses a mnemonic, tolerating extra whitespace.
func Decode(words string) (ed25519.PrivateKey, error) {
	normalized := strings.Join(strings.Fields(words), " ")
	sk, err := mnemonic.ToPrivateKey(normalized)
	if err != nil {
		return nil, fmt.Errorf("invalid mnemonic: %w", err)
	}
	return sk, nil
}

// Address returns the signer address of sk.
func Address(sk ed25519.PrivateKey) address.Address {
	return address.FromPublicKey(sk.Public().(ed25519.PublicKey))
}
