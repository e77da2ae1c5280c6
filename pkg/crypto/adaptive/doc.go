// Package adaptive provides authenticated encryption for medrec data at rest.
//
// The cipher is chosen by hardware: AES-256-GCM where the CPU accelerates
// AES, ChaCha20-Poly1305 elsewhere. Keys are either 32 random bytes given
// as hex, or derived from a passphrase with Argon2id and a stored salt.
//
// Usage:
//
//	key, err := adaptive.DeriveKey(passphrase, salt)
//	c, err := adaptive.New(key)
//	sealed, err := c.Encrypt(plaintext, aad)
//	plain, err := c.Decrypt(sealed, aad)
package adaptive
