// Package archive keeps discharged patient records in an embedded Badger
// database.
//
// Keys are "discharge/<ulid>", so a prefix scan returns entries in
// discharge order. Values are JSON, sealed with pkg/crypto/adaptive when an
// encryption secret is configured. A passphrase secret stores its Argon2id
// salt and the chosen cipher under "meta/" so the archive reopens on any
// machine with the same passphrase.
package archive
