// Package tlsroots builds trust pools for outbound TLS.
//
// It is used by the S3 backup driver to trust a private CA, typically a
// MinIO endpoint with a self-signed certificate, on top of the system
// roots.
package tlsroots
