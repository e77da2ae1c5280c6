package config

import "strings"

// Sanitize returns a copy of the config with secrets masked.
func Sanitize(cfg *Config) *Config {
	sanitized := *cfg

	if sanitized.Security.EncryptionKey != "" {
		sanitized.Security.EncryptionKey = maskSecret(sanitized.Security.EncryptionKey)
	}
	if sanitized.Backup.S3.SecretAccessKey != "" {
		sanitized.Backup.S3.SecretAccessKey = maskSecret(sanitized.Backup.S3.SecretAccessKey)
	}

	return &sanitized
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
