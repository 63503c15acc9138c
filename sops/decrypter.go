package sops

import (
	"fmt"

	"github.com/getsops/sops/v3/decrypt"
	"github.com/rs/zerolog/log"
)

// Decrypter decrypts SOPS-encrypted YAML and passes anything else through untouched
type Decrypter struct{}

// Decrypt parses the document once: a missing `sops` block means plain text
func (Decrypter) Decrypt(data []byte) ([]byte, error) {
	md := ReadMetadata(data)
	if md == nil {
		return data, nil
	}

	log.Debug().Strs("keyServices", md.KeyServices()).Str("sopsVersion", md.Version).Msg("Decrypting SOPS-encrypted kubeconfig")

	decrypted, err := decrypt.Data(data, "yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt SOPS-encrypted content: %w", err)
	}
	return decrypted, nil
}

// IsEncrypted checks if the provided YAML content contains SOPS metadata
func IsEncrypted(data []byte) bool {
	return ReadMetadata(data) != nil
}
