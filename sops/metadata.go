package sops

import (
	"gopkg.in/yaml.v3"
)

// SopsMetadata represents the SOPS metadata structure in encrypted files
type SopsMetadata struct {
	Kms          []any  `yaml:"kms,omitempty"`
	GcpKms       []any  `yaml:"gcp_kms,omitempty"`
	AzureKv      []any  `yaml:"azure_kv,omitempty"`
	Age          []any  `yaml:"age,omitempty"`
	Pgp          []any  `yaml:"pgp,omitempty"`
	LastModified string `yaml:"lastmodified,omitempty"`
	Mac          string `yaml:"mac,omitempty"`
	Version      string `yaml:"version,omitempty"`
}

type envelope struct {
	Sops *SopsMetadata `yaml:"sops"`
}

// ReadMetadata returns the `sops` block of the document, or nil when there is none or the document is not YAML
func ReadMetadata(data []byte) *SopsMetadata {
	var doc envelope
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil
	}
	return doc.Sops
}

// KeyServices names the key services that hold a data key for the document
func (m *SopsMetadata) KeyServices() []string {
	if m == nil {
		return nil
	}

	var services []string
	for _, each := range []struct {
		name string
		keys []any
	}{
		{"kms", m.Kms},
		{"gcp_kms", m.GcpKms},
		{"azure_kv", m.AzureKv},
		{"age", m.Age},
		{"pgp", m.Pgp},
	} {
		if len(each.keys) > 0 {
			services = append(services, each.name)
		}
	}
	return services
}
