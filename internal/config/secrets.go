package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Secret is one stored credential entry in secrets.yml. Field names match the
// file format used by earlier releases so existing files keep working.
type Secret struct {
	Account   string `yaml:"account"`
	APIClient string `yaml:"api-client-name"`
	APIKey    string `yaml:"api-key"`
}

type secretsFile struct {
	Secrets []Secret `yaml:"secrets"`
}

// SecretStore reads and writes credential entries in a local YAML file.
type SecretStore struct {
	Path string
}

// NewSecretStore returns a store backed by path, defaulting to secrets.yml
// in the working directory.
func NewSecretStore(path string) *SecretStore {
	if path == "" {
		path = "secrets.yml"
	}
	return &SecretStore{Path: path}
}

// Load returns all stored secrets. A missing file is not an error, it just
// means nothing has been saved yet.
func (s *SecretStore) Load() ([]Secret, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &Error{Reason: fmt.Sprintf("reading %s", s.Path), Err: err}
	}

	var f secretsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, &Error{Reason: fmt.Sprintf("parsing %s", s.Path), Err: err}
	}
	return f.Secrets, nil
}

// Get returns the secret for account, or false if none is stored.
func (s *SecretStore) Get(account string) (Secret, bool, error) {
	secrets, err := s.Load()
	if err != nil {
		return Secret{}, false, err
	}
	for _, sec := range secrets {
		if sec.Account == account {
			return sec, true, nil
		}
	}
	return Secret{}, false, nil
}

// Save adds or updates the entry for sec.Account and rewrites the file with
// 0600 permissions.
func (s *SecretStore) Save(sec Secret) error {
	secrets, err := s.Load()
	if err != nil {
		return err
	}

	updated := false
	for i := range secrets {
		if secrets[i].Account == sec.Account {
			secrets[i] = sec
			updated = true
			break
		}
	}
	if !updated {
		secrets = append(secrets, sec)
	}

	out, err := yaml.Marshal(secretsFile{Secrets: secrets})
	if err != nil {
		return &Error{Reason: "encoding secrets", Err: err}
	}
	if err := os.WriteFile(s.Path, out, 0o600); err != nil {
		return &Error{Reason: fmt.Sprintf("writing %s", s.Path), Err: err}
	}
	return nil
}
