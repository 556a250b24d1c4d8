package main

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// fileTokenStore persists the session token under the user config dir so
// the operator stays signed in across console restarts.
type fileTokenStore struct {
	path  string
	token string
}

func newFileTokenStore() (*fileTokenStore, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	dir = filepath.Join(dir, "taxe-console")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	s := &fileTokenStore{path: filepath.Join(dir, "session.json")}
	s.load()
	return s, nil
}

type sessionFile struct {
	Token string `json:"token"`
}

func (s *fileTokenStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return
	}
	s.token = f.Token
}

func (s *fileTokenStore) Token() string { return s.token }

func (s *fileTokenStore) SetToken(token string) error {
	s.token = token
	data, err := json.Marshal(sessionFile{Token: token})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *fileTokenStore) Clear() error {
	s.token = ""
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
