// Package repository records which contract kind is deployed to which account.
package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/govm-net/gamescore/core"
)

var (
	ErrContractExists   = errors.New("contract already exists")
	ErrContractNotFound = errors.New("contract not found")
)

const metadataFile = "metadata.json"

// Manager stores one metadata file per deployed account under rootDir
type Manager struct {
	rootDir string
}

// ContractMetadata describes a deployment
type ContractMetadata struct {
	Account    core.AccountID `json:"account"`
	Kind       string         `json:"kind"`
	Hash       string         `json:"hash"` // sha256 of kind and account
	DeployTime time.Time      `json:"deploy_time"`
}

// NewManager creates the root directory if needed
func NewManager(rootDir string) (*Manager, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		slog.Error("failed to create root directory", "dir", rootDir, "error", err)
		return nil, fmt.Errorf("failed to create root directory: %w", err)
	}

	return &Manager{
		rootDir: rootDir,
	}, nil
}

// RegisterContract records kind as deployed to account.
// An account can be deployed once.
func (m *Manager) RegisterContract(account core.AccountID, kind string) (*ContractMetadata, error) {
	if account == "" || filepath.Base(account.String()) != account.String() {
		return nil, fmt.Errorf("invalid contract account %q", account)
	}

	contractDir := m.getContractDir(account)
	if _, err := os.Stat(contractDir); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrContractExists, account)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to check contract directory: %w", err)
	}

	if err := os.MkdirAll(contractDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create contract directory: %w", err)
	}

	metadata := &ContractMetadata{
		Account:    account,
		Kind:       kind,
		Hash:       core.GetHash([]byte(kind + "/" + account.String())).String(),
		DeployTime: time.Now().UTC(),
	}
	if err := m.saveMetadata(metadata); err != nil {
		os.RemoveAll(contractDir)
		return nil, err
	}

	slog.Debug("contract registered", "account", account, "kind", kind)
	return metadata, nil
}

// GetContract loads the metadata of account
func (m *Manager) GetContract(account core.AccountID) (*ContractMetadata, error) {
	data, err := os.ReadFile(filepath.Join(m.getContractDir(account), metadataFile))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrContractNotFound, account)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var metadata ContractMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return &metadata, nil
}

// ListContracts returns every deployment sorted by account
func (m *Manager) ListContracts() ([]*ContractMetadata, error) {
	entries, err := os.ReadDir(m.rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read root directory: %w", err)
	}

	var out []*ContractMetadata
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		metadata, err := m.GetContract(core.AccountID(entry.Name()))
		if errors.Is(err, ErrContractNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, metadata)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Account < out[j].Account })
	return out, nil
}

func (m *Manager) getContractDir(account core.AccountID) string {
	return filepath.Join(m.rootDir, account.String())
}

func (m *Manager) saveMetadata(metadata *ContractMetadata) error {
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	path := filepath.Join(m.getContractDir(metadata.Account), metadataFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}
	return nil
}
