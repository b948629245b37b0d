package model

import (
	"fmt"
	"sort"
	"sync"
)

// Alias maps a short model id to a provider and the provider's model name.
type Alias struct {
	Provider string
	Model    string
}

// Manager resolves model aliases to clients. It is built explicitly with
// the clients it may hand out; there is no process-wide registry.
type Manager struct {
	mu      sync.RWMutex
	clients map[string]Client
	aliases map[string]Alias
}

// NewManager creates a manager with no aliases registered.
func NewManager() *Manager {
	return &Manager{
		clients: map[string]Client{},
		aliases: map[string]Alias{},
	}
}

// RegisterClient registers a provider client under its provider name.
func (m *Manager) RegisterClient(client Client) error {
	if client == nil {
		return fmt.Errorf("client is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	name := client.Provider()
	if _, exists := m.clients[name]; exists {
		return fmt.Errorf("provider %s already registered", name)
	}
	m.clients[name] = client
	return nil
}

// RegisterAlias maps a model id to a provider and model name. The provider
// must already have a registered client.
func (m *Manager) RegisterAlias(id string, alias Alias) error {
	if id == "" {
		return fmt.Errorf("alias id is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[alias.Provider]; !ok {
		return fmt.Errorf("unknown provider %s for alias %s", alias.Provider, id)
	}
	m.aliases[id] = alias
	return nil
}

// Resolve returns the client and provider model name for a model id.
// Unknown ids resolve against the id itself when exactly one provider is
// registered, so plain model names keep working without an alias table.
func (m *Manager) Resolve(id string) (Client, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if alias, ok := m.aliases[id]; ok {
		client, ok := m.clients[alias.Provider]
		if !ok {
			return nil, "", fmt.Errorf("alias %s references unknown provider %s", id, alias.Provider)
		}
		return client, alias.Model, nil
	}

	if len(m.clients) == 1 {
		for _, client := range m.clients {
			return client, id, nil
		}
	}

	return nil, "", fmt.Errorf("unknown model id %s", id)
}

// List returns the registered alias ids in sorted order.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.aliases))
	for id := range m.aliases {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
