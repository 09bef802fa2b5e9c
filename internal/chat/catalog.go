package chat

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Catalog holds the configurable server messages loaded from messages.yml,
// addressed by dotted path into the document.
type Catalog struct {
	mu       sync.RWMutex
	path     string
	messages map[string]string
}

func NewCatalog(path string) (*Catalog, error) {
	catalog := &Catalog{path: path, messages: make(map[string]string)}
	if err := catalog.Reload(); err != nil {
		return nil, err
	}
	return catalog, nil
}

// Reload re-reads the file, replacing the message table wholesale. A missing
// file leaves the catalog empty so every lookup reports the missing path.
func (c *Catalog) Reload() error {
	messages := make(map[string]string)
	data, err := os.ReadFile(c.path)
	if err == nil {
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("decode messages file: %w", err)
		}
		flattenMessages("", doc, messages)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read messages file: %w", err)
	}
	c.mu.Lock()
	c.messages = messages
	c.mu.Unlock()
	return nil
}

func flattenMessages(prefix string, node map[string]any, out map[string]string) {
	for key, value := range node {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		switch typed := value.(type) {
		case string:
			out[path] = typed
		case map[string]any:
			flattenMessages(path, typed, out)
		}
	}
}

// Message returns the markup template at the dotted path. Unknown paths
// return a visible marker rather than an empty string so misconfigured
// deployments show which entry is absent.
func (c *Catalog) Message(path string) string {
	c.mu.RLock()
	template, ok := c.messages[path]
	c.mu.RUnlock()
	if !ok {
		return "Missing message: " + path
	}
	return template
}

// Render parses the message at path with the supplied placeholders.
func (c *Catalog) Render(path string, placeholders map[string]string) *Text {
	return ParseMarkup(c.Message(path), placeholders)
}
