package chat

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
)

// Core wires the chat subsystems together and tracks who is online. One Core
// serves the whole process; commands and the network layer receive it
// explicitly.
type Core struct {
	Config   Config
	Formats  *FormatRegistry
	Catalog  *Catalog
	Prefs    *PrefStore
	Resolver *Resolver
	Mentions *MentionEngine
	Bus      *Bus
	Loop     *Loop
	Notifier Notifier
	Pipeline *Pipeline
	Messages *PrivateMessageEngine
	Accounts *AccountManager
	Hooks    *HookEngine

	mu      sync.RWMutex
	players map[string]*Player
}

// NewCore builds a fully wired Core from the configuration. The delivery
// loop is created but not started; callers run it.
func NewCore(config Config) (*Core, error) {
	formats, err := NewFormatRegistry(config.FormatsDir)
	if err != nil {
		return nil, fmt.Errorf("load formats: %w", err)
	}
	catalog, err := NewCatalog(config.MessagesFile)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	accounts, err := NewAccountManager(filepath.Join(config.DataDir, "accounts.json"))
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	resolver := NewResolver()
	core := &Core{
		Config:   config,
		Formats:  formats,
		Catalog:  catalog,
		Prefs:    NewPrefStore(filepath.Join(config.DataDir, "players")),
		Resolver: resolver,
		Mentions: NewMentionEngine(config.Mention.Highlight, resolver),
		Bus:      NewBus(),
		Loop:     NewLoop(),
		Accounts: accounts,
		players:  make(map[string]*Player),
	}
	core.Notifier = NewSessionNotifier(config, resolver)
	core.Pipeline = NewPipeline(core)
	core.Messages = NewPrivateMessageEngine(core)
	if err := core.Resolver.Register(NewBuiltinExpansion(core.Prefs, formats)); err != nil {
		return nil, err
	}
	core.Hooks, err = NewHookEngine(core, config.ScriptsDir)
	if err != nil {
		return nil, fmt.Errorf("load hook scripts: %w", err)
	}
	return core, nil
}

// AddPlayer registers a connected player under their folded name.
func (c *Core) AddPlayer(player *Player) error {
	key := FoldName(player.Name)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, online := c.players[key]; online {
		return fmt.Errorf("player %s already online", player.Name)
	}
	c.players[key] = player
	return nil
}

// RemovePlayer drops a player from the roster if the provided session still
// owns the entry.
func (c *Core) RemovePlayer(player *Player) {
	key := FoldName(player.Name)
	c.mu.Lock()
	defer c.mu.Unlock()
	if current, online := c.players[key]; online && current == player {
		delete(c.players, key)
	}
}

// FindPlayer looks a player up by name, case-insensitively.
func (c *Core) FindPlayer(name string) (*Player, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	player, ok := c.players[FoldName(name)]
	return player, ok
}

// Players returns a snapshot of everyone online.
func (c *Core) Players() []*Player {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Player, 0, len(c.players))
	for _, player := range c.players {
		out = append(out, player)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Tell sends a catalog message to a single player.
func (c *Core) Tell(player *Player, path string, placeholders map[string]string) {
	c.Notifier.Send(player, c.Catalog.Render(path, placeholders))
}

// Close flushes and stops the delivery loop.
func (c *Core) Close() {
	c.Loop.Close()
}
