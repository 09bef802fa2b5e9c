package chat

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// HookEngine loads operator-provided Go scripts and bridges them onto the
// event bus. A script may declare OnChat, OnPrivateMessage, and OnMention,
// each a func(map[string]any); the payload carries event data plus callbacks
// for cancelling or rewriting the message.
type HookEngine struct {
	core *Core

	mu      sync.RWMutex
	scripts map[string]*scriptEntry
	hooks   []*compiledHooks
}

type scriptEntry struct {
	hooks *compiledHooks
	err   error
}

type compiledHooks struct {
	name             string
	onChat           func(map[string]any)
	onPrivateMessage func(map[string]any)
	onMention        func(map[string]any)
}

// NewHookEngine compiles every .go file in dir and subscribes the resulting
// hooks to the core's bus. A script that fails to compile is logged and
// skipped rather than stopping the server.
func NewHookEngine(core *Core, dir string) (*HookEngine, error) {
	engine := &HookEngine{
		core:    core,
		scripts: make(map[string]*scriptEntry),
	}
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read scripts directory: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".go" {
			continue
		}
		source, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read script %s: %w", name, err)
		}
		hooks, err := engine.hooksFor(name, string(source))
		if err != nil {
			log.Printf("hook script %s failed to load: %v", name, err)
			continue
		}
		if hooks != nil {
			engine.hooks = append(engine.hooks, hooks)
		}
	}
	core.Bus.OnChat(engine.handleChat)
	core.Bus.OnPrivateMessage(engine.handlePrivateMessage)
	core.Bus.OnMention(engine.handleMention)
	return engine, nil
}

// Loaded reports how many scripts are active.
func (e *HookEngine) Loaded() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.hooks)
}

func (e *HookEngine) handleChat(ev *ChatEvent) {
	payload := map[string]any{
		"sender":  ev.Sender.Name,
		"message": ev.Message.Plain(),
		"cancel": func() {
			ev.Cancelled = true
		},
		"set_message": func(markup string) {
			ev.Message = ParseMarkup(markup, nil)
		},
	}
	e.mu.RLock()
	hooks := e.hooks
	e.mu.RUnlock()
	for _, hook := range hooks {
		if hook.onChat != nil {
			e.invoke(hook.name, "OnChat", func() { hook.onChat(payload) })
		}
	}
}

func (e *HookEngine) handlePrivateMessage(ev *PrivateMessageEvent) {
	payload := map[string]any{
		"sender":    ev.Sender.Name,
		"recipient": ev.Recipient.Name,
		"message":   ev.Message.Plain(),
		"cancel": func() {
			ev.Cancelled = true
		},
		"set_message": func(markup string) {
			ev.Message = ParseMarkup(markup, nil)
		},
		"set_sound": func(on bool) {
			ev.Sound = on
		},
	}
	e.mu.RLock()
	hooks := e.hooks
	e.mu.RUnlock()
	for _, hook := range hooks {
		if hook.onPrivateMessage != nil {
			e.invoke(hook.name, "OnPrivateMessage", func() { hook.onPrivateMessage(payload) })
		}
	}
}

func (e *HookEngine) handleMention(ev *MentionEvent) {
	payload := map[string]any{
		"sender": ev.Sender.Name,
		"target": ev.Target.Name,
		"cancel": func() {
			ev.Cancelled = true
		},
	}
	e.mu.RLock()
	hooks := e.hooks
	e.mu.RUnlock()
	for _, hook := range hooks {
		if hook.onMention != nil {
			e.invoke(hook.name, "OnMention", func() { hook.onMention(payload) })
		}
	}
}

func (e *HookEngine) invoke(name, hook string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("hook script %s %s panic: %v", name, hook, r)
		}
	}()
	fn()
}

func (e *HookEngine) hooksFor(name, source string) (*compiledHooks, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return nil, nil
	}
	key := hashScript(trimmed)
	e.mu.RLock()
	entry, ok := e.scripts[key]
	e.mu.RUnlock()
	if ok {
		return entry.hooks, entry.err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if entry, ok := e.scripts[key]; ok {
		return entry.hooks, entry.err
	}
	hooks, err := compileHooks(name, trimmed)
	e.scripts[key] = &scriptEntry{hooks: hooks, err: err}
	return hooks, err
}

func compileHooks(name, source string) (*compiledHooks, error) {
	interpreter := interp.New(interp.Options{})
	interpreter.Use(stdlib.Symbols)
	if _, err := interpreter.Eval(source); err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	compiled := &compiledHooks{name: name}
	if value, err := interpreter.Eval("OnChat"); err == nil {
		fn, ok := value.Interface().(func(map[string]any))
		if !ok {
			return nil, fmt.Errorf("OnChat has unexpected type %T", value.Interface())
		}
		compiled.onChat = fn
	} else if !isUndefinedSymbol(err) {
		return nil, fmt.Errorf("OnChat: %w", err)
	}
	if value, err := interpreter.Eval("OnPrivateMessage"); err == nil {
		fn, ok := value.Interface().(func(map[string]any))
		if !ok {
			return nil, fmt.Errorf("OnPrivateMessage has unexpected type %T", value.Interface())
		}
		compiled.onPrivateMessage = fn
	} else if !isUndefinedSymbol(err) {
		return nil, fmt.Errorf("OnPrivateMessage: %w", err)
	}
	if value, err := interpreter.Eval("OnMention"); err == nil {
		fn, ok := value.Interface().(func(map[string]any))
		if !ok {
			return nil, fmt.Errorf("OnMention has unexpected type %T", value.Interface())
		}
		compiled.onMention = fn
	} else if !isUndefinedSymbol(err) {
		return nil, fmt.Errorf("OnMention: %w", err)
	}
	if compiled.onChat == nil && compiled.onPrivateMessage == nil && compiled.onMention == nil {
		return nil, nil
	}
	return compiled, nil
}

func hashScript(src string) string {
	sum := sha1.Sum([]byte(src))
	return hex.EncodeToString(sum[:])
}

func isUndefinedSymbol(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "undefined") || strings.Contains(msg, "not declared")
}
