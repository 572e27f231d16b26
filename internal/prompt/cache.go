package prompt

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/aleister1102/sitecheck/internal/common"

	"github.com/rs/zerolog"
)

// CacheEntry is one persisted remediation hint.
type CacheEntry struct {
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Cache is the process-wide hint cache backed by a single JSON file. Reads
// are concurrent; writes are last-writer-wins and persist the whole map
// atomically after every mutation. A persistence failure keeps the in-memory
// state authoritative for the rest of the process.
type Cache struct {
	mu          sync.RWMutex
	entries     map[string]CacheEntry
	filePath    string
	fileManager *common.FileManager
	logger      zerolog.Logger
}

// NewCache loads the cache from filePath. A missing file is a normal first
// run; a corrupt file is logged and replaced by an empty cache.
func NewCache(filePath string, logger zerolog.Logger) *Cache {
	cache := &Cache{
		entries:     make(map[string]CacheEntry),
		filePath:    filePath,
		fileManager: common.NewFileManager(logger),
		logger:      logger.With().Str("component", "PromptCache").Logger(),
	}
	cache.load()
	return cache
}

func (c *Cache) load() {
	if c.filePath == "" || !c.fileManager.FileExists(c.filePath) {
		return
	}

	data, err := c.fileManager.ReadFile(c.filePath, common.DefaultFileReadOptions())
	if err != nil {
		c.logger.Warn().Err(err).Str("path", c.filePath).Msg("Failed to read prompt cache, starting empty")
		return
	}

	var entries map[string]CacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		c.logger.Warn().Err(err).Str("path", c.filePath).Msg("Prompt cache is corrupt, starting empty")
		return
	}
	c.entries = entries
	c.logger.Debug().Int("entries", len(entries)).Msg("Prompt cache loaded")
}

// Get returns the cached hint for key, if present.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, found := c.entries[key]
	return entry.Prompt, found
}

// Put stores a hint under key and persists the cache. Existing entries are
// overwritten.
func (c *Cache) Put(key, hint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = CacheEntry{Prompt: hint, CreatedAt: time.Now().UTC()}
	c.persistLocked()
}

// Len returns the number of cached hints.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// persistLocked writes the whole cache as indented JSON through an atomic
// rename. Callers must hold the write lock.
func (c *Cache) persistLocked() {
	if c.filePath == "" {
		return
	}

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to encode prompt cache")
		return
	}

	opts := common.DefaultFileWriteOptions()
	opts.Atomic = true
	if err := c.fileManager.WriteFile(c.filePath, data, opts); err != nil {
		c.logger.Warn().Err(err).Str("path", c.filePath).Msg("Failed to persist prompt cache, keeping in-memory state")
	}
}
