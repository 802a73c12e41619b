package mcpserver

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/erraggy/reqgate/internal/config"
	"github.com/erraggy/reqgate/model"
)

// modelsInput represents the three ways a model description can be provided
// to a tool. At most one of File, URL, or Content may be set; when none is,
// the configured default model file is used.
type modelsInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to a model description file on disk"`
	URL     string `json:"url,omitempty"     jsonschema:"URL to fetch a model description file from"`
	Content string `json:"content,omitempty" jsonschema:"Inline model description (YAML or JSON)"`
}

// modelCache provides a session-scoped cache for loaded model registries.
// File inputs are keyed by (absolutePath, modTime), content inputs by a
// SHA-256 hash and URL inputs by URL string. URL entries expire sooner.
type modelCache struct {
	local  *expirable.LRU[string, *model.Registry]
	remote *expirable.LRU[string, *model.Registry]
}

func newModelCache(cfg config.MCPConfig) *modelCache {
	return &modelCache{
		local:  expirable.NewLRU[string, *model.Registry](cfg.ModelCacheSize, nil, cfg.ModelTTL),
		remote: expirable.NewLRU[string, *model.Registry](cfg.ModelCacheSize, nil, cfg.ModelURLTTL),
	}
}

func (c *modelCache) store(key string) *expirable.LRU[string, *model.Registry] {
	if strings.HasPrefix(key, "url:") {
		return c.remote
	}
	return c.local
}

func (c *modelCache) get(key string) (*model.Registry, bool) {
	return c.store(key).Get(key)
}

func (c *modelCache) put(key string, reg *model.Registry) {
	c.store(key).Add(key, reg)
}

// reset clears all cached entries. Used in tests.
func (c *modelCache) reset() {
	c.local.Purge()
	c.remote.Purge()
}

// size returns the number of cached entries.
func (c *modelCache) size() int {
	return c.local.Len() + c.remote.Len()
}

// makeCacheKey creates a cache key for the given input, or "" when the
// input cannot be cached.
func makeCacheKey(in modelsInput) string {
	switch {
	case in.File != "":
		absPath, err := filepath.Abs(in.File)
		if err != nil {
			return ""
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return "" // Can't stat, don't cache.
		}
		return fmt.Sprintf("file:%s:%d", absPath, info.ModTime().UnixNano())
	case in.Content != "":
		h := sha256.Sum256([]byte(in.Content))
		return "content:" + hex.EncodeToString(h[:])
	case in.URL != "":
		return "url:" + in.URL
	default:
		return ""
	}
}

// resolveModels loads the model registry from whichever input was provided,
// using the session cache.
func (s *toolset) resolveModels(ctx context.Context, in modelsInput) (*model.Registry, error) {
	if in == (modelsInput{}) && s.cfg.ModelFile != "" {
		in.File = s.cfg.ModelFile
	}

	count := 0
	for _, v := range []string{in.File, in.URL, in.Content} {
		if v != "" {
			count++
		}
	}
	if count != 1 {
		return nil, fmt.Errorf("exactly one of file, url, or content must be provided (got %d)", count)
	}

	if int64(len(in.Content)) > s.cfg.MCP.MaxInlineSize {
		return nil, fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set REQGATE_MCP_MAX_INLINE_SIZE to increase",
			len(in.Content), s.cfg.MCP.MaxInlineSize)
	}

	key := makeCacheKey(in)
	if key != "" {
		if reg, ok := s.models.get(key); ok {
			return reg, nil
		}
	}

	var (
		reg *model.Registry
		err error
	)
	switch {
	case in.File != "":
		reg, err = model.LoadFile(in.File)
	case in.URL != "":
		var data []byte
		data, err = fetchDocument(ctx, s.httpClient, in.URL, s.cfg.MCP.MaxInlineSize)
		if err == nil {
			reg, err = model.Load(bytes.NewReader(data))
		}
	default:
		reg, err = model.Load(strings.NewReader(in.Content))
	}
	if err != nil {
		return nil, err
	}

	if key != "" {
		s.models.put(key, reg)
	}
	s.logger.Debug("loaded model description", "models", reg.Len())
	return reg, nil
}
