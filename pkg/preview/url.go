// Package preview addresses and prefetches rendered block images.
//
// The editor never rasterizes pixels itself. Every block is displayed as an
// image fetched from an external renderer, addressed by a deterministic
// query over the block's full attribute set. The Builder constructs those
// URLs; the Preloader keeps the latest image for each block fetched, where a
// newer fetch supersedes an older in-flight one.
package preview

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/signstudio/signstudio/pkg/block"
	"github.com/signstudio/signstudio/pkg/cache"
	"github.com/signstudio/signstudio/pkg/template"
)

// tokenLen is the length of the cache-defeating token appended to render
// URLs.
const tokenLen = 16

// Builder constructs renderer URLs.
type Builder struct {
	base string
}

// NewBuilder creates a builder for the renderer at the given base URL.
func NewBuilder(base string) *Builder {
	return &Builder{base: strings.TrimRight(base, "/")}
}

// BlockQuery returns the canonical query string over the block's full
// attribute set plus the template dimensions. Keys are sorted, so two blocks
// with equal attributes always produce byte-identical queries.
func BlockQuery(b block.Block, templateWidth, templateHeight int) string {
	rec := block.ToRecord(b)

	keys := make([]string, 0, len(rec)+2)
	for k := range rec {
		keys = append(keys, k)
	}
	keys = append(keys, "TemplateWidth", "TemplateHeight")
	sort.Strings(keys)

	var q url.Values = make(url.Values, len(keys))
	for _, k := range keys {
		switch k {
		case "TemplateWidth":
			q.Set(k, fmt.Sprint(templateWidth))
		case "TemplateHeight":
			q.Set(k, fmt.Sprint(templateHeight))
		default:
			q.Set(k, fmt.Sprint(rec[k]))
		}
	}
	return q.Encode()
}

// BlockURL returns the fetchable preview URL for the block.
//
// A cache-defeating token derived from the query is appended, so any
// attribute change yields a distinct URL. The one exception is a Picture
// block with no assigned media: it resolves to the stable empty variant
// without a token, so it never needs a re-fetch.
func (bl *Builder) BlockURL(b block.Block, templateWidth, templateHeight int) string {
	if b.Type == block.TypePicture && b.MediaID == "" {
		return bl.EmptyURL()
	}
	q := BlockQuery(b, templateWidth, templateHeight)
	return bl.base + "/v1/render/block?" + q + "&token=" + Token(q)
}

// EmptyURL returns the fixed URL of the empty/transparent preview variant.
func (bl *Builder) EmptyURL() string {
	return bl.base + "/v1/render/empty"
}

// BackgroundURL derives the background image URL from a background id.
// The absence sentinel and the empty string both yield no URL at all.
func (bl *Builder) BackgroundURL(id string) string {
	if id == "" || id == template.NoBackground {
		return ""
	}
	return bl.base + "/v1/backgrounds/" + url.PathEscape(id)
}

// Token returns the cache-defeating token for a canonical render query.
func Token(query string) string {
	return cache.Hash([]byte(query))[:tokenLen]
}
