package vanilla

import (
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// NamespaceToken is the theme token that overrides the class prefix.
const NamespaceToken = "namespace"

// ThemeFromManifest resolves the tokens of manifest for variant (variant
// tokens win) and derives CSS custom properties from every token except the
// namespace.
func ThemeFromManifest(manifest *theme.Manifest, variant string) *theme.RendererConfig {
	if manifest == nil {
		return nil
	}
	tokens := make(map[string]string, len(manifest.Tokens))
	for key, value := range manifest.Tokens {
		tokens[key] = value
	}
	partials := make(map[string]string, len(manifest.Templates))
	for key, value := range manifest.Templates {
		partials[key] = value
	}
	if v, ok := manifest.Variants[variant]; ok {
		for key, value := range v.Tokens {
			tokens[key] = value
		}
		for key, value := range v.Templates {
			partials[key] = value
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		if key == NamespaceToken {
			continue
		}
		cssVars["--"+strings.TrimPrefix(key, "--")] = value
	}

	prefix := strings.TrimSuffix(manifest.Assets.Prefix, "/")
	return &theme.RendererConfig{
		Theme:    manifest.Name,
		Variant:  variant,
		Tokens:   tokens,
		CSSVars:  cssVars,
		Partials: partials,
		AssetURL: func(key string) string {
			file, ok := manifest.Assets.Files[key]
			if !ok {
				return ""
			}
			if prefix == "" {
				return file
			}
			return prefix + "/" + file
		},
	}
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+vars[key]+";")
	}
	return strings.Join(parts, " ")
}
