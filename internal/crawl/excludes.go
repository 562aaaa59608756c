package crawl

import "strings"

// Fixed deny-list applied before any .gitignore filtering. Directory and
// file names match exactly; extensions match the lower-cased suffix.

var excludedDirs = map[string]struct{}{
	".git":             {},
	".hg":              {},
	".svn":             {},
	".idea":            {},
	".vscode":          {},
	"__pycache__":      {},
	".pytest_cache":    {},
	".mypy_cache":      {},
	".ruff_cache":      {},
	"node_modules":     {},
	"bower_components": {},
	"vendor":           {},
	"venv":             {},
	".venv":            {},
	"env":              {},
	"ai_env":           {},
	"dist":             {},
	"build":            {},
	"out":              {},
	"target":           {},
	"coverage":         {},
	".next":            {},
	".nuxt":            {},
	".ripple":          {},
}

var excludedFiles = map[string]struct{}{
	"package-lock.json": {},
	"yarn.lock":         {},
	"pnpm-lock.yaml":    {},
	"poetry.lock":       {},
	"Pipfile.lock":      {},
	"Cargo.lock":        {},
	".DS_Store":         {},
	"Thumbs.db":         {},
}

var excludedExts = map[string]struct{}{
	".pyc": {}, ".pyo": {}, ".so": {}, ".dll": {}, ".dylib": {}, ".exe": {},
	".zip": {}, ".tar": {}, ".gz": {}, ".bz2": {}, ".7z": {}, ".rar": {},
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".bmp": {}, ".ico": {},
	".svg": {}, ".webp": {}, ".pdf": {},
	".woff": {}, ".woff2": {}, ".ttf": {}, ".eot": {}, ".otf": {},
	".mp3": {}, ".mp4": {}, ".wav": {}, ".avi": {}, ".mov": {},
	".map": {},
}

var excludedSuffixes = []string{".min.js", ".min.css"}

func excludedDir(name string) bool {
	_, ok := excludedDirs[name]
	return ok
}

func excludedFile(name string) bool {
	if _, ok := excludedFiles[name]; ok {
		return true
	}
	lower := strings.ToLower(name)
	if dot := strings.LastIndex(lower, "."); dot >= 0 {
		if _, ok := excludedExts[lower[dot:]]; ok {
			return true
		}
	}
	for _, suffix := range excludedSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
