package cli

import (
	"fmt"
	"os"
	"path/filepath"
)

// StarterRepository fetches a named starter project into dir. Fetching
// starters over the network is out of scope; LocalStarter below is the
// only implementation the CLI ships. It knows one starter, "default"
// (also used when name is empty), and rejects any other name.
type StarterRepository interface {
	Clone(name, dir string) error
	Describe(name string) (string, error)
}

// LocalStarter writes a small built-in scaffold: a root document and a
// bare-bones HTML template. The project config is not part of it. It
// never touches the network, standing in for a real starter-project
// fetcher.
type LocalStarter struct{}

var knownStarters = map[string]string{
	"default": "A single-page HTML project with one root document.",
}

func (LocalStarter) Describe(name string) (string, error) {
	if name == "" {
		name = "default"
	}
	desc, ok := knownStarters[name]
	if !ok {
		return "", fmt.Errorf("cli: unknown starter %q", name)
	}
	return desc, nil
}

func (LocalStarter) Clone(name, dir string) error {
	if name == "" {
		name = "default"
	}
	if _, ok := knownStarters[name]; !ok {
		return fmt.Errorf("cli: unknown starter %q", name)
	}

	if err := os.MkdirAll(filepath.Join(dir, "templates"), 0o755); err != nil {
		return fmt.Errorf("cli: create %s: %w", dir, err)
	}

	files := map[string]string{
		"root.dm": "---\ntargets: html\ntemplate: template\n---\n# Hello\n\nEdit root.dm to get started.\n",
		"templates/template.html.tmpl": "<!doctype html>\n<html><head><title>{{.Title}}</title></head>\n<body>{{.Body}}</body></html>\n",
	}
	for rel, body := range files {
		full := filepath.Join(dir, rel)
		if _, err := os.Stat(full); err == nil {
			continue
		}
		if err := os.WriteFile(full, []byte(body), 0o644); err != nil {
			return fmt.Errorf("cli: write %s: %w", full, err)
		}
	}
	return nil
}
