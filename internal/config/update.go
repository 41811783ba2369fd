package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/procmon/internal/errors"
	"gopkg.in/yaml.v3"
)

// keyComments annotate the generated config template, keyed by dotted path.
var keyComments = map[string]string{
	"version":                    "Config schema version",
	"collector":                  "Sampling cadence and budgets for the background collector",
	"collector.intervals":        "How often each source samples",
	"collector.ttl":              "How long system-wide readings are reused before re-running the command",
	"collector.merge_interval":   "How often a merged snapshot is published",
	"collector.cycle_budget":     "Wall-clock limit for one collection by one source",
	"collector.stale_after":      "Source data older than this is ignored by the merger",
	"collector.max_processes":    "Rows kept per cycle",
	"collector.max_failures":     "Consecutive failed cycles before the collector backs off",
	"gateway":                    "Limits for external measurement commands",
	"gateway.max_output_bytes":   "Output past this aborts the command",
	"classify":                   "Processes matching these names are shown as System",
	"classify.interactive_names": "Root-owned processes matching these stay User",
	"ui.refresh":                 "How often the table pulls the latest snapshot",
	"ui.default_sort":            "One of: pid, name, cpu, mem, gpu, net, time, type",
	"ui.thresholds":              "Percentages where CPU and RAM cells turn yellow and red",
}

// Marshal renders a config as YAML with 2-space indentation.
func Marshal(cfg *Config) ([]byte, error) {
	var node yaml.Node
	if err := node.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return encodeNode(&node)
}

// Template returns the default config with explanatory comments.
func Template() ([]byte, error) {
	var node yaml.Node
	if err := node.Encode(DefaultConfig()); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	annotate(&node, "")
	return encodeNode(&node)
}

// WriteDefault writes the commented default config to path. An existing file
// is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.New(errors.ErrConfig,
			"Config file already exists: "+path,
			"Use --force to overwrite it")
	}

	data, err := Template()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot create config directory "+dir,
				"Check directory permissions")
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config file",
			"Check file permissions for "+path)
	}
	return nil
}

// SetValue updates a single dotted key (ui.refresh) in an existing config
// file, keeping comments and ordering. Missing intermediate maps are created.
// Comma-separated values become a list when the key already holds one.
func SetValue(configPath, key, value string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if root.Kind == 0 {
		root = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return fmt.Errorf("invalid YAML document structure")
	}

	node := root.Content[0]
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping at document root")
	}

	parts := strings.Split(key, ".")
	for _, part := range parts[:len(parts)-1] {
		child := findMapValue(node, part)
		if child == nil {
			child = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			node.Content = append(node.Content, scalar(part), child)
		}
		if child.Kind != yaml.MappingNode {
			return fmt.Errorf("'%s' is not a section in the config", part)
		}
		node = child
	}

	leaf := parts[len(parts)-1]
	newValue := scalar(value)
	if existing := findMapValue(node, leaf); existing != nil && existing.Kind == yaml.SequenceNode {
		newValue = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				newValue.Content = append(newValue.Content, scalar(item))
			}
		}
	}

	if !replaceMapValue(node, leaf, newValue) {
		node.Content = append(node.Content, scalar(leaf), newValue)
	}

	out, err := encodeNode(&root)
	if err != nil {
		return err
	}

	if err := os.WriteFile(configPath, out, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func encodeNode(node *yaml.Node) ([]byte, error) {
	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(node); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()
	return []byte(buf.String()), nil
}

// annotate attaches keyComments as head comments on mapping keys.
func annotate(node *yaml.Node, prefix string) {
	if node.Kind == yaml.DocumentNode {
		for _, c := range node.Content {
			annotate(c, prefix)
		}
		return
	}
	if node.Kind != yaml.MappingNode {
		return
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode := node.Content[i]
		path := keyNode.Value
		if prefix != "" {
			path = prefix + "." + keyNode.Value
		}
		if comment, ok := keyComments[path]; ok {
			keyNode.HeadComment = comment
		}
		annotate(node.Content[i+1], path)
	}
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: value}
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.Value == key {
			return valueNode
		}
	}

	return nil
}

func replaceMapValue(node *yaml.Node, key string, value *yaml.Node) bool {
	for i := 0; i < len(node.Content)-1; i += 2 {
		if node.Content[i].Value == key {
			value.LineComment = node.Content[i+1].LineComment
			node.Content[i+1] = value
			return true
		}
	}
	return false
}
