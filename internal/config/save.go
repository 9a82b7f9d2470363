package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SaveGateways replaces the gateways section of the config file. Comments
// and formatting in other sections are kept by editing the yaml.Node tree.
func SaveGateways(configPath string, gateways []GatewayConfig) error {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	gatewaysNode, err := buildGatewaysNode(gateways)
	if err != nil {
		return fmt.Errorf("building gateways node: %w", err)
	}

	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind: yaml.DocumentNode,
			Content: []*yaml.Node{
				{
					Kind: yaml.MappingNode,
					Content: []*yaml.Node{
						{Kind: yaml.ScalarNode, Value: "gateways"},
						gatewaysNode,
					},
				},
			},
		}
	} else if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		root := doc.Content[0]
		if root.Kind != yaml.MappingNode {
			return fmt.Errorf("parsing config: top level is not a mapping")
		}
		found := false
		for i := 0; i < len(root.Content)-1; i += 2 {
			if root.Content[i].Value == "gateways" {
				root.Content[i+1] = gatewaysNode
				found = true
				break
			}
		}
		if !found {
			root.Content = append(root.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: "gateways"},
				gatewaysNode,
			)
		}
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	return writeAtomic(configPath, buf.Bytes())
}

// AddGateway appends g to the configured gateways after validating the
// result, and saves it.
func AddGateway(configPath string, g GatewayConfig, existing []GatewayConfig) ([]GatewayConfig, error) {
	updated := append(append([]GatewayConfig{}, existing...), g)
	if err := ValidateGateways(updated); err != nil {
		return existing, err
	}
	if err := SaveGateways(configPath, updated); err != nil {
		return existing, err
	}
	return updated, nil
}

func buildGatewaysNode(gateways []GatewayConfig) (*yaml.Node, error) {
	node := &yaml.Node{
		Kind:    yaml.SequenceNode,
		Content: make([]*yaml.Node, 0, len(gateways)),
	}
	for _, g := range gateways {
		var gNode yaml.Node
		if err := gNode.Encode(g); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &gNode)
	}
	return node, nil
}

// writeAtomic writes to a temp file and renames it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".rdapgw.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
