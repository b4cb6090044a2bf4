package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Export formats understood by Store.Export.
const (
	FormatJSON = "json"
	FormatTXT  = "txt"
	FormatYAML = "yaml"
)

// separator closes every note in the txt export.
var separator = strings.Repeat("-", 40)

// Export renders the whole collection, archived notes included.
// An unknown format yields an empty string and no error.
func (s *Store) Export(ctx context.Context, format string) (string, error) {
	notes := s.List(ctx, true)

	switch format {
	case FormatJSON:
		data, err := EncodeJSON(notes)
		if err != nil {
			return "", fmt.Errorf("failed to export json: %w", err)
		}
		return string(bytes.TrimSuffix(data, []byte("\n"))), nil
	case FormatTXT:
		return renderText(notes), nil
	case FormatYAML:
		data, err := encodeYAML(notes)
		if err != nil {
			return "", fmt.Errorf("failed to export yaml: %w", err)
		}
		return string(data), nil
	}
	return "", nil
}

// EncodeJSON serializes notes as an indented JSON array without
// escaping non-ASCII or HTML characters. This is also the on-disk layout.
func EncodeJSON(notes []Note) ([]byte, error) {
	if notes == nil {
		notes = []Note{}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(notes); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderText(notes []Note) string {
	lines := make([]string, 0, len(notes)*5)
	for _, n := range notes {
		lines = append(lines,
			"标题: "+n.Title,
			"创建时间: "+FormatTimestamp(n.CreatedAt),
			"内容: "+n.Content,
			"标签: "+strings.Join(n.Tags, ", "),
			separator,
		)
	}
	return strings.Join(lines, "\n")
}

// yamlNote mirrors the JSON keys with timestamps kept as strings.
type yamlNote struct {
	ID         int      `yaml:"id"`
	Title      string   `yaml:"title"`
	Content    string   `yaml:"content"`
	Tags       []string `yaml:"tags"`
	CreatedAt  string   `yaml:"created_at"`
	UpdatedAt  string   `yaml:"updated_at"`
	IsArchived bool     `yaml:"is_archived"`
}

func encodeYAML(notes []Note) ([]byte, error) {
	out := make([]yamlNote, 0, len(notes))
	for _, n := range notes {
		out = append(out, yamlNote{
			ID:         n.ID,
			Title:      n.Title,
			Content:    n.Content,
			Tags:       n.Tags,
			CreatedAt:  FormatTimestamp(n.CreatedAt),
			UpdatedAt:  FormatTimestamp(n.UpdatedAt),
			IsArchived: n.IsArchived,
		})
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(out); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
