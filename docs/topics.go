// Package docs embeds the user documentation topics served by the
// `dvt topic` command.
package docs

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.md
var docs embed.FS

// GetTopic returns the content of a documentation topic. The "*" topic
// expands to all topics.
func GetTopic(topic string) (string, error) {
	return GetTopics(topic)
}

// GetTopics returns the content of the named topics concatenated
// together. A "*" entry expands in place to every available topic.
func GetTopics(topics ...string) (string, error) {
	expanded := make([]string, 0, len(topics))
	for _, topic := range topics {
		if topic != "*" {
			expanded = append(expanded, topic)
			continue
		}
		all, err := GetAllTopics()
		if err != nil {
			return "", err
		}
		expanded = append(expanded, all...)
	}

	var b strings.Builder
	for _, topic := range expanded {
		content, err := docs.ReadFile(topic + ".md")
		if err != nil {
			return "", fmt.Errorf("topic %q not found: %w", topic, err)
		}
		b.Write(content)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// GetAllTopics returns the list of available topics, readme excluded.
func GetAllTopics() ([]string, error) {
	pages, err := fs.Glob(docs, "*.md")
	if err != nil {
		return nil, err
	}
	topics := pages[:0]
	for _, page := range pages {
		topic := strings.TrimSuffix(page, ".md")
		if topic == "readme" {
			continue
		}
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics, nil
}
