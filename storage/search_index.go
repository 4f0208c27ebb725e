package storage

import (
	"github.com/sahilm/fuzzy"
)

// TopicMatch is a fuzzy search hit against the stored topics.
type TopicMatch struct {
	Topic Topic
	Score int
}

// TranscriptMatch is a fuzzy search hit against transcript names.
type TranscriptMatch struct {
	Transcript TranscriptMetadata
	Score      int
}

// SearchTopics fuzzy-matches the query against all topic texts, best matches
// first. An empty query matches nothing.
func (rs *ResultStore) SearchTopics(query string) ([]TopicMatch, error) {
	if query == "" {
		return []TopicMatch{}, nil
	}

	topics, err := rs.ListTopics(false)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(topics))
	for i, t := range topics {
		texts[i] = t.Text
	}

	var matches []TopicMatch
	for _, m := range fuzzy.Find(query, texts) {
		matches = append(matches, TopicMatch{Topic: topics[m.Index], Score: m.Score})
	}
	return matches, nil
}

// SearchTranscripts fuzzy-matches the query against transcript names, best
// matches first. An empty query matches nothing.
func (ts *TranscriptStorage) SearchTranscripts(query string) ([]TranscriptMatch, error) {
	if query == "" {
		return []TranscriptMatch{}, nil
	}

	metas, err := ts.List()
	if err != nil {
		return nil, err
	}

	names := make([]string, len(metas))
	for i, m := range metas {
		names[i] = m.Name
	}

	var matches []TranscriptMatch
	for _, m := range fuzzy.Find(query, names) {
		matches = append(matches, TranscriptMatch{Transcript: metas[m.Index], Score: m.Score})
	}
	return matches, nil
}
