// Copyright (c) 2026 mcard project
// mcard - content-addressable card store
// This source code is licensed under the MIT license found in the LICENSE file.

package api

// Collaborator interfaces for record enrichment. Implementations live
// outside the core (byte-signature sniffers, language models, LLM
// summarizers); the core consumes card content read-only through them and
// never relies on their outputs for its own invariants.

// TypeClassifier resolves content bytes to a MIME type and file extension.
type TypeClassifier interface {
	Classify(content []byte) (mimeType, extension string)
}

// LanguageGuess is one ranked language candidate.
type LanguageGuess struct {
	Language    string  `json:"language"`
	Probability float64 `json:"probability"`
}

// LanguageDetector ranks likely languages for content.
type LanguageDetector interface {
	Detect(content []byte) []LanguageGuess
}

// Summarizer produces free text for content given its MIME type and
// detected language.
type Summarizer interface {
	Summarize(content []byte, mimeType, language string) (string, error)
}

// DescribeResponse is the enriched wire form of a card.
type DescribeResponse struct {
	CardResponse
	MIMEType  string          `json:"mime_type,omitempty"`
	Extension string          `json:"extension,omitempty"`
	Languages []LanguageGuess `json:"languages,omitempty"`
	Summary   string          `json:"summary,omitempty"`
}

// Describe fetches a card and enriches it with whatever collaborators are
// installed. Collaborator failures degrade to an unenriched response; the
// card data itself is always authoritative.
func (s *Service) Describe(hash string) (DescribeResponse, error) {
	card, err := s.store.Get(hash)
	if err != nil {
		return DescribeResponse{}, err
	}
	resp := DescribeResponse{CardResponse: toResponse(*card)}

	if s.classifier != nil {
		resp.MIMEType, resp.Extension = s.classifier.Classify(card.Content)
	}
	if s.detector != nil {
		resp.Languages = s.detector.Detect(card.Content)
	}
	if s.summarizer != nil && resp.MIMEType != "" {
		lang := ""
		if len(resp.Languages) > 0 {
			lang = resp.Languages[0].Language
		}
		if summary, err := s.summarizer.Summarize(card.Content, resp.MIMEType, lang); err == nil {
			resp.Summary = summary
		}
	}
	return resp, nil
}
