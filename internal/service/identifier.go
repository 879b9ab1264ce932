package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gymsnap/gymsnap/internal/domain"
)

const identifyPrompt = `You are a gym exercise identification assistant. The user has taken a photo of gym equipment or their exercise setup.

Analyze the image and respond with ONLY a JSON object (no markdown, no backticks):
{
  "exercise_name": "the most likely exercise being performed or set up",
  "equipment": "the equipment visible",
  "muscle_group": "primary muscle group targeted",
  "confidence": "high" | "medium" | "low",
  "alternatives": ["other possible exercises with this equipment"]
}

If you cannot identify the exercise or equipment, respond with:
{
  "exercise_name": "Unknown",
  "equipment": "Unknown",
  "muscle_group": "Unknown",
  "confidence": "low",
  "alternatives": []
}`

// acceptedMediaTypes are the image MIME types the upstream vision capability accepts
var acceptedMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// OpenRouterIdentifier implements domain.IdentifierService using the
// OpenRouter chat-completions API with a vision-capable model.
//
// The upstream output is untrusted free text that must encode the exact
// five-field identification object. Malformed output is a hard failure:
// no markdown-fence stripping, no JSON extraction, no default result.
type OpenRouterIdentifier struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewOpenRouterIdentifier creates a new OpenRouter identification client
func NewOpenRouterIdentifier(apiKey, model, baseURL string) *OpenRouterIdentifier {
	return &OpenRouterIdentifier{
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Identify sends one image to the vision model and returns a validated
// identification. Exactly one upstream call is made; the caller owns retries.
func (s *OpenRouterIdentifier) Identify(ctx context.Context, imageBase64, mediaType string) (*domain.Identification, error) {
	if imageBase64 == "" {
		return nil, domain.NewValidationError("imageBase64", "must not be empty")
	}
	if !acceptedMediaTypes[mediaType] {
		return nil, domain.NewValidationError("mediaType", "unsupported image type")
	}

	requestBody := map[string]interface{}{
		"model": s.model,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{
						"type": "image_url",
						"image_url": map[string]string{
							"url": fmt.Sprintf("data:%s;base64,%s", mediaType, imageBase64),
						},
					},
					{
						"type": "text",
						"text": identifyPrompt,
					},
				},
			},
		},
		"max_tokens":  300,
		"temperature": 0.1,
	}

	payload, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIdentifyUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrIdentifyUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrIdentifyUpstream, resp.StatusCode, string(body))
	}

	var apiResponse struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
			Code    int    `json:"code"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIdentifyUpstream, err)
	}

	if apiResponse.Error != nil {
		return nil, fmt.Errorf("%w: %s (code %d)", domain.ErrIdentifyUpstream, apiResponse.Error.Message, apiResponse.Error.Code)
	}

	if len(apiResponse.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", domain.ErrIdentifyUpstream)
	}

	return parseIdentification(apiResponse.Choices[0].Message.Content)
}

// parseIdentification decodes the model's text output into an Identification.
// The text must be exactly one bare JSON object with the five expected
// fields and nothing else.
func parseIdentification(text string) (*domain.Identification, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()

	var result domain.Identification
	if err := dec.Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIdentifyParse, err)
	}

	// Trailing content after the object (markdown fences, commentary)
	// makes the output malformed as a whole.
	if err := checkNoTrailing(dec); err != nil {
		return nil, err
	}

	if result.ExerciseName == "" {
		return nil, fmt.Errorf("%w: missing exercise_name", domain.ErrIdentifyParse)
	}
	if !result.Confidence.Valid() {
		return nil, fmt.Errorf("%w: confidence %q", domain.ErrIdentifyParse, result.Confidence)
	}
	if result.Alternatives == nil {
		return nil, fmt.Errorf("%w: missing alternatives", domain.ErrIdentifyParse)
	}

	return &result, nil
}

func checkNoTrailing(dec *json.Decoder) error {
	var trailing json.RawMessage
	if err := dec.Decode(&trailing); err != io.EOF {
		return fmt.Errorf("%w: trailing content after JSON object", domain.ErrIdentifyParse)
	}
	return nil
}
