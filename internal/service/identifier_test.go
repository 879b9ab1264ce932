package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gymsnap/gymsnap/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubOpenRouter returns a chat-completions server that always answers with
// the given message content
func stubOpenRouter(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req["model"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		})
	}))
}

func identifyWith(t *testing.T, content string) (*domain.Identification, error) {
	t.Helper()
	srv := stubOpenRouter(t, content)
	defer srv.Close()

	client := NewOpenRouterIdentifier("test-key", "test-model", srv.URL)
	return client.Identify(context.Background(), testImage, "image/jpeg")
}

func TestIdentifyParsesExactObject(t *testing.T) {
	result, err := identifyWith(t, `{
		"exercise_name": "Lat Pulldown",
		"equipment": "Cable Machine",
		"muscle_group": "Back",
		"confidence": "high",
		"alternatives": ["Straight Arm Pulldown", "Seated Row"]
	}`)
	require.NoError(t, err)

	assert.Equal(t, "Lat Pulldown", result.ExerciseName)
	assert.Equal(t, "Cable Machine", result.Equipment)
	assert.Equal(t, "Back", result.MuscleGroup)
	assert.Equal(t, domain.ConfidenceHigh, result.Confidence)
	assert.Equal(t, []string{"Straight Arm Pulldown", "Seated Row"}, result.Alternatives)
	assert.False(t, result.Unknown())
}

func TestIdentifyUnknownSentinelIsValid(t *testing.T) {
	result, err := identifyWith(t, `{
		"exercise_name": "Unknown",
		"equipment": "Unknown",
		"muscle_group": "Unknown",
		"confidence": "low",
		"alternatives": []
	}`)
	require.NoError(t, err)
	assert.True(t, result.Unknown())
	assert.Empty(t, result.Alternatives)
}

func TestIdentifyRejectsMalformedOutput(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"free text refusal", "Sorry, I can't tell what exercise this is."},
		{"markdown fenced", "```json\n{\"exercise_name\":\"Squat\",\"equipment\":\"Barbell\",\"muscle_group\":\"Legs\",\"confidence\":\"high\",\"alternatives\":[]}\n```"},
		{"trailing commentary", `{"exercise_name":"Squat","equipment":"Barbell","muscle_group":"Legs","confidence":"high","alternatives":[]} Hope this helps!`},
		{"extra field", `{"exercise_name":"Squat","equipment":"Barbell","muscle_group":"Legs","confidence":"high","alternatives":[],"notes":"n/a"}`},
		{"missing exercise_name", `{"equipment":"Barbell","muscle_group":"Legs","confidence":"high","alternatives":[]}`},
		{"missing alternatives", `{"exercise_name":"Squat","equipment":"Barbell","muscle_group":"Legs","confidence":"high"}`},
		{"bad confidence", `{"exercise_name":"Squat","equipment":"Barbell","muscle_group":"Legs","confidence":"certain","alternatives":[]}`},
		{"empty output", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := identifyWith(t, tc.content)
			assert.ErrorIs(t, err, domain.ErrIdentifyParse)
		})
	}
}

func TestIdentifyUpstreamFailures(t *testing.T) {
	t.Run("http error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		client := NewOpenRouterIdentifier("test-key", "test-model", srv.URL)
		_, err := client.Identify(context.Background(), testImage, "image/jpeg")
		assert.ErrorIs(t, err, domain.ErrIdentifyUpstream)
	})

	t.Run("api error payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{"message": "model overloaded", "code": 502},
			})
		}))
		defer srv.Close()

		client := NewOpenRouterIdentifier("test-key", "test-model", srv.URL)
		_, err := client.Identify(context.Background(), testImage, "image/jpeg")
		assert.ErrorIs(t, err, domain.ErrIdentifyUpstream)
	})

	t.Run("connection refused", func(t *testing.T) {
		client := NewOpenRouterIdentifier("test-key", "test-model", "http://127.0.0.1:1")
		_, err := client.Identify(context.Background(), testImage, "image/jpeg")
		assert.ErrorIs(t, err, domain.ErrIdentifyUpstream)
	})
}

func TestIdentifyInputValidation(t *testing.T) {
	client := NewOpenRouterIdentifier("test-key", "test-model", "http://unused")

	_, err := client.Identify(context.Background(), "", "image/jpeg")
	assert.True(t, domain.IsValidation(err))

	_, err = client.Identify(context.Background(), base64.StdEncoding.EncodeToString([]byte("x")), "application/pdf")
	assert.True(t, domain.IsValidation(err))
}
