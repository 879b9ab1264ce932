package tests

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gymsnap/gymsnap/internal/catalog"
	"github.com/gymsnap/gymsnap/internal/config"
	"github.com/gymsnap/gymsnap/internal/repository"
	"github.com/gymsnap/gymsnap/internal/server"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoldenPath(t *testing.T) {
	// 1. Infrastructure
	db, cleanupDB := SetupTestDB(t)
	defer cleanupDB()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	mockAuth := NewMockAuthClient()

	vision := NewVisionStub()
	defer vision.Close()

	cfg := &config.Config{}
	cfg.Server.MaxUploadSizeMB = 10
	cfg.JWT.Secret = "test-secret-key-123"
	cfg.OpenRouter.APIKey = "test-key"
	cfg.OpenRouter.Model = "test-model"
	cfg.OpenRouter.BaseURL = vision.Server.URL

	// Seed a slice of the catalog for the manual-pick step
	catalogRepo := repository.NewMongoCatalogRepository(db)
	for i := range catalog.Builtin[:10] {
		entry := catalog.Builtin[i]
		require.NoError(t, catalogRepo.Upsert(context.Background(), &entry))
	}

	// 2. App
	app := server.NewApp(server.AppDependencies{
		Config:      cfg,
		MongoDB:     db,
		RedisClient: redisClient,
		AuthClient:  mockAuth,
	})

	request := func(method, path, token string, body interface{}) *http.Response {
		var bodyReader io.Reader
		if body != nil {
			jsonBytes, _ := json.Marshal(body)
			bodyReader = bytes.NewReader(jsonBytes)
		}
		req, _ := http.NewRequest(method, path, bodyReader)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	decode := func(resp *http.Response) map[string]interface{} {
		var data map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
		return data
	}

	image := base64.StdEncoding.EncodeToString([]byte("fake-jpeg-bytes"))

	// ==========================================
	// STEP 1: Login via email-link token
	// ==========================================
	mockAuth.AddMockUser("token_lifter", "uid_lifter", "lifter@example.com")

	resp := request("POST", "/v1/auth/login", "", map[string]string{
		"firebaseToken": "token_lifter",
	})
	assert.Equal(t, 201, resp.StatusCode) // first sign-in creates the user

	loginData := decode(resp)
	token := loginData["token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, true, loginData["isNewUser"])

	fmt.Println("✓ Logged in")

	// Requests without a token are rejected
	resp = request("GET", "/v1/me/session", "", nil)
	assert.Equal(t, 401, resp.StatusCode)

	// ==========================================
	// STEP 2: Fresh session is idle
	// ==========================================
	resp = request("GET", "/v1/me/session", token, nil)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "idle", decode(resp)["state"])

	// Capture before starting is a state violation
	resp = request("POST", "/v1/me/session/capture", token, map[string]string{
		"imageBase64": image,
		"mediaType":   "image/jpeg",
	})
	assert.Equal(t, 409, resp.StatusCode)

	// ==========================================
	// STEP 3: Start the workout
	// ==========================================
	resp = request("POST", "/v1/me/session/start", token, nil)
	assert.Equal(t, 200, resp.StatusCode)

	snap := decode(resp)
	assert.Equal(t, "camera", snap["state"])
	workoutID := snap["workout"].(map[string]interface{})["id"].(string)
	require.NotEmpty(t, workoutID)

	fmt.Println("✓ Workout started:", workoutID)

	// ==========================================
	// STEP 4: Capture -> identified -> confirm
	// ==========================================
	vision.Queue(`{"exercise_name":"Lat Pulldown","equipment":"Cable Machine","muscle_group":"Back","confidence":"high","alternatives":["Seated Cable Row"]}`)

	resp = request("POST", "/v1/me/session/capture", token, map[string]string{
		"imageBase64": image,
		"mediaType":   "image/jpeg",
	})
	assert.Equal(t, 200, resp.StatusCode)

	snap = decode(resp)
	assert.Equal(t, "confirming", snap["state"])
	ident := snap["identification"].(map[string]interface{})
	assert.Equal(t, "Lat Pulldown", ident["exercise_name"])
	assert.Equal(t, "high", ident["confidence"])

	resp = request("POST", "/v1/me/session/confirm", token, map[string]interface{}{
		"name":           "Lat Pulldown",
		"equipment":      "Cable Machine",
		"muscleGroup":    "Back",
		"identifiedByAI": true,
	})
	assert.Equal(t, 200, resp.StatusCode)

	snap = decode(resp)
	assert.Equal(t, "logging", snap["state"])
	exerciseID := snap["current_exercise"].(map[string]interface{})["id"].(string)
	require.NotEmpty(t, exerciseID)

	fmt.Println("✓ Exercise identified and confirmed")

	// ==========================================
	// STEP 5: Log sets, delete one
	// ==========================================
	var setIDs []string
	for i, weight := range []float64{50, 55, 55} {
		resp = request("POST", "/v1/me/session/sets", token, map[string]interface{}{
			"exerciseId": exerciseID,
			"weight":     weight,
			"reps":       10,
			"weightUnit": "kg",
		})
		assert.Equal(t, 201, resp.StatusCode)
		setData := decode(resp)
		assert.EqualValues(t, i+1, setData["set_number"])
		setIDs = append(setIDs, setData["id"].(string))
	}

	// Invalid input never reaches storage
	resp = request("POST", "/v1/me/session/sets", token, map[string]interface{}{
		"exerciseId": exerciseID,
		"weight":     0,
		"reps":       10,
		"weightUnit": "kg",
	})
	assert.Equal(t, 400, resp.StatusCode)

	resp = request("POST", "/v1/me/session/sets", token, map[string]interface{}{
		"exerciseId": exerciseID,
		"weight":     50,
		"reps":       10,
		"weightUnit": "kg",
		"rpe":        10.5,
	})
	assert.Equal(t, 400, resp.StatusCode)

	// Delete the middle set; survivors keep their numbers
	resp = request("DELETE", "/v1/me/session/sets/"+setIDs[1], token, nil)
	assert.Equal(t, 204, resp.StatusCode)

	resp = request("GET", "/v1/me/session", token, nil)
	snap = decode(resp)
	sets := snap["current_exercise"].(map[string]interface{})["sets"].([]interface{})
	require.Len(t, sets, 2)
	assert.EqualValues(t, 1, sets[0].(map[string]interface{})["set_number"])
	assert.EqualValues(t, 3, sets[1].(map[string]interface{})["set_number"])

	fmt.Println("✓ Sets logged, deletion left numbering sparse")

	// ==========================================
	// STEP 6: Next exercise, malformed model output
	// ==========================================
	resp = request("POST", "/v1/me/session/next", token, nil)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "camera", decode(resp)["state"])

	vision.Queue(`Sorry, I can't tell what exercise this is.`)
	resp = request("POST", "/v1/me/session/capture", token, map[string]string{
		"imageBase64": image,
		"mediaType":   "image/jpeg",
	})
	assert.Equal(t, 502, resp.StatusCode)

	// The failure left us back in camera, ready to retry
	resp = request("GET", "/v1/me/session", token, nil)
	assert.Equal(t, "camera", decode(resp)["state"])

	fmt.Println("✓ Malformed identification rejected, session recovered")

	// ==========================================
	// STEP 7: Unknown sentinel -> manual catalog pick
	// ==========================================
	vision.Queue(`{"exercise_name":"Unknown","equipment":"Unknown","muscle_group":"Unknown","confidence":"low","alternatives":[]}`)
	resp = request("POST", "/v1/me/session/capture", token, map[string]string{
		"imageBase64": image,
		"mediaType":   "image/jpeg",
	})
	assert.Equal(t, 200, resp.StatusCode)

	snap = decode(resp)
	assert.Equal(t, "confirming", snap["state"])
	assert.Equal(t, "Unknown", snap["identification"].(map[string]interface{})["exercise_name"])

	// Browse the catalog for the real exercise
	resp = request("GET", "/v1/catalog?name=bench", token, nil)
	assert.Equal(t, 200, resp.StatusCode)
	catalogData := decode(resp)
	require.NotEmpty(t, catalogData["exercises"])

	// Regex metacharacters in the search are literal text, never a pattern
	resp = request("GET", "/v1/catalog?name=(", token, nil)
	assert.Equal(t, 200, resp.StatusCode)
	assert.EqualValues(t, 0, decode(resp)["count"])

	resp = request("POST", "/v1/me/session/confirm", token, map[string]interface{}{
		"name":           "Bench Press",
		"equipment":      "Barbell",
		"muscleGroup":    "Chest",
		"identifiedByAI": false,
	})
	assert.Equal(t, 200, resp.StatusCode)

	resp = request("POST", "/v1/me/session/sets", token, map[string]interface{}{
		"exerciseId": decode(request("GET", "/v1/me/session", token, nil))["current_exercise"].(map[string]interface{})["id"],
		"weight":     60,
		"reps":       8,
		"weightUnit": "kg",
		"rpe":        8.5,
	})
	assert.Equal(t, 201, resp.StatusCode)

	fmt.Println("✓ Unknown result corrected from catalog")

	// ==========================================
	// STEP 8: End the workout with notes
	// ==========================================
	resp = request("POST", "/v1/me/session/end", token, map[string]string{
		"notes": "Felt strong today",
	})
	assert.Equal(t, 200, resp.StatusCode)

	resp = request("GET", "/v1/me/session", token, nil)
	assert.Equal(t, "idle", decode(resp)["state"])

	fmt.Println("✓ Workout ended")

	// ==========================================
	// STEP 9: History survives the session
	// ==========================================
	resp = request("GET", "/v1/me/workouts", token, nil)
	assert.Equal(t, 200, resp.StatusCode)
	history := decode(resp)
	assert.EqualValues(t, 1, history["count"])

	resp = request("GET", "/v1/me/workouts/"+workoutID, token, nil)
	assert.Equal(t, 200, resp.StatusCode)

	tree := decode(resp)
	exercises := tree["exercises"].([]interface{})
	require.Len(t, exercises, 2)

	first := exercises[0].(map[string]interface{})
	assert.Equal(t, "Lat Pulldown", first["name"])
	assert.Equal(t, true, first["identified_by_ai"])
	assert.Len(t, first["sets"].([]interface{}), 2)

	second := exercises[1].(map[string]interface{})
	assert.Equal(t, "Bench Press", second["name"])
	assert.Equal(t, false, second["identified_by_ai"])
	assert.NotNil(t, tree["ended_at"])
	assert.Equal(t, "Felt strong today", tree["notes"])

	fmt.Println("✓ History verified")

	// Another user cannot read it
	mockAuth.AddMockUser("token_other", "uid_other", "other@example.com")
	resp = request("POST", "/v1/auth/login", "", map[string]string{
		"firebaseToken": "token_other",
	})
	otherToken := decode(resp)["token"].(string)

	resp = request("GET", "/v1/me/workouts/"+workoutID, otherToken, nil)
	assert.Equal(t, 403, resp.StatusCode)

	fmt.Println("✓ Ownership enforced")
}

func TestResumeAcrossRestart(t *testing.T) {
	db, cleanupDB := SetupTestDB(t)
	defer cleanupDB()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	mockAuth := NewMockAuthClient()
	mockAuth.AddMockUser("token_lifter", "uid_lifter", "lifter@example.com")

	vision := NewVisionStub()
	defer vision.Close()

	cfg := &config.Config{}
	cfg.Server.MaxUploadSizeMB = 10
	cfg.JWT.Secret = "test-secret-key-123"
	cfg.OpenRouter.APIKey = "test-key"
	cfg.OpenRouter.Model = "test-model"
	cfg.OpenRouter.BaseURL = vision.Server.URL

	newApp := func() *fiberApp {
		return &fiberApp{app: server.NewApp(server.AppDependencies{
			Config:      cfg,
			MongoDB:     db,
			RedisClient: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
			AuthClient:  mockAuth,
		}), t: t}
	}

	app := newApp()

	login := app.request("POST", "/v1/auth/login", "", map[string]string{"firebaseToken": "token_lifter"})
	token := decodeBody(t, login)["token"].(string)

	app.request("POST", "/v1/me/session/start", token, nil)
	vision.Queue(`{"exercise_name":"Squat","equipment":"Barbell","muscle_group":"Legs","confidence":"high","alternatives":[]}`)
	app.request("POST", "/v1/me/session/capture", token, map[string]string{
		"imageBase64": base64.StdEncoding.EncodeToString([]byte("img")),
		"mediaType":   "image/jpeg",
	})
	confirm := app.request("POST", "/v1/me/session/confirm", token, map[string]interface{}{
		"name": "Squat", "equipment": "Barbell", "muscleGroup": "Legs", "identifiedByAI": true,
	})
	exerciseID := decodeBody(t, confirm)["current_exercise"].(map[string]interface{})["id"].(string)
	app.request("POST", "/v1/me/session/sets", token, map[string]interface{}{
		"exerciseId": exerciseID, "weight": 100, "reps": 5, "weightUnit": "kg",
	})

	started := app.request("GET", "/v1/me/session", token, nil)
	workoutID := decodeBody(t, started)["workout"].(map[string]interface{})["id"].(string)

	// Simulate a process restart: a brand-new app over the same database.
	// Starting resumes the stored workout rather than creating a second one.
	restarted := newApp()

	resp := restarted.request("POST", "/v1/me/session/start", token, nil)
	assert.Equal(t, 200, resp.StatusCode)

	snap := decodeBody(t, resp)
	assert.Equal(t, "camera", snap["state"])
	workout := snap["workout"].(map[string]interface{})
	assert.Equal(t, workoutID, workout["id"])

	exercises := workout["exercises"].([]interface{})
	require.Len(t, exercises, 1)
	assert.Equal(t, "Squat", exercises[0].(map[string]interface{})["name"])
	assert.Len(t, exercises[0].(map[string]interface{})["sets"].([]interface{}), 1)

	fmt.Println("✓ Active workout resumed across restart")
}
