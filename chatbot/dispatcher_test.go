package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBotConfig() BotConfig {
	return BotConfig{
		BotPublic: {
			Name:             BotPublic,
			APIKey:           "pk",
			ProjectID:        "proj-public",
			ActionTableID:    "FAQ",
			KnowledgeTableID: "kb_public",
		},
		BotStaff: {
			Name:          BotStaff,
			APIKey:        "sk",
			ProjectID:     "proj-staff",
			ActionTableID: "staff_actions",
		},
		BotBooking: {
			Name:        BotBooking,
			APIKey:      "bk",
			ProjectID:   "proj-booking",
			ChatTableID: "booking_chat",
		},
	}
}

// fakeTableServer answers every row-add with the given row payloads and
// records the last request body.
func fakeTableServer(t *testing.T, rows ...string) (*Service, *map[string]interface{}) {
	t.Helper()

	lastBody := &map[string]interface{}{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		*lastBody = body

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rows": [` + strings.Join(rows, ",") + `]}`))
	}))
	t.Cleanup(srv.Close)

	t.Setenv("JAMAI_BASE_URL", srv.URL)

	return &Service{Config: testBotConfig()}, lastBody
}

func TestRespondPublicWrapsReply(t *testing.T) {
	service, lastBody := fakeTableServer(t, `{"user_output": "We open at 9am.", "zz_internal": "scratch"}`)

	reply, err := service.RespondPublic(context.Background(), "When do you open?", "web_session", "")
	require.NoError(t, err)

	assert.Equal(t, "User: When do you open?\n Action Table: We open at 9am.", reply)

	data := (*lastBody)["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "When do you open?", data["usr_input"])
}

func TestRespondPublicFallsBackToLastColumn(t *testing.T) {
	service, _ := fakeTableServer(t, `{"alpha": "ignored", "output": "fallback reply"}`)

	reply, err := service.RespondPublic(context.Background(), "hi", "web_session", "")
	require.NoError(t, err)

	assert.Equal(t, "User: hi\n Action Table: fallback reply", reply)
}

func TestRespondStaffSessionMetadata(t *testing.T) {
	service, lastBody := fakeTableServer(t, `{"AI": "Here is the roster."}`)

	reply, err := service.RespondStaff(context.Background(), "show roster", "staff_abc", "nurse@clinic.test")
	require.NoError(t, err)
	assert.Equal(t, "Here is the roster.", reply)

	data := (*lastBody)["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "show roster", data["User"])
	assert.Equal(t, "staff_abc", data["Session ID"])
	assert.Equal(t, "Staff", data["User Role"])
	assert.Equal(t, "nurse@clinic.test", data["User Email"])
}

func TestRespondStaffDefaultsSessionAndOmitsEmail(t *testing.T) {
	service, lastBody := fakeTableServer(t, `{"AI": "ok"}`)

	_, err := service.RespondStaff(context.Background(), "hi", "", "")
	require.NoError(t, err)

	data := (*lastBody)["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "external_session", data["Session ID"])
	_, hasEmail := data["User Email"]
	assert.False(t, hasEmail)
}

func TestRespondStaffLastColumnFallback(t *testing.T) {
	service, _ := fakeTableServer(t, `{"analysis": "notes", "final": "the reply"}`)

	reply, err := service.RespondStaff(context.Background(), "hi", "staff_abc", "")
	require.NoError(t, err)
	assert.Equal(t, "the reply", reply)
}

func TestRespondEmptyRowsSentinel(t *testing.T) {
	service, _ := fakeTableServer(t)

	_, err := service.RespondStaff(context.Background(), "hi", "staff_abc", "")
	require.Error(t, err)

	var dispatchErr *DispatchError
	require.True(t, errors.As(err, &dispatchErr))
	assert.Equal(t, "Error: No response received from JamAI Table.", dispatchErr.Message)
}

func TestRespondConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	t.Setenv("JAMAI_BASE_URL", srv.URL)

	service := &Service{Config: testBotConfig()}

	_, err := service.RespondBooking(context.Background(), "hi", "booking_1", "")
	require.Error(t, err)

	var dispatchErr *DispatchError
	require.True(t, errors.As(err, &dispatchErr))
	assert.True(t, strings.HasPrefix(dispatchErr.Message, "Error connecting to JamAI: "), dispatchErr.Message)
	assert.Error(t, dispatchErr.Unwrap())
}

func TestRespondUnavailableProfile(t *testing.T) {
	service := &Service{Config: BotConfig{}}

	_, err := service.Respond(context.Background(), "staff tools", "hi", "s", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProfileUnavailable))
}

func TestPostChatTableUsesLastColumn(t *testing.T) {
	service, lastBody := fakeTableServer(t, `{"AI": "chat reply"}`)

	reply, err := service.PostChatTable(context.Background(), "hello", "chat_12345678")
	require.NoError(t, err)
	assert.Equal(t, "chat reply", reply)

	data := (*lastBody)["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "hello", data["User"])
}

func TestPostChatTableWrapsUserOutput(t *testing.T) {
	service, _ := fakeTableServer(t, `{"user_output": "wrapped"}`)

	reply, err := service.PostChatTable(context.Background(), "hello", "chat_12345678")
	require.NoError(t, err)
	assert.Equal(t, "User: hello\n Action Table: wrapped", reply)
}
