package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/SKYTAN-050107/UM-INTERNAL-HACKATHON-NOV/chatbot"
	"github.com/SKYTAN-050107/UM-INTERNAL-HACKATHON-NOV/jamai"
)

const MAX_UPLOAD_SIZE = 1024 * 1024 * 50 // 50MB

type ChatController struct {
	Bots           *chatbot.Service
	AuthController *AuthController
}

// SendMessage routes an inbound chat message to the matching bot and, when
// the caller owns a per-session chat table, threads the reply through that
// table so the session transcript stays current. Soft dispatch failures
// come back as the reply text itself; the frontend has always rendered
// those strings inline.
func (chatController *ChatController) SendMessage(w http.ResponseWriter, r *http.Request) {
	setJSONHeaders(w)

	postMap, err := parseRequestBody(r, w)
	if err != nil {
		return
	}

	userMessage := stringField(postMap, "message")
	tableID := stringField(postMap, "table_id")
	contextLabel := stringField(postMap, "context")
	userEmail := stringField(postMap, "userEmail")
	sessionID := stringField(postMap, "sessionId")

	if userMessage == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Message is required"})
		return
	}

	if contextLabel == "" {
		contextLabel = "General Knowledge"
	}
	if sessionID == "" {
		sessionID = "web_session"
	}

	// A verified bearer token outranks whatever email the body claims.
	if tokenEmail := chatController.AuthController.BearerEmail(r); tokenEmail != "" {
		userEmail = tokenEmail
	}

	reply, err := chatController.Bots.Respond(r.Context(), contextLabel, userMessage, sessionID, userEmail)
	if err != nil {
		var dispatchErr *chatbot.DispatchError
		if !errors.As(err, &dispatchErr) {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		reply = dispatchErr.Message
	}

	if tableID != "" {
		posted, err := chatController.Bots.PostChatTable(r.Context(), reply, tableID)
		if err != nil {
			var dispatchErr *chatbot.DispatchError
			if !errors.As(err, &dispatchErr) {
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
				return
			}
			posted = dispatchErr.Message
		}
		reply = posted
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"response": reply})
}

// History reloads a session transcript. The POST body carries a session
// object {"session": {"id": ..., "table_id": ...}}; a table_id selects the
// per-session chat-table flow, otherwise the shared table is filtered by
// session id. A sessionId query parameter is honored for legacy callers.
func (chatController *ChatController) History(w http.ResponseWriter, r *http.Request) {
	setJSONHeaders(w)

	postMap, err := parseRequestBody(r, w)
	if err != nil {
		return
	}

	session, _ := postMap["session"].(map[string]interface{})
	if session == nil {
		if sessionID := r.URL.Query().Get("sessionId"); sessionID != "" {
			history := chatController.Bots.SessionHistory(r.Context(), sessionID)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"history": history})
			return
		}

		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Session is required"})
		return
	}

	tableID, _ := session["table_id"].(string)
	sessionID, _ := session["id"].(string)

	if tableID != "" {
		history := chatController.Bots.TableHistory(r.Context(), tableID)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"history": history})
		return
	}

	history := chatController.Bots.SessionHistory(r.Context(), sessionID)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"history": history})
}

func (chatController *ChatController) NewChatTable(w http.ResponseWriter, r *http.Request) {
	setJSONHeaders(w)

	postMap, err := parseRequestBody(r, w)
	if err != nil {
		return
	}

	baseTableID := stringField(postMap, "base_table_id")
	if baseTableID == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Missing base_table_id"})
		return
	}

	newTableID, err := chatController.Bots.NewChatTable(r.Context(), baseTableID)
	if err != nil {
		log.Printf("Error creating new chat: %v", err)

		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Failed to create chat table"})
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"table_id": newTableID})
}

func (chatController *ChatController) DeleteChatTable(w http.ResponseWriter, r *http.Request) {
	setJSONHeaders(w)

	postMap, err := parseRequestBody(r, w)
	if err != nil {
		return
	}

	tableID := stringField(postMap, "table_id")
	if tableID == "" {
		if session, ok := postMap["session"].(map[string]interface{}); ok {
			tableID, _ = session["table_id"].(string)
		}
	}

	if tableID == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Missing table_id"})
		return
	}

	if err := chatController.Bots.DeleteChatTable(r.Context(), tableID); err != nil {
		log.Printf("Error deleting chat: %v", err)

		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Failed to delete chat table"})
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": fmt.Sprintf("Chat table %s deleted successfully.", tableID)})
}

// Upload streams a document into the selected bot's knowledge table. The
// file passes through untouched; parsing and embedding happen inside the
// table service. The temp copy keeps the original extension because the
// service infers the document type from it.
func (chatController *ChatController) Upload(w http.ResponseWriter, r *http.Request) {
	setJSONHeaders(w)

	r.Body = http.MaxBytesReader(w, r.Body, MAX_UPLOAD_SIZE)
	if err := r.ParseMultipartForm(MAX_UPLOAD_SIZE); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "No file part"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "No file part"})
		return
	}
	defer file.Close()

	if header.Filename == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "No selected file"})
		return
	}

	botType := r.FormValue("botType")
	if botType == "" {
		botType = string(chatbot.BotPublic)
	}

	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	tmp.Close()

	if err := chatController.Bots.EmbedFile(r.Context(), chatbot.BotType(botType), tmpPath); err != nil {
		log.Printf("Error embedding file: %v", err)

		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("File %s uploaded and embedded successfully.", header.Filename),
	})
}

// ListTables exposes the table service's table listing for one bot, used
// by the admin tooling to verify per-session tables get created and torn
// down.
func (chatController *ChatController) ListTables(w http.ResponseWriter, r *http.Request) {
	setJSONHeaders(w)

	botType := r.URL.Query().Get("botType")
	if botType == "" {
		botType = string(chatbot.BotPublic)
	}
	tableType := r.URL.Query().Get("tableType")
	if tableType == "" {
		tableType = string(jamai.TableAction)
	}

	tables, err := chatController.Bots.ListTables(r.Context(), chatbot.BotType(botType), jamai.TableKind(tableType))
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": err.Error()})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "tables": tables})
}
