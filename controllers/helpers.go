package controllers

import (
	"encoding/json"
	"io"
	"net/http"
)

func setJSONHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
}

func parseRequestBody(r *http.Request, w http.ResponseWriter) (map[string]interface{}, error) {
	body, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, err
	}

	var postMap map[string]interface{}
	if err := json.Unmarshal(body, &postMap); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return nil, err
	}
	return postMap, nil
}

func stringField(postMap map[string]interface{}, key string) string {
	value, _ := postMap[key].(string)
	return value
}
