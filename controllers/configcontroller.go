package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/SKYTAN-050107/UM-INTERNAL-HACKATHON-NOV/models"
)

// ConfigController serves the editable site configuration from a single
// JSON file next to the binary. Writes are whole-file, guarded by a mutex.
type ConfigController struct {
	ConfigFile string

	mu sync.Mutex
}

// allowedConfigKeys are the only keys an update may touch; anything else in
// the request body is dropped.
var allowedConfigKeys = []string{"clinic_name", "banner", "clinic_info", "hero", "value_props"}

func defaultSiteConfig() map[string]interface{} {
	return map[string]interface{}{
		"banner":      models.Banner{},
		"clinic_info": map[string]interface{}{},
	}
}

func (cController *ConfigController) load() map[string]interface{} {
	data, err := os.ReadFile(cController.ConfigFile)
	if err != nil {
		return defaultSiteConfig()
	}

	var config map[string]interface{}
	if err := json.Unmarshal(data, &config); err != nil {
		log.Printf("Site Config Parse Error: %v", err)
		return defaultSiteConfig()
	}

	return config
}

func (cController *ConfigController) save(config map[string]interface{}) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(cController.ConfigFile, data, 0644)
}

func (cController *ConfigController) GetConfig(w http.ResponseWriter, r *http.Request) {
	setJSONHeaders(w)

	cController.mu.Lock()
	config := cController.load()
	cController.mu.Unlock()

	_ = json.NewEncoder(w).Encode(config)
}

// UpdateConfig merges the whitelisted keys from the request body into the
// stored configuration, leaving unknown stored keys untouched.
func (cController *ConfigController) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	setJSONHeaders(w)

	postMap, err := parseRequestBody(r, w)
	if err != nil {
		return
	}

	cController.mu.Lock()
	defer cController.mu.Unlock()

	config := cController.load()
	for _, key := range allowedConfigKeys {
		if value, ok := postMap[key]; ok {
			config[key] = value
		}
	}

	if err := cController.save(config); err != nil {
		log.Printf("Site Config Save Error: %v", err)

		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": err.Error()})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "config": config})
}
