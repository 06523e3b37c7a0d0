// Minimal end-to-end smoke test for the BanBot API.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

var (
	baseURL = getenv("API_URL", "http://localhost:8080")
	apiKey  = getenv("API_KEY", "")
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	if apiKey == "" {
		log.Fatal("API_KEY is required")
	}

	health()
	token := auth()
	stats(token)
	recent(token)
	search(token, "0001")

	log.Println("All smoke checks passed")
}

var client = &http.Client{Timeout: 10 * time.Second}

func health() {
	resp, err := client.Get(baseURL + "/healthz")
	if err != nil {
		log.Fatalf("healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("healthz: status %d", resp.StatusCode)
	}
	log.Println("healthz ok")
}

func auth() string {
	body, _ := json.Marshal(map[string]string{"key": apiKey})
	resp, err := client.Post(baseURL+"/v1/auth", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("auth: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("auth: status %d", resp.StatusCode)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Fatalf("auth decode: %v", err)
	}
	log.Println("auth ok")
	return out.Token
}

func get(token, path string) map[string]any {
	req, _ := http.NewRequest(http.MethodGet, baseURL+path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("GET %s: status %d", path, resp.StatusCode)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Fatalf("GET %s decode: %v", path, err)
	}
	return out
}

func stats(token string) {
	out := get(token, "/v1/stats")
	log.Printf("stats: total bans %v, active strikes %v", out["totalBans"], out["activeStrikes"])
}

func recent(token string) {
	out := get(token, "/v1/bans?limit=5")
	log.Printf("recent: %d records", countBans(out))
}

func search(token, term string) {
	out := get(token, fmt.Sprintf("/v1/search?term=%s", term))
	log.Printf("search %q: %d records", term, countBans(out))
}

func countBans(out map[string]any) int {
	bans, _ := out["bans"].([]any)
	return len(bans)
}
