package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
)

type assistReq struct {
	Query    string `json:"query"`
	Document string `json:"document"`
}

func handleAnalyzePDF(w http.ResponseWriter, r *http.Request) {
	var req assistReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	if req.Document == "" {
		http.Error(w, "document is required", 500)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"summary": "mock document summary", "pages": 3})
}

func handleShoppingAdvisor(w http.ResponseWriter, r *http.Request) {
	var req assistReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"recommendation": "mock product pick", "reason": "best value for " + req.Query})
}

func main() {
	addr := ":8081"
	if v := os.Getenv("ASSISTANT_ADDR"); v != "" {
		addr = v
	}
	http.HandleFunc("/assistant/analyze-pdf", handleAnalyzePDF)
	http.HandleFunc("/assistant/shopping-advisor", handleShoppingAdvisor)
	log.Printf("Assistant mock listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}
