// README: Local stand-in for the generation backend; serves canned SSE and JSON responses.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"
)

var (
	addr  = flag.String("addr", ":9090", "listen address")
	mode  = flag.String("mode", "stream", "response mode: stream, json, content, error")
	delay = flag.Duration("delay", 300*time.Millisecond, "pause between streamed frames")
)

func main() {
	flag.Parse()

	http.HandleFunc("/generate", handleGenerate)

	log.Printf("genstub listening on %s (mode=%s)", *addr, *mode)
	log.Fatal(http.ListenAndServe(*addr, nil))
}

func handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var prefs map[string]any
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		http.Error(w, `{"message":"invalid json"}`, http.StatusBadRequest)
		return
	}
	dest, _ := prefs["destination"].(string)
	if dest == "" {
		dest = "Somewhere"
	}
	log.Printf("generate: destination=%s mode=%s", dest, *mode)

	switch *mode {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"trip": cannedPlan(dest)}})
	case "content":
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"content": cannedStream(dest)})
	case "error":
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"status": "error", "message": "model unavailable"})
	default:
		streamResponse(w, dest)
	}
}

func streamResponse(w http.ResponseWriter, dest string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	steps := []string{"outline", "activities", "budget"}
	for _, step := range steps {
		payload, _ := json.Marshal(map[string]any{
			"step":    step,
			"status":  "running",
			"message": fmt.Sprintf("working on %s", step),
		})
		fmt.Fprintf(w, "event: progress\ndata: %s\n\n", payload)
		flusher.Flush()
		time.Sleep(*delay)
	}

	payload, _ := json.Marshal(map[string]any{"trip": cannedPlan(dest)})
	fmt.Fprintf(w, "event: complete\ndata: %s\n\n", payload)
	flusher.Flush()
}

func cannedStream(dest string) string {
	payload, _ := json.Marshal(map[string]any{"trip": cannedPlan(dest)})
	return fmt.Sprintf("event: complete\ndata: %s\n\n", payload)
}

func cannedPlan(dest string) map[string]any {
	return map[string]any{
		"destination":       dest,
		"itinerary_summary": fmt.Sprintf("A short trip to %s.", dest),
		"budget_summary":    "Roughly 150 per person per day.",
		"itinerary": []map[string]any{
			{
				"day": 1,
				"activities": []map[string]any{
					{"name": "Old town walk", "location": fmt.Sprintf("Old Town, %s", dest)},
					{"name": "Local market lunch", "location": fmt.Sprintf("Central Market, %s", dest)},
				},
			},
			{
				"day": 2,
				"activities": []map[string]any{
					{"name": "Museum morning", "location": fmt.Sprintf("City Museum, %s", dest)},
				},
			},
		},
	}
}
