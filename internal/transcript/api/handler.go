package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
)

// Handler serves archived transcript HTML by channel id. Files are
// written by the archiver as transcript-<channel_id>.html under the
// data dir.
type Handler struct {
	DataDir string
}

func (h *Handler) transcriptPath(r *http.Request) (string, error) {
	raw := r.URL.Query().Get("channel_id")
	if raw == "" {
		return "", fmt.Errorf("channel_id parameter is missing")
	}
	channelID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", fmt.Errorf("channel_id must be numeric")
	}
	return filepath.Join(h.DataDir, fmt.Sprintf("transcript-%d.html", channelID)), nil
}

func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	path, err := h.transcriptPath(r)
	if err != nil {
		http.Error(w, "Error: "+err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := os.Stat(path); err != nil {
		http.Error(w, "Transcript not found", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, path)
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	path, err := h.transcriptPath(r)
	if err != nil {
		http.Error(w, "Error: "+err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := os.Stat(path); err != nil {
		http.Error(w, "Transcript not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(path))
	http.ServeFile(w, r, path)
}
