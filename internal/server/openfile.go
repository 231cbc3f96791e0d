package server

import (
	"encoding/json"
	"net/http"
	"os"
	"os/exec"
	"runtime"
)

type openFileRequest struct {
	Path string `json:"path"`
}

// handleOpenFile opens a note in the OS default viewer, fire-and-forget.
func (s *Server) handleOpenFile(w http.ResponseWriter, r *http.Request) {
	var req openFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}

	if _, err := os.Stat(req.Path); err != nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}

	cmd := openCommand(req.Path)
	if err := cmd.Start(); err != nil {
		s.log.Error().Err(err).Str("path", req.Path).Msg("open file failed")
		http.Error(w, "could not open file", http.StatusInternalServerError)
		return
	}
	// Don't leave a zombie behind when the viewer exits.
	go cmd.Wait()

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func openCommand(path string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", path)
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path)
	default:
		return exec.Command("xdg-open", path)
	}
}
