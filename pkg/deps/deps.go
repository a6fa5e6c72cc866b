// Package deps reports whether the external tools and model files a run
// needs are present.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Requirement defines an external dependency audioscribe relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Tools names the executables Requirements checks for.
type Tools struct {
	YTDLP   string
	Whisper string
	FFmpeg  string

	// ConvertToWAV makes ffmpeg mandatory.
	ConvertToWAV bool
}

// Requirements lists the binaries for the given tool configuration.
func Requirements(tools Tools) []Requirement {
	return []Requirement{
		{Name: "yt-dlp", Command: tools.YTDLP, Description: "YouTube audio extraction", Optional: true},
		{Name: "whisper.cpp", Command: tools.Whisper, Description: "offline transcription"},
		{Name: "ffmpeg", Command: tools.FFmpeg, Description: "audio conversion to 16 kHz WAV", Optional: !tools.ConvertToWAV},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		if resolved != cmd {
			status.Detail = resolved
		}
		results = append(results, status)
	}
	return results
}

// CheckFile reports whether a required regular file such as a model exists.
func CheckFile(name, path, description string) Status {
	status := Status{Name: name, Command: path, Description: description}
	if strings.TrimSpace(path) == "" {
		status.Detail = "path not configured"
		return status
	}
	info, err := os.Stat(path)
	switch {
	case err != nil:
		status.Detail = fmt.Sprintf("not found at %s", path)
	case info.IsDir():
		status.Detail = fmt.Sprintf("%s is a directory", path)
	case info.Size() == 0:
		status.Detail = fmt.Sprintf("%s is empty", path)
	default:
		status.Available = true
	}
	return status
}

// MissingRequired returns the statuses of unavailable, non-optional dependencies.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}
