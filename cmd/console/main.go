package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/life-engine/internal/profile"
)

type ConsoleConfig struct {
	APIBaseURL  string
	ProfilesDir string
	Timeout     time.Duration
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL:  getEnv("API_BASE_URL", "http://localhost:8080"),
		ProfilesDir: getEnv("PROFILES_DIR", "./data/profiles"),
		// Advisory calls can take a while on the LLM side.
		Timeout: 90 * time.Second,
	}

	api := &apiClient{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.APIBaseURL,
	}

	if !api.testConnection() {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the API is running.\nTry: go run ./cmd/api\n")
		os.Exit(1)
	}

	path, err := chooseProfile(cfg.ProfilesDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	p, err := profile.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load profile: %v\n", err)
		os.Exit(1)
	}

	game, err := api.createGame(p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	prog := tea.NewProgram(NewConsoleUI(api, p.Name, game),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := prog.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// chooseProfile returns the profile named on the command line, or asks the
// user to pick one from dir.
func chooseProfile(dir string) (string, error) {
	if len(os.Args) > 1 {
		return os.Args[1], nil
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil || len(paths) == 0 {
		return "", fmt.Errorf("no profiles found in %s", dir)
	}
	sort.Strings(paths)

	fmt.Println("Available Profiles:")
	for i, p := range paths {
		fmt.Printf("  %d - %s\n", i+1, filepath.Base(p))
	}
	fmt.Print("\nSelect a profile by number: ")

	var choice int
	if _, err := fmt.Scanf("%d", &choice); err != nil || choice < 1 || choice > len(paths) {
		return "", fmt.Errorf("invalid selection")
	}
	return paths[choice-1], nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
